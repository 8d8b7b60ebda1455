package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/tulis-go-api/internal/repository"
	"github.com/noah-isme/tulis-go-api/pkg/tts"
)

var narrationAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tulis",
	Subsystem: "narration",
	Name:      "attempts_total",
	Help:      "Narration generation attempts by outcome",
}, []string{"outcome"})

// AudioUploader stores an audio buffer and returns a durable URL.
type AudioUploader interface {
	UploadAudio(ctx context.Context, name string, data []byte) (string, error)
}

// NarrationService lazily synthesizes lecture audio for integrated-writing
// questions. Generation is at-most-once per question and entirely detached
// from the requests that trigger it.
type NarrationService interface {
	Trigger(questionID uint)
	EnsureAudio(ctx context.Context, questionID uint)
}

type narrationService struct {
	questions   repository.QuestionRepository
	synthesizer tts.Synthesizer
	uploader    AudioUploader
	maxAttempts int
	retryDelay  time.Duration
	timeout     time.Duration
	logger      zerolog.Logger
	sleep       func(time.Duration)
}

// NewNarrationService constructs the narration job runner. A nil synthesizer
// or uploader disables generation entirely.
func NewNarrationService(questions repository.QuestionRepository, synthesizer tts.Synthesizer, uploader AudioUploader, maxAttempts int, retryDelay, timeout time.Duration, logger zerolog.Logger) NarrationService {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if retryDelay <= 0 {
		retryDelay = 3 * time.Second
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &narrationService{
		questions:   questions,
		synthesizer: synthesizer,
		uploader:    uploader,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		timeout:     timeout,
		logger:      logger.With().Str("component", "narration_service").Logger(),
		sleep:       time.Sleep,
	}
}

// Trigger schedules narration generation without blocking the caller. The job
// runs on a detached context so it outlives the triggering request.
func (s *narrationService) Trigger(questionID uint) {
	go s.EnsureAudio(context.Background(), questionID)
}

// EnsureAudio runs the bounded-retry narration job. It never returns an error:
// every failure path is logged and abandoned, and no failure state is
// persisted, so any future trigger can simply try again.
func (s *narrationService) EnsureAudio(ctx context.Context, questionID uint) {
	logger := s.logger.With().Uint("question_id", questionID).Logger()

	if s.synthesizer == nil || s.uploader == nil {
		logger.Debug().Msg("narration disabled, skipping")
		return
	}

	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error().Err(err).Msg("failed to load question for narration")
		}
		return
	}

	if !question.NeedsLectureAudio() {
		return
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		url, err := s.generate(ctx, questionID, question.LectureScript)
		if err == nil {
			narrationAttempts.WithLabelValues("success").Inc()
			logger.Info().Int("attempt", attempt).Str("url", url).Msg("lecture audio generated")
			return
		}

		narrationAttempts.WithLabelValues("failure").Inc()
		logger.Warn().Err(err).Int("attempt", attempt).Msg("narration attempt failed")

		if attempt < s.maxAttempts {
			s.sleep(s.retryDelay)
		}
	}

	logger.Error().Int("attempts", s.maxAttempts).Msg("narration abandoned after retry cap")
}

func (s *narrationService) generate(parent context.Context, questionID uint, script string) (string, error) {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	audio, err := s.synthesizer.Synthesize(ctx, script)
	if err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}

	if len(audio) == 0 {
		return "", fmt.Errorf("synthesizer returned an empty buffer")
	}

	if mime := mimetype.Detect(audio); !isAudioMime(mime.String()) {
		return "", fmt.Errorf("synthesizer returned %s, not audio", mime.String())
	}

	url, err := s.uploader.UploadAudio(ctx, fmt.Sprintf("lecture-%d", questionID), audio)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}

	// Re-check the guard at write time. A concurrent generation may have won;
	// the column is monotonic (null to url) so losing the race is harmless.
	updated, err := s.questions.SetLectureAudioURL(ctx, questionID, url)
	if err != nil {
		return "", fmt.Errorf("persist url: %w", err)
	}

	if !updated {
		s.logger.Debug().Uint("question_id", questionID).Msg("narration already present, discarding duplicate")
	}

	return url, nil
}

func isAudioMime(mime string) bool {
	return strings.HasPrefix(mime, "audio/") || strings.HasPrefix(mime, "video/")
}
