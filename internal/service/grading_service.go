package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/tulis-go-api/internal/models"
	"github.com/noah-isme/tulis-go-api/internal/repository"
	"github.com/noah-isme/tulis-go-api/pkg/ai"
)

// Diagnostics surfaced to users via the status endpoint. Raw provider errors
// stay in the logs.
const (
	diagnosticUnreachable = "The grading service could not be reached. Please try rescoring."
	diagnosticUnreadable  = "The grading service returned an unreadable result. Please try rescoring."
	diagnosticNotFound    = "The submission context could not be loaded."
)

// GradingService runs one grading attempt per invocation. It is driven by the
// grading dispatcher and never called from a request handler directly.
type GradingService interface {
	Process(ctx context.Context, submissionID uint)
}

// AchievementEvaluator reacts to a successful grading commit.
type AchievementEvaluator interface {
	EvaluateAfterGrading(ctx context.Context, userID, submissionID uint) error
}

// StatsInvalidator drops cached aggregates after a grading commit.
type StatsInvalidator interface {
	InvalidateUser(ctx context.Context, userID uint) error
}

type gradingService struct {
	submissions  repository.SubmissionRepository
	grader       ai.Grader
	achievements AchievementEvaluator
	stats        StatsInvalidator
	timeout      time.Duration
	logger       zerolog.Logger
	tracer       trace.Tracer
}

// NewGradingService constructs the grading worker.
func NewGradingService(submissions repository.SubmissionRepository, grader ai.Grader, achievements AchievementEvaluator, stats StatsInvalidator, timeout time.Duration, logger zerolog.Logger) GradingService {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	return &gradingService{
		submissions:  submissions,
		grader:       grader,
		achievements: achievements,
		stats:        stats,
		timeout:      timeout,
		logger:       logger.With().Str("component", "grading_service").Logger(),
		tracer:       otel.Tracer("github.com/noah-isme/tulis-go-api/internal/service/grading"),
	}
}

// Process executes one grading attempt for the submission. Failures are
// recorded on the submission itself; nothing propagates to the dispatcher.
func (s *gradingService) Process(parent context.Context, submissionID uint) {
	ctx, span := s.tracer.Start(parent, "grading.process", trace.WithAttributes(
		attribute.Int64("submission_id", int64(submissionID)),
	))
	defer span.End()

	logger := s.logger.With().Uint("submission_id", submissionID).Logger()

	if err := s.claim(ctx, submissionID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "claim_failed")
		logger.Warn().Err(err).Msg("submission not claimable, skipping attempt")
		return
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load_failed")
		logger.Error().Err(err).Msg("failed to load submission")
		s.fail(ctx, submissionID, diagnosticNotFound, logger)
		return
	}

	input := ai.GradingInput{
		TaskType:     submission.TaskType,
		Prompt:       buildTaskContext(submission.Question),
		ResponseText: submission.Content,
	}

	gradeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	result, err := s.grader.Grade(gradeCtx, input)
	cancel()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "grading_failed")
		logger.Error().Err(err).Msg("grading attempt failed")

		diagnostic := diagnosticUnreachable
		if errors.Is(err, ai.ErrMalformedResponse) {
			diagnostic = diagnosticUnreadable
		}
		s.fail(ctx, submissionID, diagnostic, logger)
		return
	}

	feedback, err := json.Marshal(result.Feedback)
	if err != nil {
		span.RecordError(err)
		logger.Error().Err(err).Msg("failed to encode feedback")
		s.fail(ctx, submissionID, diagnosticUnreadable, logger)
		return
	}

	mistakes := make([]models.Mistake, 0, len(result.Mistakes))
	for _, mistake := range result.Mistakes {
		mistakes = append(mistakes, models.Mistake{
			UserID:        submission.UserID,
			Type:          mistake.Type,
			SubType:       mistake.SubType,
			OriginalText:  mistake.Original,
			CorrectedText: mistake.Corrected,
			Explanation:   mistake.Explanation,
			Status:        models.MistakeStatusNew,
		})
	}

	if err := s.submissions.CompleteGrading(ctx, submissionID, result.Score, datatypes.JSON(feedback), mistakes); err != nil {
		// The transaction rolled back; no partial grading state was written.
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit_failed")
		logger.Error().Err(err).Msg("failed to commit grading result")
		return
	}

	span.SetAttributes(attribute.Int("score", result.Score), attribute.Int("mistakes", len(mistakes)))
	logger.Info().Int("score", result.Score).Int("mistakes", len(mistakes)).Msg("submission graded")

	// Post-commit reactions are best effort and must never affect the grading
	// outcome that was just committed.
	if s.achievements != nil {
		if err := s.achievements.EvaluateAfterGrading(ctx, submission.UserID, submissionID); err != nil {
			logger.Error().Err(err).Msg("achievement evaluation failed")
		}
	}

	if s.stats != nil {
		if err := s.stats.InvalidateUser(ctx, submission.UserID); err != nil {
			logger.Warn().Err(err).Msg("failed to invalidate stats cache")
		}
	}
}

// claim acquires the per-submission processing lock. Intake, rescore, and the
// requeue sweep all deliver submissions in the queued state, so the
// queued-to-processing compare-and-set is the single entry into an attempt:
// a duplicate delivery for the same id loses the race and is skipped.
func (s *gradingService) claim(ctx context.Context, submissionID uint) error {
	return s.submissions.BeginProcessing(ctx, submissionID)
}

func (s *gradingService) fail(ctx context.Context, submissionID uint, diagnostic string, logger zerolog.Logger) {
	if err := s.submissions.MarkFailed(ctx, submissionID, diagnostic); err != nil {
		logger.Error().Err(err).Msg("failed to record grading failure")
	}
}

// buildTaskContext assembles the opaque prompt context the grader receives.
func buildTaskContext(question models.Question) string {
	if question.TaskType == models.TaskTypeIntegratedWriting {
		return fmt.Sprintf("Reading: %s\nLecture: %s", question.ReadingPassage, question.LectureScript)
	}

	builder := strings.Builder{}
	builder.WriteString("Professor's Prompt: ")
	builder.WriteString(question.ProfessorPrompt)
	builder.WriteString("\n")
	builder.WriteString(question.Student1Author)
	builder.WriteString("'s Post: ")
	builder.WriteString(question.Student1Post)
	builder.WriteString("\n")
	builder.WriteString(question.Student2Author)
	builder.WriteString("'s Post: ")
	builder.WriteString(question.Student2Post)
	return builder.String()
}
