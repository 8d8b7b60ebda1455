package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/tulis-go-api/internal/dto"
	"github.com/noah-isme/tulis-go-api/internal/models"
	"github.com/noah-isme/tulis-go-api/internal/repository"
)

// ErrNotEnoughQuestions indicates the bank cannot serve a full writing test.
var ErrNotEnoughQuestions = errors.New("not enough questions for a full writing test")

// ErrAudioUnavailable indicates narration has not been generated yet.
var ErrAudioUnavailable = errors.New("audio not available")

// ErrDraftNotFound indicates no saved draft exists for the question.
var ErrDraftNotFound = errors.New("draft not found")

// QuestionService serves the question bank and triggers narration generation.
type QuestionService interface {
	List(ctx context.Context, userID uint) ([]dto.QuestionSummaryResponse, error)
	Get(ctx context.Context, id uint) (dto.QuestionResponse, error)
	WritingTest(ctx context.Context) ([]dto.QuestionResponse, error)
	GenerateAudio(ctx context.Context, id uint) (string, error)
	SaveDraft(ctx context.Context, userID, questionID uint, content string) error
	GetDraft(ctx context.Context, userID, questionID uint) (dto.DraftResponse, error)
}

type questionService struct {
	questions repository.QuestionRepository
	drafts    repository.DraftRepository
	narration NarrationService
	logger    zerolog.Logger
}

// NewQuestionService constructs the question service.
func NewQuestionService(questions repository.QuestionRepository, drafts repository.DraftRepository, narration NarrationService, logger zerolog.Logger) QuestionService {
	return &questionService{
		questions: questions,
		drafts:    drafts,
		narration: narration,
		logger:    logger.With().Str("component", "question_service").Logger(),
	}
}

func (s *questionService) List(ctx context.Context, userID uint) ([]dto.QuestionSummaryResponse, error) {
	questions, err := s.questions.List(ctx)
	if err != nil {
		return nil, err
	}

	completed, err := s.questions.CompletedQuestionIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.QuestionSummaryResponse, 0, len(questions))
	for _, question := range questions {
		summaries = append(summaries, dto.QuestionSummaryResponse{
			ID:           question.ID,
			Title:        question.Title,
			Topic:        question.Topic,
			TaskType:     question.TaskType,
			HasCompleted: completed[question.ID],
		})
	}

	return summaries, nil
}

// Get returns the question detail and lazily kicks off narration generation.
// The read never waits on synthesis.
func (s *questionService) Get(ctx context.Context, id uint) (dto.QuestionResponse, error) {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}
		return dto.QuestionResponse{}, err
	}

	if question.NeedsLectureAudio() {
		s.narration.Trigger(question.ID)
	}

	return dto.NewQuestionResponse(question), nil
}

// WritingTest returns one random question per task type, mirroring the layout
// of the real exam.
func (s *questionService) WritingTest(ctx context.Context) ([]dto.QuestionResponse, error) {
	integrated, err := s.questions.RandomByTaskType(ctx, models.TaskTypeIntegratedWriting)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnoughQuestions
		}
		return nil, err
	}

	academic, err := s.questions.RandomByTaskType(ctx, models.TaskTypeAcademicDiscussion)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnoughQuestions
		}
		return nil, err
	}

	if integrated.NeedsLectureAudio() {
		s.narration.Trigger(integrated.ID)
	}

	return []dto.QuestionResponse{
		dto.NewQuestionResponse(integrated),
		dto.NewQuestionResponse(academic),
	}, nil
}

// GenerateAudio runs the narration job synchronously and reports the stored
// URL. Callers poll when the audio is still being produced.
func (s *questionService) GenerateAudio(ctx context.Context, id uint) (string, error) {
	s.narration.EnsureAudio(ctx, id)

	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrQuestionNotFound
		}
		return "", err
	}

	if !question.HasLectureAudio() {
		return "", ErrAudioUnavailable
	}

	return *question.LectureAudioURL, nil
}

func (s *questionService) SaveDraft(ctx context.Context, userID, questionID uint, content string) error {
	if _, err := s.questions.GetByID(ctx, questionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}

	draft := models.Draft{
		UserID:     userID,
		QuestionID: questionID,
		Content:    content,
	}

	return s.drafts.Save(ctx, &draft)
}

func (s *questionService) GetDraft(ctx context.Context, userID, questionID uint) (dto.DraftResponse, error) {
	draft, err := s.drafts.GetByUserAndQuestion(ctx, userID, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DraftResponse{}, ErrDraftNotFound
		}
		return dto.DraftResponse{}, err
	}

	return dto.DraftResponse{
		QuestionID: draft.QuestionID,
		Content:    draft.Content,
		UpdatedAt:  draft.UpdatedAt,
	}, nil
}
