package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/tulis-go-api/internal/dto"
	"github.com/noah-isme/tulis-go-api/internal/models"
	"github.com/noah-isme/tulis-go-api/internal/repository"
)

// ErrSubmissionNotFound covers both missing and not-owned submissions so that
// ownership is never leaked through the API.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrQuestionNotFound indicates the referenced question does not exist.
var ErrQuestionNotFound = errors.New("question not found")

// ErrEmptyContent indicates text was omitted despite a positive word count.
var ErrEmptyContent = errors.New("text is required when word count is positive")

// ErrRescoreConflict indicates a rescore was requested while an attempt is in flight.
var ErrRescoreConflict = errors.New("a grading attempt is already in flight")

// Enqueuer hands a submission id to the grading workers without blocking.
type Enqueuer interface {
	Enqueue(submissionID uint) bool
}

// SubmissionService covers intake, status polling, rescore, and history reads.
type SubmissionService interface {
	Submit(ctx context.Context, userID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionAcceptedResponse, error)
	Status(ctx context.Context, id, userID uint) (dto.SubmissionStatusResponse, error)
	Rescore(ctx context.Context, id, userID uint) (dto.SubmissionAcceptedResponse, error)
	History(ctx context.Context, userID uint, reviewOnly bool) ([]dto.HistoryItemResponse, error)
	Detail(ctx context.Context, id, userID uint) (dto.SubmissionDetailResponse, error)
	ToggleReview(ctx context.Context, id, userID uint) (bool, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	questions   repository.QuestionRepository
	drafts      repository.DraftRepository
	queue       Enqueuer
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(submissions repository.SubmissionRepository, questions repository.QuestionRepository, drafts repository.DraftRepository, queue Enqueuer, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		questions:   questions,
		drafts:      drafts,
		queue:       queue,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
	}
}

// Submit records the attempt and schedules grading. The caller gets an answer
// as soon as the row is durable; grading latency is never on the request path.
func (s *submissionService) Submit(ctx context.Context, userID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionAcceptedResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionAcceptedResponse{}, err
	}

	if payload.Content == "" && *payload.WordCount > 0 {
		return dto.SubmissionAcceptedResponse{}, ErrEmptyContent
	}

	if _, err := s.questions.GetByID(ctx, payload.QuestionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionAcceptedResponse{}, ErrQuestionNotFound
		}
		return dto.SubmissionAcceptedResponse{}, err
	}

	submission := models.Submission{
		UserID:           userID,
		QuestionID:       payload.QuestionID,
		TaskType:         payload.TaskType,
		Content:          payload.Content,
		WordCount:        *payload.WordCount,
		ProcessingStatus: models.ProcessingStatusQueued,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionAcceptedResponse{}, err
	}

	if err := s.drafts.DeleteByUserAndQuestion(ctx, userID, payload.QuestionID); err != nil {
		s.logger.Warn().Err(err).Uint("question_id", payload.QuestionID).Msg("failed to discard draft")
	}

	if !s.queue.Enqueue(submission.ID) {
		// The row stays queued; the requeue sweep picks it up once the
		// backlog drains. The caller still gets an accepted response.
		s.logger.Error().Uint("submission_id", submission.ID).Msg("grading backlog full at intake")
	}

	return dto.SubmissionAcceptedResponse{
		SubmissionID: submission.ID,
		Status:       submission.ProcessingStatus,
	}, nil
}

func (s *submissionService) Status(ctx context.Context, id, userID uint) (dto.SubmissionStatusResponse, error) {
	submission, err := s.submissions.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionStatusResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionStatusResponse{}, err
	}

	return dto.NewSubmissionStatusResponse(submission), nil
}

// Rescore moves a completed or failed submission back into the pipeline. A
// submission with an attempt in flight is refused; the requeued row is graded
// through the same queued-to-processing claim as a fresh intake.
func (s *submissionService) Rescore(ctx context.Context, id, userID uint) (dto.SubmissionAcceptedResponse, error) {
	submission, err := s.submissions.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionAcceptedResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionAcceptedResponse{}, err
	}

	if !submission.IsTerminal() {
		return dto.SubmissionAcceptedResponse{}, ErrRescoreConflict
	}

	if err := s.submissions.RequeueForRescore(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return dto.SubmissionAcceptedResponse{}, ErrRescoreConflict
		}
		return dto.SubmissionAcceptedResponse{}, err
	}

	if !s.queue.Enqueue(id) {
		// Same recovery path as intake: the row is already queued and the
		// sweep reschedules it.
		s.logger.Error().Uint("submission_id", id).Msg("grading backlog full at rescore")
	}

	return dto.SubmissionAcceptedResponse{
		SubmissionID: id,
		Status:       models.ProcessingStatusQueued,
	}, nil
}

func (s *submissionService) History(ctx context.Context, userID uint, reviewOnly bool) ([]dto.HistoryItemResponse, error) {
	submissions, err := s.submissions.ListByUser(ctx, userID, reviewOnly)
	if err != nil {
		return nil, err
	}

	items := make([]dto.HistoryItemResponse, 0, len(submissions))
	for _, submission := range submissions {
		items = append(items, dto.NewHistoryItemResponse(submission))
	}

	return items, nil
}

func (s *submissionService) Detail(ctx context.Context, id, userID uint) (dto.SubmissionDetailResponse, error) {
	submission, err := s.submissions.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionDetailResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionDetailResponse{}, err
	}

	return dto.NewSubmissionDetailResponse(submission), nil
}

func (s *submissionService) ToggleReview(ctx context.Context, id, userID uint) (bool, error) {
	marked, err := s.submissions.ToggleReview(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrSubmissionNotFound
		}
		return false, err
	}

	return marked, nil
}
