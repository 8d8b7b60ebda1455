package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/tulis-go-api/internal/models"
)

// SubmissionCreateRequest is the intake payload for a new writing attempt.
type SubmissionCreateRequest struct {
	QuestionID uint   `json:"questionId" validate:"required"`
	TaskType   string `json:"taskCategory" validate:"required,oneof=integrated_writing academic_discussion"`
	Content    string `json:"text"`
	WordCount  *int   `json:"wordCount" validate:"required,gte=0"`
}

// SubmissionAcceptedResponse acknowledges intake before grading begins.
type SubmissionAcceptedResponse struct {
	SubmissionID uint   `json:"submissionId"`
	Status       string `json:"status"`
}

// SubmissionStatusResponse is the polling payload for the pipeline state.
type SubmissionStatusResponse struct {
	ProcessingStatus string  `json:"processingStatus"`
	ProcessingError  *string `json:"processingError,omitempty"`
	Score            *int    `json:"score,omitempty"`
}

// NewSubmissionStatusResponse maps a submission onto its polling view.
func NewSubmissionStatusResponse(submission models.Submission) SubmissionStatusResponse {
	return SubmissionStatusResponse{
		ProcessingStatus: submission.ProcessingStatus,
		ProcessingError:  submission.ProcessingError,
		Score:            submission.Score,
	}
}

// HistoryItemResponse is one row in the user's practice history.
type HistoryItemResponse struct {
	ID               uint      `json:"id"`
	QuestionID       uint      `json:"question_id"`
	QuestionTitle    string    `json:"question_title"`
	TaskType         string    `json:"task_type"`
	WordCount        int       `json:"word_count"`
	ProcessingStatus string    `json:"processing_status"`
	Score            *int      `json:"score,omitempty"`
	IsForReview      bool      `json:"is_for_review"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

// NewHistoryItemResponse maps a submission onto a history row.
func NewHistoryItemResponse(submission models.Submission) HistoryItemResponse {
	title := submission.Question.Title
	if title == "" {
		title = "Archived Question"
	}

	return HistoryItemResponse{
		ID:               submission.ID,
		QuestionID:       submission.QuestionID,
		QuestionTitle:    title,
		TaskType:         submission.TaskType,
		WordCount:        submission.WordCount,
		ProcessingStatus: submission.ProcessingStatus,
		Score:            submission.Score,
		IsForReview:      submission.IsForReview,
		SubmittedAt:      submission.SubmittedAt,
	}
}

// SubmissionDetailResponse carries a full graded attempt with its context.
type SubmissionDetailResponse struct {
	ID               uint              `json:"id"`
	Question         QuestionResponse  `json:"question"`
	Content          string            `json:"content"`
	WordCount        int               `json:"word_count"`
	ProcessingStatus string            `json:"processing_status"`
	ProcessingError  *string           `json:"processing_error,omitempty"`
	Score            *int              `json:"score,omitempty"`
	Feedback         json.RawMessage   `json:"feedback,omitempty"`
	Mistakes         []MistakeResponse `json:"mistakes"`
	IsForReview      bool              `json:"is_for_review"`
	SubmittedAt      time.Time         `json:"submitted_at"`
}

// NewSubmissionDetailResponse maps a submission with preloaded associations.
func NewSubmissionDetailResponse(submission models.Submission) SubmissionDetailResponse {
	mistakes := make([]MistakeResponse, 0, len(submission.Mistakes))
	for _, mistake := range submission.Mistakes {
		mistakes = append(mistakes, NewMistakeResponse(mistake))
	}

	return SubmissionDetailResponse{
		ID:               submission.ID,
		Question:         NewQuestionResponse(submission.Question),
		Content:          submission.Content,
		WordCount:        submission.WordCount,
		ProcessingStatus: submission.ProcessingStatus,
		ProcessingError:  submission.ProcessingError,
		Score:            submission.Score,
		Feedback:         json.RawMessage(submission.Feedback),
		Mistakes:         mistakes,
		IsForReview:      submission.IsForReview,
		SubmittedAt:      submission.SubmittedAt,
	}
}
