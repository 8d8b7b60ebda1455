package models

import (
	"time"

	"gorm.io/datatypes"
)

// ProcessingStatus enumerates the submission pipeline states.
const (
	ProcessingStatusQueued     = "queued"
	ProcessingStatusProcessing = "processing"
	ProcessingStatusCompleted  = "completed"
	ProcessingStatusFailed     = "failed"
)

// Submission represents one graded writing attempt.
//
// Score and Feedback are set together and only when the submission reaches the
// completed state; ProcessingError is set only in the failed state.
type Submission struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	QuestionID       uint           `gorm:"not null;index" json:"question_id"`
	TaskType         string         `gorm:"size:32;not null" json:"task_type"`
	Content          string         `gorm:"type:text" json:"content"`
	WordCount        int            `gorm:"not null" json:"word_count"`
	ProcessingStatus string         `gorm:"size:16;not null;default:queued" json:"processing_status"`
	ProcessingError  *string        `gorm:"type:text" json:"processing_error,omitempty"`
	Score            *int           `json:"score,omitempty"`
	Feedback         datatypes.JSON `json:"feedback,omitempty"`
	IsForReview      bool           `gorm:"not null;default:false" json:"is_for_review"`
	SubmittedAt      time.Time      `gorm:"autoCreateTime" json:"submitted_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	User             User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Question         Question       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Mistakes         []Mistake      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"mistakes,omitempty"`
}

// IsTerminal reports whether the submission has finished its current grading attempt.
func (s Submission) IsTerminal() bool {
	return s.ProcessingStatus == ProcessingStatusCompleted || s.ProcessingStatus == ProcessingStatusFailed
}
