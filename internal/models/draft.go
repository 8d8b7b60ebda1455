package models

import "time"

// Draft holds unsubmitted scratch content for a (user, question) pair.
// Submitting the question discards the draft.
type Draft struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_draft_user_question" json:"user_id"`
	QuestionID uint      `gorm:"not null;uniqueIndex:idx_draft_user_question" json:"question_id"`
	Content    string    `gorm:"type:text" json:"content"`
	UpdatedAt  time.Time `json:"updated_at"`
}
