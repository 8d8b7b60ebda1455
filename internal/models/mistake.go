package models

import "time"

// Mistake categories extracted by the grader.
const (
	MistakeTypeGrammar     = "grammar"
	MistakeTypeSpelling    = "spelling"
	MistakeTypePunctuation = "punctuation"
	MistakeTypeVocabulary  = "vocabulary"
	MistakeTypeStyle       = "style"
)

// Review states a user can move a mistake through.
const (
	MistakeStatusNew       = "new"
	MistakeStatusReviewing = "reviewing"
	MistakeStatusMastered  = "mastered"
)

// Mistake is a single categorized error extracted from a submission's text.
// The full set for a submission is replaced atomically on every (re)grading;
// only the review status is mutated outside of grading, and only by its owner.
type Mistake struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SubmissionID  uint      `gorm:"not null;index" json:"submission_id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Type          string    `gorm:"size:32;not null" json:"type"`
	SubType       string    `gorm:"size:64" json:"sub_type,omitempty"`
	OriginalText  string    `gorm:"type:text;not null" json:"original_text"`
	CorrectedText string    `gorm:"type:text;not null" json:"corrected_text"`
	Explanation   string    `gorm:"type:text" json:"explanation"`
	Status        string    `gorm:"size:16;not null;default:new" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// ValidMistakeType reports whether the category belongs to the closed set.
func ValidMistakeType(t string) bool {
	switch t {
	case MistakeTypeGrammar, MistakeTypeSpelling, MistakeTypePunctuation, MistakeTypeVocabulary, MistakeTypeStyle:
		return true
	}
	return false
}

// ValidMistakeStatus reports whether the review status is one a user may set.
func ValidMistakeStatus(s string) bool {
	switch s {
	case MistakeStatusNew, MistakeStatusReviewing, MistakeStatusMastered:
		return true
	}
	return false
}
