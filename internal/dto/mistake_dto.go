package dto

import (
	"time"

	"github.com/noah-isme/tulis-go-api/internal/models"
)

// MistakeResponse is one extracted error in API responses.
type MistakeResponse struct {
	ID            uint      `json:"id"`
	SubmissionID  uint      `json:"submission_id"`
	Type          string    `json:"type"`
	SubType       string    `json:"sub_type,omitempty"`
	OriginalText  string    `json:"original_text"`
	CorrectedText string    `json:"corrected_text"`
	Explanation   string    `json:"explanation"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewMistakeResponse maps a mistake model onto its response shape.
func NewMistakeResponse(mistake models.Mistake) MistakeResponse {
	return MistakeResponse{
		ID:            mistake.ID,
		SubmissionID:  mistake.SubmissionID,
		Type:          mistake.Type,
		SubType:       mistake.SubType,
		OriginalText:  mistake.OriginalText,
		CorrectedText: mistake.CorrectedText,
		Explanation:   mistake.Explanation,
		Status:        mistake.Status,
		CreatedAt:     mistake.CreatedAt,
	}
}

// MistakeStatusUpdateRequest moves a mistake through its review states.
type MistakeStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=new reviewing mastered"`
}
