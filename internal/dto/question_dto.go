package dto

import (
	"time"

	"github.com/noah-isme/tulis-go-api/internal/models"
)

// QuestionSummaryResponse is one row in the question list.
type QuestionSummaryResponse struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Topic        string `json:"topic"`
	TaskType     string `json:"task_type"`
	HasCompleted bool   `json:"has_completed"`
}

// QuestionResponse carries the full practice prompt.
type QuestionResponse struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Topic           string    `json:"topic"`
	TaskType        string    `json:"task_type"`
	ReadingPassage  string    `json:"reading_passage,omitempty"`
	LectureScript   string    `json:"lecture_script,omitempty"`
	LectureAudioURL *string   `json:"lecture_audio_url,omitempty"`
	ProfessorPrompt string    `json:"professor_prompt,omitempty"`
	Student1Author  string    `json:"student1_author,omitempty"`
	Student1Post    string    `json:"student1_post,omitempty"`
	Student2Author  string    `json:"student2_author,omitempty"`
	Student2Post    string    `json:"student2_post,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewQuestionResponse maps a question model onto its response shape.
func NewQuestionResponse(question models.Question) QuestionResponse {
	return QuestionResponse{
		ID:              question.ID,
		Title:           question.Title,
		Topic:           question.Topic,
		TaskType:        question.TaskType,
		ReadingPassage:  question.ReadingPassage,
		LectureScript:   question.LectureScript,
		LectureAudioURL: question.LectureAudioURL,
		ProfessorPrompt: question.ProfessorPrompt,
		Student1Author:  question.Student1Author,
		Student1Post:    question.Student1Post,
		Student2Author:  question.Student2Author,
		Student2Post:    question.Student2Post,
		CreatedAt:       question.CreatedAt,
	}
}

// DraftSaveRequest stores scratch content for a question.
type DraftSaveRequest struct {
	Content string `json:"content"`
}

// DraftResponse returns saved scratch content.
type DraftResponse struct {
	QuestionID uint      `json:"question_id"`
	Content    string    `json:"content"`
	UpdatedAt  time.Time `json:"updated_at"`
}
