package models

import "time"

// Task types supported by the platform.
const (
	TaskTypeIntegratedWriting  = "integrated_writing"
	TaskTypeAcademicDiscussion = "academic_discussion"
)

// Question represents a single practice prompt a user can respond to.
type Question struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Topic           string    `gorm:"size:255" json:"topic"`
	TaskType        string    `gorm:"size:32;not null;index" json:"task_type"`
	ReadingPassage  string    `gorm:"type:text" json:"reading_passage,omitempty"`
	LectureScript   string    `gorm:"type:text" json:"lecture_script,omitempty"`
	LectureAudioURL *string   `gorm:"size:512" json:"lecture_audio_url,omitempty"`
	ProfessorPrompt string    `gorm:"type:text" json:"professor_prompt,omitempty"`
	Student1Author  string    `gorm:"size:255" json:"student1_author,omitempty"`
	Student1Post    string    `gorm:"type:text" json:"student1_post,omitempty"`
	Student2Author  string    `gorm:"size:255" json:"student2_author,omitempty"`
	Student2Post    string    `gorm:"type:text" json:"student2_post,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HasLectureAudio reports whether narration has already been generated.
func (q Question) HasLectureAudio() bool {
	return q.LectureAudioURL != nil && *q.LectureAudioURL != ""
}

// NeedsLectureAudio reports whether the question qualifies for narration generation.
func (q Question) NeedsLectureAudio() bool {
	return q.TaskType == TaskTypeIntegratedWriting && !q.HasLectureAudio() && q.LectureScript != ""
}
