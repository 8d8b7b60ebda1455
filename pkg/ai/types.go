package ai

import "context"

// GradingInput contains the artefacts needed to grade a writing submission.
type GradingInput struct {
	TaskType     string
	Prompt       string
	ResponseText string
}

// FeedbackSection is one rubric dimension of the structured feedback.
type FeedbackSection struct {
	Rating  string `json:"rating"`
	Comment string `json:"comment"`
}

// Feedback is the structured rubric feedback returned by the grader.
type Feedback struct {
	TaskResponse      FeedbackSection `json:"taskResponse"`
	Organization      FeedbackSection `json:"organization"`
	LanguageUse       FeedbackSection `json:"languageUse"`
	GeneralSuggestion string          `json:"generalSuggestion"`
}

// Mistake is one discrete error the grader extracted from the text.
type Mistake struct {
	Type        string `json:"type"`
	SubType     string `json:"subType,omitempty"`
	Original    string `json:"original"`
	Corrected   string `json:"corrected"`
	Explanation string `json:"explanation"`
}

// GradingResult is the validated output of one grading attempt.
type GradingResult struct {
	Score    int       `json:"overallScore"`
	Feedback Feedback  `json:"feedback"`
	Mistakes []Mistake `json:"mistakes"`
}

// Grader describes an AI model capable of grading writing submissions.
type Grader interface {
	Grade(ctx context.Context, input GradingInput) (GradingResult, error)
}
