package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Score bounds for the writing rubric.
const (
	MinScore = 0
	MaxScore = 30
)

// ErrMalformedResponse indicates the grader output could not be parsed into a
// valid grading result.
var ErrMalformedResponse = errors.New("malformed grader response")

// ParseGradingResponse extracts and validates a grading result from free-form
// model output. Models frequently wrap their JSON answer in prose or analysis
// blocks, so the first balanced JSON object found in the content is parsed.
func ParseGradingResponse(content string) (GradingResult, error) {
	raw, err := extractJSONObject(content)
	if err != nil {
		return GradingResult{}, err
	}

	var payload struct {
		OverallScore json.Number     `json:"overallScore"`
		Feedback     json.RawMessage `json:"feedback"`
		Mistakes     []Mistake       `json:"mistakes"`
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return GradingResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	score, err := payload.OverallScore.Int64()
	if err != nil {
		return GradingResult{}, fmt.Errorf("%w: overallScore is not an integer", ErrMalformedResponse)
	}

	if score < MinScore || score > MaxScore {
		return GradingResult{}, fmt.Errorf("%w: overallScore %d outside [%d,%d]", ErrMalformedResponse, score, MinScore, MaxScore)
	}

	feedback, err := parseFeedback(payload.Feedback)
	if err != nil {
		return GradingResult{}, err
	}

	mistakes := payload.Mistakes
	if mistakes == nil {
		mistakes = []Mistake{}
	}

	for i, mistake := range mistakes {
		if !ValidTypes[mistake.Type] {
			return GradingResult{}, fmt.Errorf("%w: unknown mistake type %q", ErrMalformedResponse, mistake.Type)
		}
		if mistake.Original == "" || mistake.Corrected == "" {
			return GradingResult{}, fmt.Errorf("%w: mistake %d is missing original or corrected text", ErrMalformedResponse, i)
		}
	}

	return GradingResult{
		Score:    int(score),
		Feedback: feedback,
		Mistakes: mistakes,
	}, nil
}

// ValidTypes is the closed set of mistake categories the grader may emit.
var ValidTypes = map[string]bool{
	"grammar":     true,
	"spelling":    true,
	"punctuation": true,
	"vocabulary":  true,
	"style":       true,
}

func parseFeedback(raw json.RawMessage) (Feedback, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Feedback{}, fmt.Errorf("%w: feedback is not an object", ErrMalformedResponse)
	}

	var feedback Feedback
	if err := json.Unmarshal(trimmed, &feedback); err != nil {
		return Feedback{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return feedback, nil
}

// extractJSONObject returns the first balanced JSON object in the content,
// tolerating prose before and after it.
func extractJSONObject(content string) ([]byte, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if start >= 0 && inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return []byte(content[start : i+1]), nil
				}
			}
		case '"':
			if start >= 0 {
				inString = true
			}
		}
	}

	return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
}
