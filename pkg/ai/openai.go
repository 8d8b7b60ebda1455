package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	gradingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tulis",
		Subsystem: "ai",
		Name:      "grading_duration_seconds",
		Help:      "Duration of AI grading requests",
	}, []string{"model"})

	gradingFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tulis",
		Subsystem: "ai",
		Name:      "grading_failures_total",
		Help:      "Number of AI grading failures",
	}, []string{"model", "reason"})
)

// OpenAIConfig defines configuration options for the OpenAI-compatible grader.
// BaseURL may point at any chat-completion compatible provider.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIGrader implements Grader against an OpenAI-compatible chat completion API.
type OpenAIGrader struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGrader builds a new grader using the provided configuration.
func NewOpenAIGrader(cfg OpenAIConfig) (*OpenAIGrader, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}

	tracer := otel.Tracer("github.com/noah-isme/tulis-go-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	client := openai.NewClientWithConfig(config)

	return &OpenAIGrader{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Grade sends the grading request to the model and parses the response.
func (g *OpenAIGrader) Grade(parent context.Context, input GradingInput) (GradingResult, error) {
	ctx, span := g.tracer.Start(parent, "openai.grade", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.String("task_type", input.TaskType),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: graderSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildUserPrompt(input),
			},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, request)
	duration := time.Since(start)
	gradingDuration.WithLabelValues(g.cfg.Model).Observe(duration.Seconds())
	if err != nil {
		gradingFailures.WithLabelValues(g.cfg.Model, "request").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GradingResult{}, fmt.Errorf("openai grade: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("%w: no choices returned", ErrMalformedResponse)
		gradingFailures.WithLabelValues(g.cfg.Model, "parse").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GradingResult{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	result, err := ParseGradingResponse(content)
	if err != nil {
		gradingFailures.WithLabelValues(g.cfg.Model, "parse").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GradingResult{}, err
	}

	span.SetAttributes(attribute.Int("grading.score", result.Score), attribute.Int("grading.mistakes", len(result.Mistakes)))

	return result, nil
}

func graderSystemPrompt() string {
	return `You are an expert ETS-trained evaluator for the TOEFL iBT Writing section. Evaluate the user's response against the official rubric and extract individual grammar, spelling, punctuation, vocabulary, and style errors.

Respond ONLY with a single valid JSON object of this shape:
{
  "overallScore": <integer from 0 to 30>,
  "feedback": {
    "taskResponse": { "rating": "<string>", "comment": "<string>" },
    "organization": { "rating": "<string>", "comment": "<string>" },
    "languageUse": { "rating": "<string>", "comment": "<string>" },
    "generalSuggestion": "<string>"
  },
  "mistakes": [
    {
      "type": "<'grammar'|'spelling'|'punctuation'|'vocabulary'|'style'>",
      "original": "<the exact incorrect phrase>",
      "corrected": "<the suggested correct phrase>",
      "explanation": "<a brief, clear explanation>"
    }
  ]
}`
}

func buildUserPrompt(input GradingInput) string {
	builder := strings.Builder{}
	builder.WriteString("## TASK TYPE ##\n")
	builder.WriteString(taskTypeName(input.TaskType))
	builder.WriteString("\n\n## PROMPT ##\n")
	builder.WriteString(input.Prompt)
	builder.WriteString("\n\n## USER RESPONSE ##\n")
	builder.WriteString(input.ResponseText)
	return builder.String()
}

func taskTypeName(taskType string) string {
	if taskType == "integrated_writing" {
		return "Integrated Writing"
	}
	return "Academic Discussion"
}
