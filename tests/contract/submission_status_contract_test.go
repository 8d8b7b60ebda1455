package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tulis-go-api/internal/dto"
	"github.com/noah-isme/tulis-go-api/internal/handler"
)

type stubSubmissionService struct {
	status dto.SubmissionStatusResponse
}

func (s stubSubmissionService) Submit(context.Context, uint, dto.SubmissionCreateRequest) (dto.SubmissionAcceptedResponse, error) {
	return dto.SubmissionAcceptedResponse{}, nil
}

func (s stubSubmissionService) Status(context.Context, uint, uint) (dto.SubmissionStatusResponse, error) {
	return s.status, nil
}

func (s stubSubmissionService) Rescore(context.Context, uint, uint) (dto.SubmissionAcceptedResponse, error) {
	return dto.SubmissionAcceptedResponse{}, nil
}

func (s stubSubmissionService) History(context.Context, uint, bool) ([]dto.HistoryItemResponse, error) {
	return nil, nil
}

func (s stubSubmissionService) Detail(context.Context, uint, uint) (dto.SubmissionDetailResponse, error) {
	return dto.SubmissionDetailResponse{}, nil
}

func (s stubSubmissionService) ToggleReview(context.Context, uint, uint) (bool, error) {
	return false, nil
}

func TestSubmissionStatusContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "submission_status.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	score := 24
	cases := map[string]dto.SubmissionStatusResponse{
		"queued":    {ProcessingStatus: "queued"},
		"completed": {ProcessingStatus: "completed", Score: &score},
		"failed": {
			ProcessingStatus: "failed",
			ProcessingError:  ptrString("The grading service could not be reached. Please try rescoring."),
		},
	}

	for name, status := range cases {
		t.Run(name, func(t *testing.T) {
			svc := stubSubmissionService{status: status}

			app := fiber.New()
			group := app.Group("/api/v1/submissions", func(c *fiber.Ctx) error {
				c.Locals("user_id", uint(1))
				return c.Next()
			})
			handler.NewSubmissionHandler(svc, zerolog.New(io.Discard)).Register(group)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions/1/status", nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			resp.Body.Close()

			var payload interface{}
			require.NoError(t, json.Unmarshal(body, &payload))
			require.NoError(t, schema.Validate(payload))
		})
	}
}

func ptrString(s string) *string { return &s }
