package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tulis-go-api/internal/dto"
	"github.com/noah-isme/tulis-go-api/internal/handler"
	"github.com/noah-isme/tulis-go-api/internal/service"
)

type mockSubmissionService struct {
	lastUserID   uint
	lastPayload  dto.SubmissionCreateRequest
	accepted     dto.SubmissionAcceptedResponse
	status       dto.SubmissionStatusResponse
	history      []dto.HistoryItemResponse
	detail       dto.SubmissionDetailResponse
	reviewMarked bool
	err          error
}

func (m *mockSubmissionService) Submit(_ context.Context, userID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionAcceptedResponse, error) {
	m.lastUserID = userID
	m.lastPayload = payload
	return m.accepted, m.err
}

func (m *mockSubmissionService) Status(_ context.Context, id, userID uint) (dto.SubmissionStatusResponse, error) {
	m.lastUserID = userID
	return m.status, m.err
}

func (m *mockSubmissionService) Rescore(_ context.Context, id, userID uint) (dto.SubmissionAcceptedResponse, error) {
	m.lastUserID = userID
	return m.accepted, m.err
}

func (m *mockSubmissionService) History(_ context.Context, userID uint, reviewOnly bool) ([]dto.HistoryItemResponse, error) {
	return m.history, m.err
}

func (m *mockSubmissionService) Detail(_ context.Context, id, userID uint) (dto.SubmissionDetailResponse, error) {
	return m.detail, m.err
}

func (m *mockSubmissionService) ToggleReview(_ context.Context, id, userID uint) (bool, error) {
	return m.reviewMarked, m.err
}

func newSubmissionApp(svc service.SubmissionService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/submissions", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(42))
		return c.Next()
	})
	handler.NewSubmissionHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestSubmissionHandler_CreateReturns201Queued(t *testing.T) {
	svc := &mockSubmissionService{accepted: dto.SubmissionAcceptedResponse{SubmissionID: 7, Status: "queued"}}
	app := newSubmissionApp(svc)

	wordCount := 120
	payload := dto.SubmissionCreateRequest{
		QuestionID: 3,
		TaskType:   "integrated_writing",
		Content:    "The lecture disputes the reading.",
		WordCount:  &wordCount,
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/submissions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var response struct {
		Success bool                           `json:"success"`
		Data    dto.SubmissionAcceptedResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, uint(7), response.Data.SubmissionID)
	require.Equal(t, "queued", response.Data.Status)
	require.Equal(t, uint(42), svc.lastUserID)
	require.Equal(t, uint(3), svc.lastPayload.QuestionID)
}

func TestSubmissionHandler_CreateRejectsBadBody(t *testing.T) {
	app := newSubmissionApp(&mockSubmissionService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/submissions", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmissionHandler_StatusNotFound(t *testing.T) {
	svc := &mockSubmissionService{err: service.ErrSubmissionNotFound}
	app := newSubmissionApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions/9/status", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSubmissionHandler_StatusReturnsPipelineState(t *testing.T) {
	diagnostic := "The grading service could not be reached. Please try rescoring."
	svc := &mockSubmissionService{status: dto.SubmissionStatusResponse{
		ProcessingStatus: "failed",
		ProcessingError:  &diagnostic,
	}}
	app := newSubmissionApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions/9/status", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data dto.SubmissionStatusResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, "failed", response.Data.ProcessingStatus)
	require.NotNil(t, response.Data.ProcessingError)
}

func TestSubmissionHandler_RescoreConflict(t *testing.T) {
	svc := &mockSubmissionService{err: service.ErrRescoreConflict}
	app := newSubmissionApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/submissions/9/rescore", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestSubmissionHandler_RescoreAccepted(t *testing.T) {
	svc := &mockSubmissionService{accepted: dto.SubmissionAcceptedResponse{SubmissionID: 9, Status: "queued"}}
	app := newSubmissionApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/submissions/9/rescore", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)
}

func TestSubmissionHandler_InvalidIDParam(t *testing.T) {
	app := newSubmissionApp(&mockSubmissionService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions/abc/status", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
