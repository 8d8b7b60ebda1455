package middleware_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tulis-go-api/internal/middleware"
	"github.com/noah-isme/tulis-go-api/internal/utils"
)

func TestRateLimitRejectsWithEnvelopeAfterBudget(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.RateLimit("test", 1, time.Minute))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, "pong", nil)
	})

	first, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, first.StatusCode)

	second, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil))
	require.NoError(t, err)
	defer second.Body.Close()
	require.Equal(t, fiber.StatusTooManyRequests, second.StatusCode)

	var body utils.APIResponse
	require.NoError(t, json.NewDecoder(second.Body).Decode(&body))
	require.False(t, body.Success)
	require.NotEmpty(t, body.Message)
}
