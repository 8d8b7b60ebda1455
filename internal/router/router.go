package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/tulis-go-api/internal/config"
	"github.com/noah-isme/tulis-go-api/internal/handler"
	"github.com/noah-isme/tulis-go-api/internal/middleware"
	"github.com/noah-isme/tulis-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	QuestionHandler   *handler.QuestionHandler
	SubmissionHandler *handler.SubmissionHandler
	MistakeHandler    *handler.MistakeHandler
	StatsHandler      *handler.StatsHandler
	SeedHandler       *handler.SeedHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		deps.AuthHandler.Register(auth)
	}

	if deps.QuestionHandler != nil {
		questions := api.Group("/questions", jwtMiddleware)
		deps.QuestionHandler.Register(questions)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware,
			middleware.RateLimit("submissions", 30, time.Minute))
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.MistakeHandler != nil {
		mistakes := api.Group("/mistakes", jwtMiddleware)
		deps.MistakeHandler.Register(mistakes)
	}

	if deps.StatsHandler != nil {
		me := api.Group("/me", jwtMiddleware)
		deps.StatsHandler.Register(me)
	}

	if deps.SeedHandler != nil {
		seed := api.Group("/seed")
		deps.SeedHandler.Register(seed)
	}
}
