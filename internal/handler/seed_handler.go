package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/tulis-go-api/internal/service"
	"github.com/noah-isme/tulis-go-api/internal/utils"
)

// SeedHandler exposes tooling endpoints for seeding data.
type SeedHandler struct {
	service service.SeedService
	logger  zerolog.Logger
}

// NewSeedHandler constructs a seed handler.
func NewSeedHandler(service service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires seed routes.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("", h.seed)
}

func (h *SeedHandler) seed(c *fiber.Ctx) error {
	token := c.Get("X-Seed-Token")

	result, err := h.service.Seed(c.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrSeedForbidden) {
			return utils.SendError(c, fiber.StatusForbidden, "invalid seed token")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("seed failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "seed completed", result)
}
