package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/tulis-go-api/internal/service"
	"github.com/noah-isme/tulis-go-api/internal/utils"
)

// StatsHandler serves aggregate statistics and the achievement wall.
type StatsHandler struct {
	stats        service.StatsService
	achievements service.AchievementService
	logger       zerolog.Logger
}

// NewStatsHandler builds a stats handler instance.
func NewStatsHandler(stats service.StatsService, achievements service.AchievementService, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		stats:        stats,
		achievements: achievements,
		logger:       logger.With().Str("component", "stats_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *StatsHandler) Register(router fiber.Router) {
	router.Get("/stats", h.userStats)
	router.Get("/achievements", h.achievementList)
}

func (h *StatsHandler) userStats(c *fiber.Ctx) error {
	stats, err := h.stats.UserStats(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "stats retrieved", stats)
}

func (h *StatsHandler) achievementList(c *fiber.Ctx) error {
	achievements, err := h.achievements.List(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "achievements retrieved", achievements)
}
