package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/tulis-go-api/internal/dto"
	"github.com/noah-isme/tulis-go-api/internal/service"
	"github.com/noah-isme/tulis-go-api/internal/utils"
)

// MistakeHandler manages the mistake notebook endpoints.
type MistakeHandler struct {
	service service.MistakeService
	logger  zerolog.Logger
}

// NewMistakeHandler builds a mistake handler instance.
func NewMistakeHandler(service service.MistakeService, logger zerolog.Logger) *MistakeHandler {
	return &MistakeHandler{
		service: service,
		logger:  logger.With().Str("component", "mistake_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *MistakeHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Patch("/:id", h.updateStatus)
}

func (h *MistakeHandler) list(c *fiber.Ctx) error {
	mistakes, err := h.service.List(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "mistakes retrieved", mistakes)
}

func (h *MistakeHandler) updateStatus(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.MistakeStatusUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	mistake, err := h.service.UpdateStatus(c.Context(), id, userIDFromContext(c), payload.Status)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "mistake updated", mistake)
}

func (h *MistakeHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrMistakeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "mistake not found")
	case errors.Is(err, service.ErrInvalidMistakeStatus):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid mistake status")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
