package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/tulis-go-api/internal/dto"
	"github.com/noah-isme/tulis-go-api/internal/service"
	"github.com/noah-isme/tulis-go-api/internal/utils"
)

// QuestionHandler manages question bank and draft endpoints.
type QuestionHandler struct {
	service service.QuestionService
	logger  zerolog.Logger
}

// NewQuestionHandler builds a question handler instance.
func NewQuestionHandler(service service.QuestionService, logger zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		service: service,
		logger:  logger.With().Str("component", "question_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *QuestionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/writing-test", h.writingTest)
	router.Get("/:id", h.detail)
	router.Post("/:id/generate-audio", h.generateAudio)
	router.Get("/:id/draft", h.getDraft)
	router.Put("/:id/draft", h.saveDraft)
}

func (h *QuestionHandler) list(c *fiber.Ctx) error {
	questions, err := h.service.List(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "questions retrieved", questions)
}

func (h *QuestionHandler) writingTest(c *fiber.Ctx) error {
	questions, err := h.service.WritingTest(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "writing test assembled", questions)
}

func (h *QuestionHandler) detail(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	question, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "question retrieved", question)
}

func (h *QuestionHandler) generateAudio(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	url, err := h.service.GenerateAudio(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAudioUnavailable) {
			return utils.SendAccepted(c, "audio is still being generated", nil)
		}
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "audio ready", fiber.Map{"audio_url": url})
}

func (h *QuestionHandler) getDraft(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	draft, err := h.service.GetDraft(c.Context(), userIDFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "draft retrieved", draft)
}

func (h *QuestionHandler) saveDraft(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.DraftSaveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.SaveDraft(c.Context(), userIDFromContext(c), id, payload.Content); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "draft saved", nil)
}

func (h *QuestionHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrQuestionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "question not found")
	case errors.Is(err, service.ErrDraftNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "draft not found")
	case errors.Is(err, service.ErrNotEnoughQuestions):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "not enough questions for a full writing test")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
