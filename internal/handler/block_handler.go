package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gradefetcher-api/internal/dto"
	"github.com/noah-isme/gradefetcher-api/internal/repository"
	"github.com/noah-isme/gradefetcher-api/internal/service"
	"github.com/noah-isme/gradefetcher-api/internal/utils"
)

// BlockHandler manages the authoring endpoints for grader blocks.
type BlockHandler struct {
	service service.BlockService
	logger  zerolog.Logger
}

// NewBlockHandler builds a block handler instance.
func NewBlockHandler(service service.BlockService, logger zerolog.Logger) *BlockHandler {
	return &BlockHandler{
		service: service,
		logger:  logger.With().Str("component", "block_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *BlockHandler) Register(router fiber.Router) {
	router.Get("/schema", h.schema)
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.remove)
}

func (h *BlockHandler) list(c *fiber.Ctx) error {
	filter := repository.BlockFilter{}
	if courseID := c.Query("course_id"); courseID != "" {
		filter.CourseID = &courseID
	}

	blocks, err := h.service.List(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "blocks retrieved", blocks)
}

func (h *BlockHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	block, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "block retrieved", block)
}

func (h *BlockHandler) create(c *fiber.Ctx) error {
	var payload dto.BlockCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	block, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "block created", block)
}

func (h *BlockHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.BlockUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	block, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "block updated", block)
}

func (h *BlockHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "block deleted", nil)
}

// schema serves the static field metadata table for the authoring editor.
func (h *BlockHandler) schema(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "schema retrieved", h.service.Schema())
}

func (h *BlockHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrBlockNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "block not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
