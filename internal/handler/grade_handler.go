package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gradefetcher-api/internal/dto"
	"github.com/noah-isme/gradefetcher-api/internal/grader"
	"github.com/noah-isme/gradefetcher-api/internal/service"
	"github.com/noah-isme/gradefetcher-api/internal/utils"
)

// GradeHandler serves the learner-facing grade endpoints.
type GradeHandler struct {
	service service.GradeService
	logger  zerolog.Logger
}

// NewGradeHandler builds a grade handler instance.
func NewGradeHandler(service service.GradeService, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		service: service,
		logger:  logger.With().Str("component", "grade_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *GradeHandler) Register(router fiber.Router) {
	router.Post("/:id/grade", h.fetch)
	router.Get("/:id/grade", h.latest)
}

// fetch is the grade_user entry point: it takes no request payload, runs the
// full outbound fetch and answers with the documented grade or error shape.
func (h *GradeHandler) fetch(c *fiber.Ctx) error {
	blockID, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.NewGradeErrorResponse(err.Error()))
	}

	identity := identityFromContext(c)
	if identity.UserID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	response, err := h.service.FetchGrade(c.Context(), blockID, identity)
	if err != nil {
		return h.handleFetchError(c, err)
	}

	return c.JSON(response)
}

func (h *GradeHandler) latest(c *fiber.Ctx) error {
	blockID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	response, err := h.service.LatestGrade(c.Context(), blockID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGradeNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "no grade fetched yet")
		case errors.Is(err, service.ErrBlockNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "block not found")
		default:
			h.logger.Error().Err(err).Msg("failed to load latest grade")
			return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
		}
	}

	return utils.SendSuccess(c, "grade retrieved", response)
}

func (h *GradeHandler) handleFetchError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrBlockNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, "block not found")
	}

	var gradeErr *service.GradeError
	if errors.As(err, &gradeErr) {
		status := fiber.StatusBadGateway
		if errors.Is(gradeErr.Cause, grader.ErrGraderEndpointInvalid) || errors.Is(gradeErr.Cause, grader.ErrAuthEndpointInvalid) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(dto.NewGradeErrorResponse(gradeErr.Message))
	}

	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
