package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/eduleaf/gradeflow-api/internal/dto"
	"github.com/eduleaf/gradeflow-api/internal/service"
	"github.com/eduleaf/gradeflow-api/internal/utils"
)

// ReviewHandler serves stored review and batch snapshots: fetching, criterion
// edits, payload imports and report generation.
type ReviewHandler struct {
	service service.ReviewService
	logger  zerolog.Logger
}

// NewReviewHandler builds a review handler instance.
func NewReviewHandler(service service.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  logger.With().Str("component", "review_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ReviewHandler) Register(router fiber.Router) {
	router.Get("/reviews/:id", h.getReview)
	router.Patch("/reviews/:id", h.updateReview)
	router.Post("/reviews/import", h.importResult)

	router.Get("/batches/:id", h.getBatch)
	router.Patch("/batches/:id", h.updateBatch)
	router.Post("/batches/import", h.importBatch)
	router.Post("/batches/:id/report", h.writeReport)
}

func (h *ReviewHandler) getReview(c *fiber.Ctx) error {
	result, err := h.service.GetReview(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "review retrieved", result)
}

func (h *ReviewHandler) updateReview(c *fiber.Ctx) error {
	var payload dto.ReviewEditRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.UpdateCriterion(c.Context(), c.Params("id"), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "review updated", result)
}

func (h *ReviewHandler) importResult(c *fiber.Ctx) error {
	var payload dto.ImportRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	review, err := h.service.ImportResult(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "result imported", review)
}

func (h *ReviewHandler) getBatch(c *fiber.Ctx) error {
	batch, err := h.service.GetBatch(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "batch retrieved", batch)
}

func (h *ReviewHandler) updateBatch(c *fiber.Ctx) error {
	var payload dto.BatchEditRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	batch, err := h.service.UpdateBatchCriterion(c.Context(), c.Params("id"), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "batch updated", batch)
}

func (h *ReviewHandler) importBatch(c *fiber.Ctx) error {
	var payload dto.ImportRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	review, err := h.service.ImportBatch(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "batch imported", review)
}

func (h *ReviewHandler) writeReport(c *fiber.Ctx) error {
	paths, err := h.service.WriteReport(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "reports written", paths)
}

func (h *ReviewHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrReviewNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "review not found")
	case errors.Is(err, service.ErrBatchNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "batch not found")
	case errors.Is(err, service.ErrBatchItemNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "batch item not found")
	case errors.Is(err, service.ErrCriterionIndex):
		return utils.SendError(c, fiber.StatusBadRequest, "criterion index out of range")
	case errors.Is(err, service.ErrItemNotGraded):
		return utils.SendError(c, fiber.StatusBadRequest, "batch item has no graded result")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
