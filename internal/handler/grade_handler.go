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

// GradeHandler serves the single-submission grading endpoint.
type GradeHandler struct {
	service  service.GradeService
	maxBytes int64
	logger   zerolog.Logger
}

// NewGradeHandler builds a grade handler instance.
func NewGradeHandler(service service.GradeService, maxBytes int64, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		service:  service,
		maxBytes: maxBytes,
		logger:   logger.With().Str("component", "grade_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *GradeHandler) Register(router fiber.Router) {
	router.Post("/grade", h.grade)
}

func (h *GradeHandler) grade(c *fiber.Ctx) error {
	question, err := formTextOrFile(c, "question", "question_file", h.maxBytes)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	studentAnswer, err := formTextOrFile(c, "student_answer", "student_file", h.maxBytes)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	referenceFile := ""
	if header, ferr := c.FormFile("reference_file"); ferr == nil {
		referenceFile, err = readUpload(header, h.maxBytes)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
	}

	req := dto.GradeRequest{
		Question:      question,
		StudentAnswer: studentAnswer,
		ReferenceText: c.FormValue("reference_text"),
		ReferenceFile: referenceFile,
		Rubric:        c.FormValue("rubric"),
		RubricWeights: c.FormValue("rubric_weights"),
	}

	review, err := h.service.Grade(c.Context(), req)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission graded", review)
}

func (h *GradeHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAIUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "ai grading unavailable")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("grading failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
