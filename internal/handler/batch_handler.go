package handler

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/eduleaf/gradeflow-api/internal/dto"
	"github.com/eduleaf/gradeflow-api/internal/service"
	"github.com/eduleaf/gradeflow-api/internal/utils"
)

// BatchHandler serves the batch grading endpoint.
type BatchHandler struct {
	service  service.BatchService
	maxBytes int64
	logger   zerolog.Logger
}

// NewBatchHandler builds a batch handler instance.
func NewBatchHandler(service service.BatchService, maxBytes int64, logger zerolog.Logger) *BatchHandler {
	return &BatchHandler{
		service:  service,
		maxBytes: maxBytes,
		logger:   logger.With().Str("component", "batch_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *BatchHandler) Register(router fiber.Router) {
	router.Post("/grade-batch", h.gradeBatch)
}

func (h *BatchHandler) gradeBatch(c *fiber.Ctx) error {
	question, err := formTextOrFile(c, "question", "question_file", h.maxBytes)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	form, err := c.MultipartForm()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "multipart form required")
	}

	headers := form.File["students"]
	if len(headers) == 0 {
		headers = form.File["students[]"]
	}
	if len(headers) == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "at least one student file is required")
	}

	submissions := make([]dto.BatchSubmission, 0, len(headers))
	for _, header := range headers {
		submission := dto.BatchSubmission{File: header.Filename}
		text, rerr := readUpload(header, h.maxBytes)
		if rerr != nil {
			submission.Err = rerr.Error()
		} else {
			submission.Text = text
		}
		submissions = append(submissions, submission)
	}

	referenceFile := ""
	if header, ferr := c.FormFile("reference_file"); ferr == nil {
		referenceFile, err = readUpload(header, h.maxBytes)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
	}

	req := dto.BatchGradeRequest{
		Question:      question,
		ReferenceText: c.FormValue("reference_text"),
		ReferenceFile: referenceFile,
		Rubric:        c.FormValue("rubric"),
		RubricWeights: c.FormValue("rubric_weights"),
		PassThreshold: parseThreshold(c.FormValue("pass_threshold")),
		Submissions:   submissions,
	}

	review, err := h.service.GradeBatch(c.Context(), req)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "batch graded", review)
}

// parseThreshold returns NaN for absent or unparseable values; the service
// substitutes its configured default.
func parseThreshold(value string) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return math.NaN()
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return math.NaN()
	}
	return parsed
}

func (h *BatchHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAIUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "ai grading unavailable")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("batch grading failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
