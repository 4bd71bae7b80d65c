package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/eduleaf/gradeflow-api/internal/dto"
	"github.com/eduleaf/gradeflow-api/internal/grading"
	"github.com/eduleaf/gradeflow-api/internal/observability"
	"github.com/eduleaf/gradeflow-api/pkg/ai"
)

// ErrAIUnavailable indicates no grading model is configured.
var ErrAIUnavailable = errors.New("ai grading unavailable")

// GradeService runs the single-submission grading flow.
type GradeService interface {
	Grade(ctx context.Context, req dto.GradeRequest) (dto.GradeReview, error)
}

type gradeService struct {
	grader    ai.Grader
	store     Snapshots
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewGradeService constructs the single grading service.
func NewGradeService(grader ai.Grader, store Snapshots, validator *validator.Validate, logger zerolog.Logger) GradeService {
	return &gradeService{
		grader:    grader,
		store:     store,
		validator: validator,
		logger:    logger.With().Str("component", "grade_service").Logger(),
		now:       time.Now,
	}
}

func (s *gradeService) Grade(ctx context.Context, req dto.GradeRequest) (dto.GradeReview, error) {
	tracer := otel.Tracer("github.com/eduleaf/gradeflow-api/internal/service/grade")
	ctx, span := tracer.Start(ctx, "grading.single")
	defer span.End()

	start := s.now()

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.GradeReview{}, err
	}

	if s.grader == nil {
		span.SetStatus(codes.Error, "ai_unavailable")
		return dto.GradeReview{}, ErrAIUnavailable
	}

	plan := resolveRubric(ctx, s.grader, s.logger, req.Rubric, req.RubricWeights)
	span.SetAttributes(
		attribute.Int("grading.rubric_items", len(plan.Items)),
		attribute.String("grading.weight_mode", string(plan.WeightMode)),
	)

	reference, generated := s.resolveReference(ctx, req)
	span.SetAttributes(attribute.Bool("grading.reference_generated", generated))

	raw, err := s.grader.Grade(ctx, ai.GradeInput{
		Question:        req.Question,
		ReferenceAnswer: reference,
		StudentAnswer:   req.StudentAnswer,
		Rubric:          plan.Items,
		RubricBlock:     plan.PromptBlock,
	})
	if err != nil {
		observability.GradingRuns().WithLabelValues("single", "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "grading_failed")
		return dto.GradeReview{}, err
	}

	result := finalizeResult(raw.Payload, plan, reference, generated)

	reviewID := uuid.NewString()
	if err := s.store.PutResult(ctx, reviewID, result); err != nil {
		// grading already succeeded; losing the snapshot only disables edits
		s.logger.Warn().Err(err).Str("review_id", reviewID).Msg("failed to store grading snapshot")
		span.RecordError(err)
	}

	observability.GradingRuns().WithLabelValues("single", "ok").Inc()
	observability.GradingLatency().WithLabelValues("single").Observe(time.Since(start).Seconds())
	s.logger.Info().
		Str("review_id", reviewID).
		Float64("overall_score", result.OverallScore).
		Int("criteria", len(result.Criteria)).
		Msg("submission graded")

	return dto.GradeReview{ReviewID: reviewID, Result: result}, nil
}

// resolveReference picks the reference answer: manual text wins over uploaded
// file text, which wins over auto-generation. A failed generation degrades to
// grading without a reference rather than failing the request.
func (s *gradeService) resolveReference(ctx context.Context, req dto.GradeRequest) (string, bool) {
	if text := strings.TrimSpace(req.ReferenceText); text != "" {
		return text, false
	}
	if text := strings.TrimSpace(req.ReferenceFile); text != "" {
		return text, false
	}

	generated, err := s.grader.GenerateReference(ctx, req.Question)
	if err != nil {
		s.logger.Warn().Err(err).Msg("reference generation failed, grading without reference")
		return "", false
	}
	return generated, true
}

// finalizeResult normalizes the model payload against the grading plan and
// recomputes the aggregate, which is authoritative over whatever overall score
// the model reported.
func finalizeResult(payload map[string]any, plan resolvedRubric, reference string, generated bool) grading.GradeResult {
	result := grading.NormalizeResultWeighted(payload, plan.Items, plan.Weights)

	if len(result.WeightsUsed) == 0 && len(plan.Weights) > 0 {
		result.WeightsUsed = plan.Weights
	}

	if len(result.Criteria) > 0 {
		overall := grading.RecomputeOverall(result.Criteria, result.WeightsUsed)
		result.OverallScore = overall
		result.WeightedOverall = &overall
	}

	if result.ReferenceAnswer == nil && reference != "" {
		result.ReferenceAnswer = &reference
	}
	result.ReferenceGenerated = generated

	return result
}
