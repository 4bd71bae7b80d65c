package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/eduleaf/gradeflow-api/internal/dto"
	"github.com/eduleaf/gradeflow-api/internal/grading"
	"github.com/eduleaf/gradeflow-api/internal/observability"
	"github.com/eduleaf/gradeflow-api/pkg/ai"
)

// BatchService runs the multi-submission grading flow.
type BatchService interface {
	GradeBatch(ctx context.Context, req dto.BatchGradeRequest) (dto.BatchReview, error)
}

type batchService struct {
	grader        ai.Grader
	store         Snapshots
	validator     *validator.Validate
	logger        zerolog.Logger
	maxConcurrent int
	passThreshold float64
	now           func() time.Time
}

// NewBatchService constructs the batch grading service. maxConcurrent bounds
// the number of submissions graded in parallel.
func NewBatchService(grader ai.Grader, store Snapshots, validator *validator.Validate, maxConcurrent int, passThreshold float64, logger zerolog.Logger) BatchService {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	if passThreshold <= 0 || math.IsNaN(passThreshold) || math.IsInf(passThreshold, 0) {
		passThreshold = grading.DefaultPassThreshold
	}

	return &batchService{
		grader:        grader,
		store:         store,
		validator:     validator,
		logger:        logger.With().Str("component", "batch_service").Logger(),
		maxConcurrent: maxConcurrent,
		passThreshold: passThreshold,
		now:           time.Now,
	}
}

func (s *batchService) GradeBatch(ctx context.Context, req dto.BatchGradeRequest) (dto.BatchReview, error) {
	tracer := otel.Tracer("github.com/eduleaf/gradeflow-api/internal/service/batch")
	ctx, span := tracer.Start(ctx, "grading.batch")
	span.SetAttributes(attribute.Int("grading.submissions", len(req.Submissions)))
	defer span.End()

	start := s.now()

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.BatchReview{}, err
	}

	if s.grader == nil {
		span.SetStatus(codes.Error, "ai_unavailable")
		return dto.BatchReview{}, ErrAIUnavailable
	}

	plan := resolveRubric(ctx, s.grader, s.logger, req.Rubric, req.RubricWeights)
	reference, generated := s.resolveReference(ctx, req)

	items := make([]grading.BatchItem, len(req.Submissions))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.maxConcurrent)

	for index, submission := range req.Submissions {
		index, submission := index, submission
		group.Go(func() error {
			items[index] = s.gradeOne(groupCtx, index, req.Question, submission, plan, reference)
			return nil
		})
	}
	// workers never return errors; failures stay on their item
	_ = group.Wait()

	threshold := req.PassThreshold
	if threshold <= 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		threshold = s.passThreshold
	}

	batch := s.assemble(items, plan, reference, generated, threshold)

	batchID := uuid.NewString()
	if err := s.store.PutBatch(ctx, batchID, batch); err != nil {
		s.logger.Warn().Err(err).Str("batch_id", batchID).Msg("failed to store batch snapshot")
		span.RecordError(err)
	}

	observability.GradingRuns().WithLabelValues("batch", "ok").Inc()
	observability.GradingLatency().WithLabelValues("batch").Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Int("grading.success_count", batch.SuccessCount),
		attribute.Int("grading.fail_count", batch.FailCount),
	)
	s.logger.Info().
		Str("batch_id", batchID).
		Int("count", batch.Count).
		Int("success", batch.SuccessCount).
		Int("fail", batch.FailCount).
		Msg("batch graded")

	return dto.BatchReview{BatchID: batchID, Result: batch}, nil
}

// gradeOne grades a single submission in isolation. Any failure, upstream
// extraction included, becomes a failed item instead of aborting the batch.
func (s *batchService) gradeOne(ctx context.Context, index int, question string, submission dto.BatchSubmission, plan resolvedRubric, reference string) grading.BatchItem {
	item := grading.BatchItem{
		ID:   fmt.Sprintf("%04d", index+1),
		File: submission.File,
	}

	fail := func(message string) grading.BatchItem {
		item.OK = false
		item.Error = &message
		observability.GradingRuns().WithLabelValues("batch_item", "error").Inc()
		return item
	}

	if submission.Err != "" {
		return fail(submission.Err)
	}
	if strings.TrimSpace(submission.Text) == "" {
		return fail("empty submission")
	}

	raw, err := s.grader.Grade(ctx, ai.GradeInput{
		Question:        question,
		ReferenceAnswer: reference,
		StudentAnswer:   submission.Text,
		Rubric:          plan.Items,
		RubricBlock:     plan.PromptBlock,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("file", submission.File).Msg("submission grading failed")
		return fail(err.Error())
	}

	result := finalizeResult(raw.Payload, plan, "", false)
	result.ReferenceAnswer = nil // batch-level reference is reported once on the batch

	item.OK = true
	item.Result = &result
	observability.GradingRuns().WithLabelValues("batch_item", "ok").Inc()
	return item
}

func (s *batchService) assemble(items []grading.BatchItem, plan resolvedRubric, reference string, generated bool, threshold float64) grading.BatchResult {
	batch := grading.BatchResult{
		Count:              len(items),
		RubricUsed:         plan.Items,
		WeightsUsed:        plan.Weights,
		ReferenceAnswer:    reference,
		ReferenceGenerated: generated,
		Items:              items,
	}

	for _, item := range items {
		if item.OK {
			batch.SuccessCount++
		} else {
			batch.FailCount++
		}
	}

	summary := grading.RecomputeSummary(items, threshold)
	batch.Summary = &summary

	return batch
}

func (s *batchService) resolveReference(ctx context.Context, req dto.BatchGradeRequest) (string, bool) {
	if text := strings.TrimSpace(req.ReferenceText); text != "" {
		return text, false
	}
	if text := strings.TrimSpace(req.ReferenceFile); text != "" {
		return text, false
	}

	generated, err := s.grader.GenerateReference(ctx, req.Question)
	if err != nil {
		s.logger.Warn().Err(err).Msg("reference generation failed, grading batch without reference")
		return "", false
	}
	return generated, true
}
