package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/eduleaf/gradeflow-api/internal/dto"
	"github.com/eduleaf/gradeflow-api/internal/grading"
	"github.com/eduleaf/gradeflow-api/internal/report"
	"github.com/eduleaf/gradeflow-api/internal/store"
)

// ErrReviewNotFound indicates no snapshot is stored under the review id.
var ErrReviewNotFound = errors.New("review not found")

// ErrBatchNotFound indicates no snapshot is stored under the batch id.
var ErrBatchNotFound = errors.New("batch not found")

// ErrCriterionIndex indicates the edit targets a rubric position that does
// not exist in the stored result.
var ErrCriterionIndex = errors.New("criterion index out of range")

// ErrBatchItemNotFound indicates the batch holds no item with the given id.
var ErrBatchItemNotFound = errors.New("batch item not found")

// ErrItemNotGraded indicates the targeted batch item failed grading and has
// no result to edit.
var ErrItemNotGraded = errors.New("batch item has no graded result")

// ReviewService serves stored snapshots: fetching, per-criterion edits with
// aggregate recompute, re-ingesting exported payloads and report generation.
type ReviewService interface {
	GetReview(ctx context.Context, reviewID string) (grading.GradeResult, error)
	UpdateCriterion(ctx context.Context, reviewID string, req dto.ReviewEditRequest) (grading.GradeResult, error)
	ImportResult(ctx context.Context, req dto.ImportRequest) (dto.GradeReview, error)

	GetBatch(ctx context.Context, batchID string) (grading.BatchResult, error)
	UpdateBatchCriterion(ctx context.Context, batchID string, req dto.BatchEditRequest) (grading.BatchResult, error)
	ImportBatch(ctx context.Context, req dto.ImportRequest) (dto.BatchReview, error)

	WriteReport(ctx context.Context, batchID string) (report.Paths, error)
}

type reviewService struct {
	store         Snapshots
	reports       ReportWriter
	validator     *validator.Validate
	logger        zerolog.Logger
	passThreshold float64
}

// NewReviewService constructs the review service.
func NewReviewService(store Snapshots, reports ReportWriter, validator *validator.Validate, passThreshold float64, logger zerolog.Logger) ReviewService {
	if passThreshold <= 0 || math.IsNaN(passThreshold) || math.IsInf(passThreshold, 0) {
		passThreshold = grading.DefaultPassThreshold
	}

	return &reviewService{
		store:         store,
		reports:       reports,
		validator:     validator,
		logger:        logger.With().Str("component", "review_service").Logger(),
		passThreshold: passThreshold,
	}
}

func (s *reviewService) GetReview(ctx context.Context, reviewID string) (grading.GradeResult, error) {
	result, err := s.store.GetResult(ctx, reviewID)
	if err != nil {
		if errors.Is(err, store.ErrSnapshotNotFound) {
			return grading.GradeResult{}, ErrReviewNotFound
		}
		return grading.GradeResult{}, err
	}
	return result, nil
}

func (s *reviewService) UpdateCriterion(ctx context.Context, reviewID string, req dto.ReviewEditRequest) (grading.GradeResult, error) {
	tracer := otel.Tracer("github.com/eduleaf/gradeflow-api/internal/service/review")
	ctx, span := tracer.Start(ctx, "review.update_criterion")
	span.SetAttributes(
		attribute.String("review.id", reviewID),
		attribute.Int("review.criterion_index", req.Index),
	)
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return grading.GradeResult{}, err
	}

	result, err := s.GetReview(ctx, reviewID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "review_lookup_failed")
		return grading.GradeResult{}, err
	}

	edited, err := applyEdit(result, req.Index, req.Edit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "edit_rejected")
		return grading.GradeResult{}, err
	}

	if err := s.store.PutResult(ctx, reviewID, edited); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot_store_failed")
		return grading.GradeResult{}, err
	}

	s.logger.Info().
		Str("review_id", reviewID).
		Int("index", req.Index).
		Float64("overall_score", edited.OverallScore).
		Msg("criterion updated")

	return edited, nil
}

func (s *reviewService) ImportResult(ctx context.Context, req dto.ImportRequest) (dto.GradeReview, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.GradeReview{}, err
	}

	result := grading.NormalizeResult(req.Payload, req.Rubric)

	reviewID := uuid.NewString()
	if err := s.store.PutResult(ctx, reviewID, result); err != nil {
		return dto.GradeReview{}, err
	}

	s.logger.Info().Str("review_id", reviewID).Int("criteria", len(result.Criteria)).Msg("result imported")
	return dto.GradeReview{ReviewID: reviewID, Result: result}, nil
}

func (s *reviewService) GetBatch(ctx context.Context, batchID string) (grading.BatchResult, error) {
	batch, err := s.store.GetBatch(ctx, batchID)
	if err != nil {
		if errors.Is(err, store.ErrSnapshotNotFound) {
			return grading.BatchResult{}, ErrBatchNotFound
		}
		return grading.BatchResult{}, err
	}
	return batch, nil
}

func (s *reviewService) UpdateBatchCriterion(ctx context.Context, batchID string, req dto.BatchEditRequest) (grading.BatchResult, error) {
	tracer := otel.Tracer("github.com/eduleaf/gradeflow-api/internal/service/review")
	ctx, span := tracer.Start(ctx, "review.update_batch_criterion")
	span.SetAttributes(
		attribute.String("batch.id", batchID),
		attribute.String("batch.item_id", req.ItemID),
		attribute.Int("review.criterion_index", req.Index),
	)
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return grading.BatchResult{}, err
	}

	batch, err := s.GetBatch(ctx, batchID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch_lookup_failed")
		return grading.BatchResult{}, err
	}

	itemIndex := -1
	for i, item := range batch.Items {
		if item.ID == req.ItemID {
			itemIndex = i
			break
		}
	}
	if itemIndex < 0 {
		span.SetStatus(codes.Error, "item_not_found")
		return grading.BatchResult{}, ErrBatchItemNotFound
	}

	item := batch.Items[itemIndex]
	if !item.OK || item.Result == nil {
		span.SetStatus(codes.Error, "item_not_graded")
		return grading.BatchResult{}, ErrItemNotGraded
	}

	edited, err := applyEdit(*item.Result, req.Index, req.Edit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "edit_rejected")
		return grading.BatchResult{}, err
	}

	items := make([]grading.BatchItem, len(batch.Items))
	copy(items, batch.Items)
	items[itemIndex].Result = &edited
	batch.Items = items

	threshold := req.PassThreshold
	if threshold <= 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		threshold = s.passThreshold
	}
	summary := grading.RecomputeSummary(batch.Items, threshold)
	batch.Summary = &summary

	if err := s.store.PutBatch(ctx, batchID, batch); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot_store_failed")
		return grading.BatchResult{}, err
	}

	s.logger.Info().
		Str("batch_id", batchID).
		Str("item_id", req.ItemID).
		Int("index", req.Index).
		Msg("batch criterion updated")

	return batch, nil
}

func (s *reviewService) ImportBatch(ctx context.Context, req dto.ImportRequest) (dto.BatchReview, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.BatchReview{}, err
	}

	batch := grading.NormalizeBatch(req.Payload, req.Rubric)

	batchID := uuid.NewString()
	if err := s.store.PutBatch(ctx, batchID, batch); err != nil {
		return dto.BatchReview{}, err
	}

	s.logger.Info().Str("batch_id", batchID).Int("items", len(batch.Items)).Msg("batch imported")
	return dto.BatchReview{BatchID: batchID, Result: batch}, nil
}

func (s *reviewService) WriteReport(ctx context.Context, batchID string) (report.Paths, error) {
	batch, err := s.GetBatch(ctx, batchID)
	if err != nil {
		return report.Paths{}, err
	}
	return s.reports.WriteBatch(batchID, batch)
}

// applyEdit returns a copy of the result with one criterion edited and the
// aggregate recomputed. The stored result is never mutated in place.
func applyEdit(result grading.GradeResult, index int, edit dto.CriterionEdit) (grading.GradeResult, error) {
	if index < 0 || index >= len(result.Criteria) {
		return grading.GradeResult{}, ErrCriterionIndex
	}

	criteria := make([]grading.Criterion, len(result.Criteria))
	copy(criteria, result.Criteria)

	criterion := criteria[index]
	if edit.Name != nil {
		if name := strings.TrimSpace(*edit.Name); name != "" {
			criterion.Name = name
		}
	}
	if edit.Score != nil {
		criterion.Score = *edit.Score
	}
	if edit.Comment != nil {
		criterion.Comment = *edit.Comment
	}
	criteria[index] = criterion

	result.Criteria = criteria
	overall := grading.RecomputeOverall(criteria, result.WeightsUsed)
	result.OverallScore = overall
	result.WeightedOverall = &overall

	return result, nil
}
