package service

import (
	"context"

	"github.com/eduleaf/gradeflow-api/internal/grading"
	"github.com/eduleaf/gradeflow-api/internal/report"
)

// Snapshots is the snapshot persistence surface the services depend on. Every
// write replaces the stored result wholesale.
type Snapshots interface {
	PutResult(ctx context.Context, reviewID string, result grading.GradeResult) error
	GetResult(ctx context.Context, reviewID string) (grading.GradeResult, error)
	PutBatch(ctx context.Context, batchID string, batch grading.BatchResult) error
	GetBatch(ctx context.Context, batchID string) (grading.BatchResult, error)
}

// ReportWriter renders a stored batch as downloadable report files.
type ReportWriter interface {
	WriteBatch(batchID string, batch grading.BatchResult) (report.Paths, error)
}
