package dto

import "github.com/eduleaf/gradeflow-api/internal/grading"

// GradeRequest carries the inputs of a single grading run. The text fields
// are already extracted; file parsing happens before the service is invoked.
type GradeRequest struct {
	Question      string `validate:"required,min=1"`
	StudentAnswer string `validate:"required,min=1"`
	ReferenceText string
	ReferenceFile string
	Rubric        string
	RubricWeights string
}

// GradeReview pairs a canonical grading result with the review id under
// which its snapshot is stored.
type GradeReview struct {
	ReviewID string              `json:"review_id"`
	Result   grading.GradeResult `json:"result"`
}

// BatchSubmission is one student file handed to batch grading. Err carries an
// upstream extraction failure; such submissions become failed batch items
// without touching the grader.
type BatchSubmission struct {
	File string
	Text string
	Err  string
}

// BatchGradeRequest carries the inputs of a batch grading run.
type BatchGradeRequest struct {
	Question      string `validate:"required,min=1"`
	ReferenceText string
	ReferenceFile string
	Rubric        string
	RubricWeights string
	PassThreshold float64
	Submissions   []BatchSubmission `validate:"required,min=1"`
}

// BatchReview pairs a canonical batch result with its snapshot id.
type BatchReview struct {
	BatchID string              `json:"batch_id"`
	Result  grading.BatchResult `json:"result"`
}

// CriterionEdit is a reviewer's adjustment to one rubric item. Nil fields are
// left untouched; every applied edit triggers an aggregate recompute.
type CriterionEdit struct {
	Name    *string  `json:"name" validate:"omitempty,min=1"`
	Score   *float64 `json:"score"`
	Comment *string  `json:"comment"`
}

// ReviewEditRequest edits one criterion of a stored single-grading snapshot.
type ReviewEditRequest struct {
	Index int           `json:"index" validate:"gte=0"`
	Edit  CriterionEdit `json:"edit"`
}

// BatchEditRequest edits one criterion of one item inside a stored batch
// snapshot. PassThreshold feeds the summary recompute; zero means the
// service default.
type BatchEditRequest struct {
	ItemID        string        `json:"item_id" validate:"required"`
	Index         int           `json:"index" validate:"gte=0"`
	Edit          CriterionEdit `json:"edit"`
	PassThreshold float64       `json:"pass_threshold"`
}

// ImportRequest re-ingests an exported payload through the normalizer.
type ImportRequest struct {
	Payload map[string]any `json:"payload" validate:"required"`
	Rubric  []string       `json:"rubric"`
}

// SystemStatusResponse reports service health and grading capabilities.
type SystemStatusResponse struct {
	SystemHealthy bool     `json:"system_healthy"`
	AIAvailable   bool     `json:"ai_available"`
	Model         string   `json:"model"`
	DefaultRubric []string `json:"default_rubric"`
	MaxFileSizeMB float64  `json:"max_file_size_mb"`
	Version       string   `json:"version"`
}
