package grading

// Criterion is one scored rubric dimension in canonical form.
type Criterion struct {
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	Weight  float64 `json:"weight"`
	Comment string  `json:"comment"`
}

// GradeResult is the canonical grading outcome for a single submission.
// The JSON field names match the first alias of each lookup table, so an
// exported result re-ingested through NormalizeResult reproduces itself.
type GradeResult struct {
	OverallScore       float64            `json:"overall_score"`
	OverallComment     string             `json:"feedback"`
	Criteria           []Criterion        `json:"rubric_scores"`
	ReferenceAnswer    *string            `json:"reference_answer,omitempty"`
	ReferenceGenerated bool               `json:"reference_answer_generated"`
	WeightedOverall    *float64           `json:"weighted_overall,omitempty"`
	WeightsUsed        map[string]float64 `json:"weights_used,omitempty"`
}

// BatchItem is one submission's outcome inside a batch. OK implies Result is
// set and Error is nil; a failed item carries only its error string.
type BatchItem struct {
	ID     string       `json:"id"`
	File   string       `json:"file"`
	OK     bool         `json:"ok"`
	Result *GradeResult `json:"result,omitempty"`
	Error  *string      `json:"error,omitempty"`
}

// BatchSummary aggregates the successful items of a batch. PassRate is always
// on the 0-100 scale, regardless of which path produced it.
type BatchSummary struct {
	Avg      float64 `json:"avg"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Stdev    float64 `json:"stdev"`
	PassRate float64 `json:"pass_rate"`
}

// BatchResult is the canonical outcome of grading a batch of submissions.
type BatchResult struct {
	Count              int                `json:"count"`
	SuccessCount       int                `json:"success_count"`
	FailCount          int                `json:"fail_count"`
	RubricUsed         []string           `json:"rubric_used"`
	WeightsUsed        map[string]float64 `json:"weights_used,omitempty"`
	ReferenceAnswer    string             `json:"reference_answer"`
	ReferenceGenerated bool               `json:"reference_answer_generated"`
	Items              []BatchItem        `json:"items"`
	Summary            *BatchSummary      `json:"summary,omitempty"`
}
