package ai

import "context"

// GradeInput carries the artefacts needed to grade one submission.
type GradeInput struct {
	Question        string
	ReferenceAnswer string
	StudentAnswer   string
	Rubric          []string
	// RubricBlock optionally carries a rich per-criterion description that
	// replaces the plain rubric list in the grading prompt.
	RubricBlock string
}

// RawGrade is the model's grading output: the extracted JSON payload plus the
// raw content it was pulled from. The payload shape is not trusted; callers
// run it through the normalizer.
type RawGrade struct {
	Payload map[string]any
	Content string
}

// Grader describes an AI model capable of grading submissions, generating
// reference answers and structuring free-form rubric text.
type Grader interface {
	Grade(ctx context.Context, input GradeInput) (RawGrade, error)
	GenerateReference(ctx context.Context, question string) (string, error)
	ConvertRubric(ctx context.Context, rubricText string) (string, error)
}
