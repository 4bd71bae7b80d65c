package grading

var (
	overallScoreAliases   = []string{"overall_score", "total_score", "score"}
	overallCommentAliases = []string{"feedback", "overall_comment", "summary", "comment"}
	rubricAliases         = []string{"rubric_scores", "rubric", "details"}
	referenceAliases      = []string{"reference_answer", "reference", "ref_answer"}
)

// NormalizeItem converts one raw rubric entry into a canonical Criterion.
// Missing or malformed fields degrade to defaults; the call never fails.
func NormalizeItem(raw map[string]any, index int, reviewerNames []string, overrides map[string]any) Criterion {
	score := 0.0
	if value, ok := ResolveField(raw, scoreAliases...); ok {
		if n, numeric := asNumber(value); numeric {
			score = n
		}
	}

	comment := ""
	if value, ok := ResolveField(raw, commentAliases...); ok {
		comment = asText(value)
	}

	name := criterionName(raw, index, reviewerNames)

	return Criterion{
		Name:    name,
		Score:   score,
		Weight:  criterionWeight(raw, name, overrides),
		Comment: comment,
	}
}

// NormalizeResult converts an arbitrarily shaped grading payload into a
// canonical GradeResult. Reviewer-supplied names fill in rubric items that
// carry no usable name of their own, position-aligned.
func NormalizeResult(raw map[string]any, reviewerNames []string) GradeResult {
	overrides, _ := asObject(raw["weights_used"])
	return normalizeResult(raw, reviewerNames, overrides)
}

// NormalizeResultWeighted behaves like NormalizeResult but resolves item
// weights against an externally supplied weight map instead of the payload's
// own weights_used entry. Batch grading uses this to apply one shared weight
// configuration across every submission.
func NormalizeResultWeighted(raw map[string]any, reviewerNames []string, weights map[string]float64) GradeResult {
	return normalizeResult(raw, reviewerNames, looseWeights(weights))
}

func normalizeResult(raw map[string]any, reviewerNames []string, overrides map[string]any) GradeResult {
	result := GradeResult{
		Criteria: []Criterion{},
	}

	if value, ok := ResolveField(raw, overallScoreAliases...); ok {
		if n, numeric := asNumber(value); numeric {
			result.OverallScore = n
		}
	}

	if value, ok := ResolveField(raw, overallCommentAliases...); ok {
		result.OverallComment = asText(value)
	}

	for _, alias := range rubricAliases {
		value, ok := raw[alias]
		if !ok {
			continue
		}
		if seq, isSeq := asSequence(value); isSeq {
			result.Criteria = make([]Criterion, 0, len(seq))
			for index, entry := range seq {
				item, _ := asObject(entry)
				result.Criteria = append(result.Criteria, NormalizeItem(item, index, reviewerNames, overrides))
			}
			break
		}
	}

	if value, ok := ResolveField(raw, referenceAliases...); ok {
		reference := asText(value)
		result.ReferenceAnswer = &reference
	}

	result.ReferenceGenerated = asTruthy(raw["reference_answer_generated"]) || asTruthy(raw["generated_reference"])

	if n, numeric := asNumber(raw["weighted_overall"]); numeric && isRawNumber(raw["weighted_overall"]) {
		result.WeightedOverall = &n
	}

	if mapping, ok := asObject(raw["weights_used"]); ok {
		result.WeightsUsed = strictWeights(mapping)
	}

	return result
}

// isRawNumber reports whether the value is numeric on the wire, as opposed to
// a string that merely parses as a number. weighted_overall is copied through
// only when it is already a number.
func isRawNumber(value any) bool {
	switch value.(type) {
	case float64, float32, int, int32, int64, uint:
		return true
	default:
		return false
	}
}

// strictWeights coerces a raw weight map to name->number, dropping entries
// that do not coerce to a finite value. Keys are kept verbatim; weight lookup
// is by exact name.
func strictWeights(mapping map[string]any) map[string]float64 {
	weights := make(map[string]float64, len(mapping))
	for name, value := range mapping {
		if n, numeric := asNumber(value); numeric {
			weights[name] = n
		}
	}
	return weights
}

func looseWeights(weights map[string]float64) map[string]any {
	if weights == nil {
		return nil
	}
	loose := make(map[string]any, len(weights))
	for name, value := range weights {
		loose[name] = value
	}
	return loose
}
