package grading

import "math"

// RecomputeOverall derives a submission's overall score from its rubric
// items, weight-aware. Any non-finite or non-positive weight is clamped to 1
// at this stage; a finite positive entry in the global weight map overrides
// the per-item weight.
//
// Scale detection: when every raw score is at most 1 the rubric is treated as
// 0-1 scaled and the weighted mean is lifted to the 0-100 scale. The result
// is rounded to one decimal, halves away from zero.
//
// Called after every manual edit; the output replaces both overall_score and
// weighted_overall on the snapshot.
func RecomputeOverall(criteria []Criterion, weightsUsed map[string]float64) float64 {
	if len(criteria) == 0 {
		return 0
	}

	var weightSum, weightedSum float64
	maxScore := math.Inf(-1)

	for _, criterion := range criteria {
		weight := criterion.Weight
		if !isFinite(weight) || weight <= 0 {
			weight = 1
		}
		if override, ok := weightsUsed[criterion.Name]; ok && isFinite(override) && override > 0 {
			weight = override
		}

		weightSum += weight
		weightedSum += criterion.Score * weight
		if criterion.Score > maxScore {
			maxScore = criterion.Score
		}
	}

	if weightSum == 0 {
		return 0
	}

	mean := weightedSum / weightSum
	if maxScore <= 1 {
		mean *= 100
	}

	return round1(mean)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
