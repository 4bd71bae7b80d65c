package grading

import "math"

// DefaultPassThreshold is used when no usable threshold is supplied.
const DefaultPassThreshold = 60.0

// RecomputeSummary derives batch statistics from the successful items. Only
// items with ok set and a finite overall score qualify; with none, the
// all-zero summary is returned rather than dividing by zero.
//
// Stdev is the population standard deviation. PassRate is emitted directly on
// the 0-100 scale. A non-finite threshold falls back to DefaultPassThreshold.
func RecomputeSummary(items []BatchItem, passThreshold float64) BatchSummary {
	if !isFinite(passThreshold) {
		passThreshold = DefaultPassThreshold
	}

	scores := make([]float64, 0, len(items))
	for _, item := range items {
		if !item.OK || item.Result == nil {
			continue
		}
		if score := item.Result.OverallScore; isFinite(score) {
			scores = append(scores, score)
		}
	}

	if len(scores) == 0 {
		return BatchSummary{}
	}

	n := float64(len(scores))
	var sum float64
	minScore, maxScore := scores[0], scores[0]
	for _, score := range scores {
		sum += score
		if score < minScore {
			minScore = score
		}
		if score > maxScore {
			maxScore = score
		}
	}
	avg := sum / n

	var variance float64
	for _, score := range scores {
		deviation := score - avg
		variance += deviation * deviation
	}
	variance /= n

	passed := 0
	for _, score := range scores {
		if score >= passThreshold {
			passed++
		}
	}

	return BatchSummary{
		Avg:      round1(avg),
		Min:      minScore,
		Max:      maxScore,
		Stdev:    round1(math.Sqrt(variance)),
		PassRate: round1(100 * float64(passed) / n),
	}
}
