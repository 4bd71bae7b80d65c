package grading

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCriterionNameFromAliases(t *testing.T) {
	raw := map[string]any{"criterion": "  Clarity  ", "name": "ignored"}
	require.Equal(t, "Clarity", criterionName(raw, 0, nil))

	raw = map[string]any{"dimension": "Method"}
	require.Equal(t, "Method", criterionName(raw, 3, nil))
}

func TestCriterionNameFromReviewerList(t *testing.T) {
	raw := map[string]any{"score": 1.0}
	names := []string{"Completeness", " Method "}

	require.Equal(t, "Completeness", criterionName(raw, 0, names))
	require.Equal(t, "Method", criterionName(raw, 1, names))
	// list shorter than item count
	require.Equal(t, "Item 3", criterionName(raw, 2, names))
}

func TestCriterionNameFallbackScanSkipsComments(t *testing.T) {
	raw := map[string]any{
		"comment": "should be skipped",
		"kind":    "Arithmetic",
		"score":   0.5,
	}
	require.Equal(t, "Arithmetic", criterionName(raw, 0, nil))
}

func TestCriterionNameSynthesized(t *testing.T) {
	require.Equal(t, "Item 1", criterionName(map[string]any{"weight": 2.0}, 0, nil))
	require.Equal(t, "Item 5", criterionName(map[string]any{}, 4, nil))
}

func TestCriterionWeightDefaults(t *testing.T) {
	require.Equal(t, 1.0, criterionWeight(map[string]any{}, "Clarity", nil))
	require.Equal(t, 2.0, criterionWeight(map[string]any{"w": 2.0}, "Clarity", nil))
	require.Equal(t, 1.0, criterionWeight(map[string]any{"weight": "abc"}, "Clarity", nil))
}

func TestCriterionWeightOverride(t *testing.T) {
	raw := map[string]any{"criterion": "Clarity", "weight": 1.0}

	weight := criterionWeight(raw, "Clarity", map[string]any{"Clarity": 3.0})
	require.Equal(t, 3.0, weight)

	// non-finite override keeps the base weight
	weight = criterionWeight(raw, "Clarity", map[string]any{"Clarity": "abc"})
	require.Equal(t, 1.0, weight)
}

func TestCriterionWeightPreservesNonPositive(t *testing.T) {
	require.Equal(t, 0.0, criterionWeight(map[string]any{"weight": 0.0}, "X", nil))
	require.Equal(t, -2.0, criterionWeight(map[string]any{"weight": -2.0}, "X", nil))
}
