package rubric

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseItemsDefault(t *testing.T) {
	require.Equal(t, DefaultItems, ParseItems(""))
	require.Equal(t, DefaultItems, ParseItems("  ,  ,"))
}

func TestParseItemsDelimited(t *testing.T) {
	items := ParseItems(" Completeness , Method ,, Unit ")
	require.Equal(t, []string{"Completeness", "Method", "Unit"}, items)
}

func TestParseItemsJSONArray(t *testing.T) {
	items := ParseItems(`["Clarity", " Depth ", ""]`)
	require.Equal(t, []string{"Clarity", "Depth"}, items)
}

func TestParseItemsMalformedJSONFallsBackToDelimited(t *testing.T) {
	items := ParseItems(`[Clarity, Depth`)
	require.Equal(t, []string{"[Clarity", "Depth"}, items)
}

func TestNormName(t *testing.T) {
	require.Equal(t, "finalanswer", NormName(" Final Answer "))
	require.Equal(t, "finalanswer", NormName("final_answer"))
	require.Equal(t, "unit", NormName("Unit!"))
}

func TestParseWeightsPositional(t *testing.T) {
	items := []string{"A", "B", "C"}

	weights, mode := ParseWeights(items, "2,1,3")
	require.Equal(t, WeightModePositional, mode)
	require.Equal(t, []float64{2, 1, 3}, weights)

	weights, mode = ParseWeights(items, "[2,1,3]")
	require.Equal(t, WeightModePositional, mode)
	require.Equal(t, []float64{2, 1, 3}, weights)
}

func TestParseWeightsLengthMismatch(t *testing.T) {
	weights, mode := ParseWeights([]string{"A", "B"}, "2,1,3")
	require.Equal(t, WeightModeDefault, mode)
	require.Equal(t, []float64{1, 1}, weights)
}

func TestParseWeightsNamed(t *testing.T) {
	items := []string{"Completeness", "Final Answer"}

	weights, mode := ParseWeights(items, "Completeness:2,Final Answer:3")
	require.Equal(t, WeightModeNamed, mode)
	require.Equal(t, []float64{2, 3}, weights)

	// names match through normalization; missing items weigh 0
	weights, mode = ParseWeights(items, "final_answer: 3")
	require.Equal(t, WeightModeNamed, mode)
	require.Equal(t, []float64{0, 3}, weights)
}

func TestParseWeightsFallback(t *testing.T) {
	items := []string{"A", "B"}

	weights, mode := ParseWeights(items, "")
	require.Equal(t, WeightModeDefault, mode)
	require.Equal(t, []float64{1, 1}, weights)

	weights, mode = ParseWeights(items, "garbage")
	require.Equal(t, WeightModeDefault, mode)
	require.Equal(t, []float64{1, 1}, weights)

	// named pairs that sum to zero fall back too
	weights, mode = ParseWeights(items, "C:2")
	require.Equal(t, WeightModeDefault, mode)
	require.Equal(t, []float64{1, 1}, weights)
}

func TestWeightMap(t *testing.T) {
	mapping := WeightMap([]string{"A", "B"}, []float64{2, 3})
	require.Equal(t, map[string]float64{"A": 2, "B": 3}, mapping)
}

func TestParseStrict(t *testing.T) {
	text := `[
		{"name": "Completeness", "description": "covers all parts", "weight": 2,
		 "levels": {"1.0": "everything answered", "0.5": "partial", "0.0": "missing"}},
		{"name": "Method"}
	]`

	parsed, err := ParseStrict(text)
	require.NoError(t, err)
	require.Equal(t, []string{"Completeness", "Method"}, parsed.Names)
	require.Equal(t, []float64{2, 0}, parsed.BaseWeights)
	require.Contains(t, parsed.PromptBlock, "1. Completeness")
	require.Contains(t, parsed.PromptBlock, "Scoring guide:")
	require.Contains(t, parsed.PromptBlock, "- Score 1.0: everything answered")
	require.Contains(t, parsed.PromptBlock, "2. Method")
}

func TestParseStrictNoWeights(t *testing.T) {
	parsed, err := ParseStrict(`[{"name": "Clarity"}]`)
	require.NoError(t, err)
	require.Nil(t, parsed.BaseWeights)
}

func TestParseStrictInvalid(t *testing.T) {
	_, err := ParseStrict("not json")
	require.ErrorIs(t, err, ErrInvalidStrictRubric)

	_, err = ParseStrict(`[]`)
	require.ErrorIs(t, err, ErrInvalidStrictRubric)

	_, err = ParseStrict(`[{"description": "missing name"}]`)
	require.ErrorIs(t, err, ErrInvalidStrictRubric)
}

func TestIsJSON(t *testing.T) {
	require.True(t, IsJSON(`[{"name":"A"}]`))
	require.False(t, IsJSON("Grade on clarity (2 pts) and depth (1 pt)"))
}
