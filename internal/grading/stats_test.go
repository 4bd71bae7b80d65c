package grading

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func gradedItem(id string, score float64) BatchItem {
	return BatchItem{
		ID:     id,
		OK:     true,
		Result: &GradeResult{OverallScore: score},
	}
}

func TestRecomputeSummaryEmpty(t *testing.T) {
	summary := RecomputeSummary(nil, 60)
	require.Equal(t, BatchSummary{}, summary)

	failed := "grading failed"
	summary = RecomputeSummary([]BatchItem{{ID: "0001", Error: &failed}}, 60)
	require.Equal(t, BatchSummary{}, summary)
}

func TestRecomputeSummaryPassRate(t *testing.T) {
	items := []BatchItem{
		gradedItem("0001", 50),
		gradedItem("0002", 60),
		gradedItem("0003", 70),
		gradedItem("0004", 80),
	}

	summary := RecomputeSummary(items, 60)
	require.Equal(t, 75.0, summary.PassRate)
	require.Equal(t, 65.0, summary.Avg)
	require.Equal(t, 50.0, summary.Min)
	require.Equal(t, 80.0, summary.Max)
}

func TestRecomputeSummaryPopulationStdev(t *testing.T) {
	items := []BatchItem{
		gradedItem("0001", 2),
		gradedItem("0002", 4),
		gradedItem("0003", 4),
		gradedItem("0004", 4),
		gradedItem("0005", 5),
		gradedItem("0006", 5),
		gradedItem("0007", 7),
		gradedItem("0008", 9),
	}

	// classic example: population stdev is exactly 2
	summary := RecomputeSummary(items, 60)
	require.Equal(t, 2.0, summary.Stdev)
}

func TestRecomputeSummarySkipsNonFiniteScores(t *testing.T) {
	items := []BatchItem{
		gradedItem("0001", 80),
		gradedItem("0002", math.NaN()),
		{ID: "0003", OK: true}, // ok without result
	}

	summary := RecomputeSummary(items, 60)
	require.Equal(t, 80.0, summary.Avg)
	require.Equal(t, 100.0, summary.PassRate)
}

func TestRecomputeSummaryThresholdDefault(t *testing.T) {
	items := []BatchItem{
		gradedItem("0001", 59),
		gradedItem("0002", 60),
	}

	summary := RecomputeSummary(items, math.NaN())
	require.Equal(t, 50.0, summary.PassRate)
}
