package grading

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func batchPayload() map[string]any {
	return map[string]any{
		"count":         2.0,
		"success_count": 1.0,
		"fail_count":    1.0,
		"rubric_used":   []any{"Completeness", "", "Method"},
		"weights_used":  map[string]any{"Completeness": 2.0},
		"reference_answer":           "P = VI",
		"reference_answer_generated": true,
		"items": []any{
			map[string]any{
				"id":   "0001",
				"file": "alice.pdf",
				"ok":   true,
				"result": map[string]any{
					"overall_score": 75.0,
					"feedback":      "nearly there",
					"rubric_scores": []any{
						map[string]any{"item": "Completeness", "score": 1.0, "weight": 1.0},
						map[string]any{"item": "Method", "score": 0.5},
					},
				},
			},
			map[string]any{
				"id":    "0002",
				"file":  "bob.pdf",
				"ok":    false,
				"error": "unreadable upload",
			},
		},
		"summary": map[string]any{
			"avg":       75.0,
			"min":       75.0,
			"max":       75.0,
			"stdev":     0.0,
			"pass_rate": 0.5,
		},
	}
}

func TestNormalizeBatch(t *testing.T) {
	batch := NormalizeBatch(batchPayload(), nil)

	require.Equal(t, 2, batch.Count)
	require.Equal(t, 1, batch.SuccessCount)
	require.Equal(t, 1, batch.FailCount)
	require.Equal(t, []string{"Completeness", "Method"}, batch.RubricUsed)
	require.Equal(t, "P = VI", batch.ReferenceAnswer)
	require.True(t, batch.ReferenceGenerated)
	require.Len(t, batch.Items, 2)

	graded := batch.Items[0]
	require.True(t, graded.OK)
	require.Nil(t, graded.Error)
	require.NotNil(t, graded.Result)
	require.Equal(t, 75.0, graded.Result.OverallScore)
	// the batch-level weight map overrides the per-item weight
	require.Equal(t, 2.0, graded.Result.Criteria[0].Weight)

	failed := batch.Items[1]
	require.False(t, failed.OK)
	require.Nil(t, failed.Result)
	require.NotNil(t, failed.Error)
	require.Equal(t, "unreadable upload", *failed.Error)
}

func TestNormalizeBatchSummaryPassRateConversion(t *testing.T) {
	batch := NormalizeBatch(batchPayload(), nil)

	require.NotNil(t, batch.Summary)
	require.Equal(t, 75.0, batch.Summary.Avg)
	require.Equal(t, 50.0, batch.Summary.PassRate)
}

func TestNormalizeBatchMissingFields(t *testing.T) {
	batch := NormalizeBatch(map[string]any{}, nil)

	require.Equal(t, 0, batch.Count)
	require.Empty(t, batch.Items)
	require.Empty(t, batch.RubricUsed)
	require.Nil(t, batch.Summary)
	require.Equal(t, "", batch.ReferenceAnswer)
}

func TestNormalizeBatchCountsDerivedWhenAbsent(t *testing.T) {
	payload := batchPayload()
	delete(payload, "count")
	delete(payload, "success_count")
	delete(payload, "fail_count")

	batch := NormalizeBatch(payload, nil)
	require.Equal(t, 2, batch.Count)
	require.Equal(t, 1, batch.SuccessCount)
	require.Equal(t, 1, batch.FailCount)
}

func TestNormalizeBatchOKWithoutResultDemoted(t *testing.T) {
	payload := map[string]any{
		"items": []any{
			map[string]any{"id": "0001", "file": "x.pdf", "ok": true},
		},
	}

	batch := NormalizeBatch(payload, nil)
	require.False(t, batch.Items[0].OK)
	require.Nil(t, batch.Items[0].Result)
	require.Nil(t, batch.Items[0].Error)
}

func TestNormalizeBatchFailedItemWithoutError(t *testing.T) {
	payload := map[string]any{
		"items": []any{
			map[string]any{"id": "0001", "file": "x.pdf", "ok": false},
		},
	}

	batch := NormalizeBatch(payload, nil)
	require.False(t, batch.Items[0].OK)
	// absent error stays nil, not an empty string
	require.Nil(t, batch.Items[0].Error)
}
