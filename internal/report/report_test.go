package report

import (
	"encoding/csv"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/eduleaf/gradeflow-api/internal/grading"
)

func sampleBatch() grading.BatchResult {
	failure := "unreadable upload"
	return grading.BatchResult{
		Count:        2,
		SuccessCount: 1,
		FailCount:    1,
		RubricUsed:   []string{"Completeness", "Final Answer"},
		WeightsUsed:  map[string]float64{"Completeness": 2},
		Items: []grading.BatchItem{
			{
				ID: "0001", File: "alice.txt", OK: true,
				Result: &grading.GradeResult{
					OverallScore:   75,
					OverallComment: "<b>solid</b> work overall",
					Criteria: []grading.Criterion{
						{Name: "Completeness", Score: 1, Weight: 2, Comment: "all parts answered"},
						{Name: "Final Answer", Score: 0.5, Weight: 1, Comment: "unit missing"},
					},
				},
			},
			{ID: "0002", File: "bob.txt", Error: &failure},
		},
		Summary: &grading.BatchSummary{Avg: 75, Min: 75, Max: 75, PassRate: 100},
	}
}

func TestWriteBatchReports(t *testing.T) {
	writer := NewWriter(t.TempDir(), zerolog.Nop())

	paths, err := writer.WriteBatch("20260830", sampleBatch())
	require.NoError(t, err)

	txt, err := os.ReadFile(paths.TXT)
	require.NoError(t, err)
	content := string(txt)
	require.Contains(t, content, "Batch ID: 20260830")
	require.Contains(t, content, "Count: 2  Success: 1  Fail: 1")
	require.Contains(t, content, "[0001] alice.txt")
	require.Contains(t, content, "- Completeness: 1")
	require.Contains(t, content, "ERROR: unreadable upload")
	// feedback markup is stripped
	require.Contains(t, content, "solid work overall")
	require.NotContains(t, content, "<b>")
}

func TestWriteBatchCSVLayout(t *testing.T) {
	writer := NewWriter(t.TempDir(), zerolog.Nop())

	paths, err := writer.WriteBatch("b1", sampleBatch())
	require.NoError(t, err)

	file, err := os.Open(paths.CSV)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	require.Equal(t, []string{
		"id", "file", "ok", "overall_score", "weighted_overall",
		"score_completeness", "comment_completeness",
		"score_finalanswer", "comment_finalanswer",
		"feedback",
	}, header)

	graded := rows[1]
	require.Equal(t, "0001", graded[0])
	require.Equal(t, "true", graded[2])
	require.Equal(t, "75", graded[3])
	require.Equal(t, "1", graded[5])
	require.Equal(t, "unit missing", graded[8])

	failed := rows[2]
	require.Equal(t, "false", failed[2])
	require.True(t, strings.Join(failed[3:], "") == "")
}

func TestRubricColumnsFallbackToRubricUsed(t *testing.T) {
	batch := sampleBatch()
	batch.Items = batch.Items[1:] // only the failed item remains

	columns := rubricColumns(batch)
	require.Equal(t, []string{"Completeness", "Final Answer"}, columns)
}
