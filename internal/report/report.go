package report

import (
	"encoding/csv"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/eduleaf/gradeflow-api/internal/grading"
	"github.com/eduleaf/gradeflow-api/internal/rubric"
)

// Paths holds the locations of the written report files.
type Paths struct {
	TXT string `json:"txt"`
	CSV string `json:"csv"`
}

// Writer renders batch snapshots as TXT and CSV reports on disk. Model and
// reviewer supplied free text is stripped to plain text before it reaches a
// report.
type Writer struct {
	dir       string
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewWriter builds a report writer rooted at dir.
func NewWriter(dir string, logger zerolog.Logger) *Writer {
	return &Writer{
		dir:       dir,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "report_writer").Logger(),
		now:       time.Now,
	}
}

// WriteBatch writes a TXT and a CSV snapshot of the batch and returns their
// paths.
func (w *Writer) WriteBatch(batchID string, batch grading.BatchResult) (Paths, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create results dir: %w", err)
	}

	base := fmt.Sprintf("batch_%s_%s", batchID, w.now().UTC().Format("20060102_150405"))
	paths := Paths{
		TXT: filepath.Join(w.dir, base+".txt"),
		CSV: filepath.Join(w.dir, base+".csv"),
	}

	columns := rubricColumns(batch)

	if err := w.writeTXT(paths.TXT, batchID, batch); err != nil {
		return Paths{}, err
	}
	if err := w.writeCSV(paths.CSV, batch, columns); err != nil {
		return Paths{}, err
	}

	w.logger.Info().Str("batch_id", batchID).Str("txt", paths.TXT).Str("csv", paths.CSV).Msg("batch reports written")
	return paths, nil
}

// rubricColumns derives the canonical rubric column order from the first
// successful item, falling back to the batch's rubric_used list.
func rubricColumns(batch grading.BatchResult) []string {
	var columns []string
	for _, item := range batch.Items {
		if !item.OK || item.Result == nil {
			continue
		}
		for _, criterion := range item.Result.Criteria {
			name := strings.TrimSpace(criterion.Name)
			if name != "" && !contains(columns, name) {
				columns = append(columns, name)
			}
		}
		if len(columns) > 0 {
			break
		}
	}

	if len(columns) == 0 {
		columns = append(columns, batch.RubricUsed...)
	}
	return columns
}

func (w *Writer) writeTXT(path, batchID string, batch grading.BatchResult) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Batch ID: %s\n", batchID)
	fmt.Fprintf(&b, "Count: %d  Success: %d  Fail: %d\n", batch.Count, batch.SuccessCount, batch.FailCount)
	fmt.Fprintf(&b, "Rubric: %s\n", strings.Join(batch.RubricUsed, ", "))
	if len(batch.WeightsUsed) > 0 {
		pairs := make([]string, 0, len(batch.WeightsUsed))
		for _, name := range batch.RubricUsed {
			if weight, ok := batch.WeightsUsed[name]; ok {
				pairs = append(pairs, fmt.Sprintf("%s:%s", name, formatNumber(weight)))
			}
		}
		fmt.Fprintf(&b, "Weights: %s\n", strings.Join(pairs, ", "))
	}
	if batch.Summary != nil {
		fmt.Fprintf(&b, "Summary: avg=%s, min=%s, max=%s, stdev=%s, pass_rate=%s\n",
			formatNumber(batch.Summary.Avg), formatNumber(batch.Summary.Min), formatNumber(batch.Summary.Max),
			formatNumber(batch.Summary.Stdev), formatNumber(batch.Summary.PassRate))
	}

	b.WriteString("\n-- Items (detailed) --\n")
	for _, item := range batch.Items {
		fmt.Fprintf(&b, "\n[%s] %s\n", item.ID, item.File)
		if !item.OK {
			message := ""
			if item.Error != nil {
				message = *item.Error
			}
			fmt.Fprintf(&b, "  ERROR: %s\n", message)
			continue
		}

		result := item.Result
		weighted := ""
		if result.WeightedOverall != nil {
			weighted = formatNumber(*result.WeightedOverall)
		}
		fmt.Fprintf(&b, "  overall=%s, weighted=%s\n", formatNumber(result.OverallScore), weighted)

		if len(result.Criteria) > 0 {
			b.WriteString("  Rubric details:\n")
			for _, criterion := range result.Criteria {
				fmt.Fprintf(&b, "    - %s: %s\n", criterion.Name, formatNumber(criterion.Score))
				if comment := w.plainText(criterion.Comment); comment != "" {
					b.WriteString("      " + strings.ReplaceAll(comment, "\n", "\n      ") + "\n")
				}
			}
		}

		if feedback := w.plainText(result.OverallComment); feedback != "" {
			b.WriteString("  Feedback:\n")
			b.WriteString("    " + strings.ReplaceAll(feedback, "\n", "\n    ") + "\n")
		}
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func (w *Writer) writeCSV(path string, batch grading.BatchResult, columns []string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv report: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{"id", "file", "ok", "overall_score", "weighted_overall"}
	for _, name := range columns {
		column := rubric.NormName(name)
		if column == "" {
			column = "item"
		}
		header = append(header, "score_"+column, "comment_"+column)
	}
	header = append(header, "feedback")

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, item := range batch.Items {
		row := []string{item.ID, item.File, strconv.FormatBool(item.OK)}

		if !item.OK || item.Result == nil {
			row = append(row, "", "")
			for range columns {
				row = append(row, "", "")
			}
			row = append(row, "")
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
			continue
		}

		result := item.Result
		weighted := ""
		if result.WeightedOverall != nil {
			weighted = formatNumber(*result.WeightedOverall)
		}
		row = append(row, formatNumber(result.OverallScore), weighted)

		byName := make(map[string]grading.Criterion, len(result.Criteria))
		for _, criterion := range result.Criteria {
			if name := strings.TrimSpace(criterion.Name); name != "" {
				if _, exists := byName[name]; !exists {
					byName[name] = criterion
				}
			}
		}

		for _, name := range columns {
			if criterion, ok := byName[name]; ok {
				row = append(row, formatNumber(criterion.Score), w.plainText(criterion.Comment))
			} else {
				row = append(row, "", "")
			}
		}

		row = append(row, w.plainText(result.OverallComment))
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// plainText strips markup from free text and resolves entities the sanitizer
// escaped.
func (w *Writer) plainText(text string) string {
	return strings.TrimSpace(html.UnescapeString(w.sanitizer.Sanitize(text)))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
