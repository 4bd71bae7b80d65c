package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/eduleaf/gradeflow-api/internal/rubric"
	"github.com/eduleaf/gradeflow-api/pkg/ai"
)

// resolvedRubric is the grading plan derived from reviewer input: ordered
// criterion names, an optional rich prompt block, and the weight per name.
type resolvedRubric struct {
	Items       []string
	PromptBlock string
	Weights     map[string]float64
	WeightMode  rubric.WeightMode
}

// resolveRubric turns reviewer-supplied rubric text and a weight spec into a
// grading plan. Strict JSON rubrics are parsed directly; multi-line free text
// is structured by the AI model first when one is available; everything else
// goes through the plain list parser. Rubric resolution never fails, it only
// degrades toward the default rubric.
func resolveRubric(ctx context.Context, grader ai.Grader, logger zerolog.Logger, rubricText, weightSpec string) resolvedRubric {
	items, promptBlock, baseWeights := resolveItems(ctx, grader, logger, rubricText)

	weights, mode := rubric.ParseWeights(items, weightSpec)
	if mode == rubric.WeightModeDefault && len(baseWeights) == len(items) && sum(baseWeights) > 0 {
		weights = baseWeights
	}

	return resolvedRubric{
		Items:       items,
		PromptBlock: promptBlock,
		Weights:     rubric.WeightMap(items, weights),
		WeightMode:  mode,
	}
}

func resolveItems(ctx context.Context, grader ai.Grader, logger zerolog.Logger, rubricText string) ([]string, string, []float64) {
	trimmed := strings.TrimSpace(rubricText)
	if trimmed == "" {
		return rubric.ParseItems(""), "", nil
	}

	if strings.HasPrefix(trimmed, "[") && rubric.IsJSON(trimmed) {
		strict, err := rubric.ParseStrict(trimmed)
		if err == nil {
			return strict.Names, strict.PromptBlock, strict.BaseWeights
		}
		// could be a plain JSON array of names
		return rubric.ParseItems(trimmed), "", nil
	}

	if strings.Contains(trimmed, "\n") && grader != nil {
		converted, err := grader.ConvertRubric(ctx, trimmed)
		if err != nil {
			logger.Warn().Err(err).Msg("rubric conversion failed, falling back to plain parsing")
		} else if strict, perr := rubric.ParseStrict(converted); perr == nil {
			return strict.Names, strict.PromptBlock, strict.BaseWeights
		} else {
			logger.Warn().Err(perr).Msg("converted rubric failed validation, falling back to plain parsing")
		}
	}

	return rubric.ParseItems(trimmed), "", nil
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
