package grading

// NormalizeBatch converts a raw batch grading payload into a canonical
// BatchResult. Per-item results are normalized against the batch-level
// weights_used map, not any per-item one, so every submission in the batch
// shares the same weight configuration.
//
// The backend reports summary.pass_rate as a 0-1 fraction; it is converted to
// the 0-100 scale here, exactly once. RecomputeSummary already produces
// percentages, so results flowing through either path agree on scale.
func NormalizeBatch(raw map[string]any, reviewerNames []string) BatchResult {
	batch := BatchResult{
		RubricUsed: []string{},
		Items:      []BatchItem{},
	}

	overrides, _ := asObject(raw["weights_used"])
	if overrides != nil {
		batch.WeightsUsed = strictWeights(overrides)
	}

	if seq, ok := asSequence(raw["items"]); ok {
		batch.Items = make([]BatchItem, 0, len(seq))
		for _, entry := range seq {
			rawItem, _ := asObject(entry)
			batch.Items = append(batch.Items, normalizeBatchItem(rawItem, reviewerNames, overrides))
		}
	}

	batch.Count = countOrDefault(raw["count"], len(batch.Items))
	successes := 0
	for _, item := range batch.Items {
		if item.OK {
			successes++
		}
	}
	batch.SuccessCount = countOrDefault(raw["success_count"], successes)
	batch.FailCount = countOrDefault(raw["fail_count"], len(batch.Items)-successes)

	if seq, ok := asSequence(raw["rubric_used"]); ok {
		for _, entry := range seq {
			if name := asText(entry); name != "" {
				batch.RubricUsed = append(batch.RubricUsed, name)
			}
		}
	}

	batch.ReferenceAnswer = asText(raw["reference_answer"])
	batch.ReferenceGenerated = asTruthy(raw["reference_answer_generated"]) || asTruthy(raw["generated_reference"])

	if rawSummary, ok := asObject(raw["summary"]); ok {
		batch.Summary = &BatchSummary{
			Avg:      numberOrZero(rawSummary["avg"]),
			Min:      numberOrZero(rawSummary["min"]),
			Max:      numberOrZero(rawSummary["max"]),
			Stdev:    numberOrZero(rawSummary["stdev"]),
			PassRate: numberOrZero(rawSummary["pass_rate"]) * 100,
		}
	}

	return batch
}

// normalizeBatchItem builds one canonical BatchItem. An item claiming ok
// without a result object is demoted to a failure so the ok/result invariant
// holds on the canonical side.
func normalizeBatchItem(raw map[string]any, reviewerNames []string, overrides map[string]any) BatchItem {
	item := BatchItem{
		ID:   asText(raw["id"]),
		File: asText(raw["file"]),
		OK:   asTruthy(raw["ok"]),
	}

	if item.OK {
		if rawResult, ok := asObject(raw["result"]); ok {
			result := normalizeResult(rawResult, reviewerNames, overrides)
			item.Result = &result
		} else {
			item.OK = false
		}
	}

	if !item.OK {
		if value, ok := raw["error"]; ok {
			message := asText(value)
			item.Error = &message
		}
	}

	return item
}

func countOrDefault(value any, fallback int) int {
	if n, ok := asNumber(value); ok {
		return int(n)
	}
	return fallback
}

func numberOrZero(value any) float64 {
	if n, ok := asNumber(value); ok {
		return n
	}
	return 0
}
