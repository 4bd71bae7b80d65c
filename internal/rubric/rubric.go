package rubric

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// DefaultItems is the rubric applied when the reviewer supplies none.
var DefaultItems = []string{"Completeness", "Method", "Final Answer", "Arithmetic", "Unit"}

var nonAlphanumeric = regexp.MustCompile(`[\W_]+`)

// WeightMode describes how a weight specification was interpreted.
type WeightMode string

const (
	WeightModePositional WeightMode = "positional"
	WeightModeNamed      WeightMode = "named"
	WeightModeDefault    WeightMode = "default"
)

// NormName normalizes a rubric item name for fuzzy matching: trimmed,
// lowercased, all non-alphanumeric characters removed.
func NormName(name string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "")
}

// ParseItems turns free-form rubric text into an ordered list of criterion
// names. A JSON array of strings is honored; anything else is treated as a
// comma-delimited list, never an error. Empty input yields DefaultItems.
func ParseItems(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return append([]string(nil), DefaultItems...)
	}

	if strings.HasPrefix(trimmed, "[") {
		var fromJSON []string
		if err := json.Unmarshal([]byte(trimmed), &fromJSON); err == nil {
			items := make([]string, 0, len(fromJSON))
			for _, item := range fromJSON {
				if name := strings.TrimSpace(item); name != "" {
					items = append(items, name)
				}
			}
			if len(items) > 0 {
				return items
			}
		}
	}

	items := make([]string, 0)
	for _, part := range strings.Split(trimmed, ",") {
		if name := strings.TrimSpace(part); name != "" {
			items = append(items, name)
		}
	}
	if len(items) == 0 {
		return append([]string(nil), DefaultItems...)
	}
	return items
}

// ParseWeights interprets a reviewer-supplied weight specification against an
// ordered rubric. Three forms are accepted:
//
//	positional  "2,1,3" or "[2,1,3]"  (length must match, sum > 0)
//	named       "Completeness:2,Final Answer:3"  (matched via NormName)
//	fallback    anything else, empty included -> equal weights of 1
//
// The returned slice is always aligned with items.
func ParseWeights(items []string, spec string) ([]float64, WeightMode) {
	n := len(items)
	trimmed := strings.TrimSpace(spec)
	if trimmed == "" {
		return equalWeights(n), WeightModeDefault
	}

	if weights, ok := parseJSONArray(trimmed, n); ok {
		return weights, WeightModePositional
	}

	if weights, ok := parseNumberList(trimmed, n); ok {
		return weights, WeightModePositional
	}

	if weights, ok := parseNamedPairs(trimmed, items); ok {
		return weights, WeightModeNamed
	}

	return equalWeights(n), WeightModeDefault
}

// WeightMap zips rubric names with their resolved weights.
func WeightMap(items []string, weights []float64) map[string]float64 {
	mapping := make(map[string]float64, len(items))
	for i, name := range items {
		if i < len(weights) {
			mapping[name] = weights[i]
		}
	}
	return mapping
}

func equalWeights(n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1
	}
	return weights
}

func parseJSONArray(spec string, n int) ([]float64, bool) {
	var values []float64
	if err := json.Unmarshal([]byte(spec), &values); err != nil {
		return nil, false
	}
	if len(values) != n || sum(values) <= 0 {
		return nil, false
	}
	return values, true
}

func parseNumberList(spec string, n int) ([]float64, bool) {
	parts := strings.Split(spec, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || value < 0 {
			return nil, false
		}
		values = append(values, value)
	}
	if len(values) != n || sum(values) <= 0 {
		return nil, false
	}
	return values, true
}

func parseNamedPairs(spec string, items []string) ([]float64, bool) {
	byName := make(map[string]float64)
	anyPair := false
	for _, part := range strings.Split(spec, ",") {
		key, value, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		weight, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || weight < 0 {
			continue
		}
		if name := strings.TrimSpace(key); name != "" {
			byName[NormName(name)] = weight
			anyPair = true
		}
	}

	if !anyPair {
		return nil, false
	}

	weights := make([]float64, len(items))
	for i, item := range items {
		weights[i] = byName[NormName(item)]
	}
	if sum(weights) <= 0 {
		return nil, false
	}
	return weights, true
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
