package ai

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ExtractPayload pulls a JSON object out of free-form model output. Direct
// parsing is tried first, then every balanced {...} fragment smallest-first,
// then the span from the first '{' to the last '}'.
func ExtractPayload(text string) (map[string]any, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("empty response text")
	}

	if payload, ok := decodeObject(trimmed); ok {
		return payload, nil
	}

	candidates := jsonCandidates(trimmed)
	sort.Slice(candidates, func(i, j int) bool { return len(candidates[i]) < len(candidates[j]) })
	for _, candidate := range candidates {
		if payload, ok := decodeObject(candidate); ok {
			return payload, nil
		}
	}

	first := strings.Index(trimmed, "{")
	last := strings.LastIndex(trimmed, "}")
	if first >= 0 && last > first {
		if payload, ok := decodeObject(trimmed[first : last+1]); ok {
			return payload, nil
		}
	}

	return nil, fmt.Errorf("no valid JSON object in response (%d chars)", len(trimmed))
}

func decodeObject(text string) (map[string]any, bool) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, false
	}
	return payload, true
}

// jsonCandidates collects balanced top-level {...} fragments, string-aware so
// braces inside JSON strings do not open or close a fragment.
func jsonCandidates(text string) []string {
	var (
		out      []string
		level    int
		start    = -1
		inString bool
		escaped  bool
	)

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			if level == 0 {
				start = i
			}
			level++
		case '}':
			if level > 0 {
				level--
				if level == 0 && start >= 0 {
					out = append(out, text[start:i+1])
					start = -1
				}
			}
		}
	}

	return out
}
