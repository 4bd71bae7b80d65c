package grading

import (
	"fmt"
	"sort"
	"strings"
)

var (
	nameAliases    = []string{"criterion", "item", "name", "title", "dimension", "aspect", "label"}
	scoreAliases   = []string{"score", "points", "value"}
	weightAliases  = []string{"weight", "w", "weighting"}
	commentAliases = []string{"comment", "feedback", "reason", "explanation", "notes"}
)

// criterionName resolves a display name for the rubric item at the given
// index. Priority: name alias on the item, then the reviewer-supplied name at
// the same position, then the first string-valued field that is not a comment,
// then a synthesized "Item N".
//
// The fallback scan walks keys in sorted order; Go map iteration is not
// deterministic, so sorted order stands in for the source object's key order.
func criterionName(raw map[string]any, index int, reviewerNames []string) string {
	if value, ok := ResolveField(raw, nameAliases...); ok {
		if name := strings.TrimSpace(asText(value)); name != "" {
			return name
		}
	}

	if index >= 0 && index < len(reviewerNames) {
		if name := strings.TrimSpace(reviewerNames[index]); name != "" {
			return name
		}
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if isCommentAlias(key) {
			continue
		}
		if text, ok := raw[key].(string); ok {
			if name := strings.TrimSpace(text); name != "" {
				return name
			}
		}
	}

	return fmt.Sprintf("Item %d", index+1)
}

func isCommentAlias(key string) bool {
	for _, alias := range commentAliases {
		if key == alias {
			return true
		}
	}
	return false
}

// criterionWeight resolves the effective weight for a rubric item. The item's
// own weight field is the base (default 1); a global override keyed by the
// exact resolved name replaces it when the override coerces to a finite
// number. Zero and negative weights pass through untouched here; only the
// aggregate recompute clamps them.
func criterionWeight(raw map[string]any, name string, overrides map[string]any) float64 {
	weight := 1.0
	if value, ok := ResolveField(raw, weightAliases...); ok {
		if n, numeric := asNumber(value); numeric {
			weight = n
		}
	}

	if overrides != nil {
		if value, ok := overrides[name]; ok {
			if n, numeric := asNumber(value); numeric {
				return n
			}
		}
	}

	return weight
}
