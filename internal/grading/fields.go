package grading

import (
	"encoding/json"
	"math"
	"strconv"
)

// ResolveField returns the value for the first alias present as a key in obj.
// Presence wins over truthiness: a key holding 0, false or "" is still a hit.
func ResolveField(obj map[string]any, aliases ...string) (any, bool) {
	for _, alias := range aliases {
		if value, ok := obj[alias]; ok {
			return value, true
		}
	}
	return nil, false
}

// asNumber coerces a raw value to a finite float64. The second return is
// false for absent, non-numeric and non-finite values.
func asNumber(value any) (float64, bool) {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case uint:
		n = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		n = parsed
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// asText coerces a raw value to a string, rendering scalars and degrading
// everything else to "".
func asText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// asTruthy applies loose boolean coercion: nil, false, zero and the empty
// string are false, everything else (including non-empty collections) is true.
func asTruthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case json.Number:
		n, err := v.Float64()
		return err == nil && n != 0
	default:
		if n, ok := asNumber(value); ok {
			return n != 0
		}
		return true
	}
}

func asObject(value any) (map[string]any, bool) {
	obj, ok := value.(map[string]any)
	return obj, ok
}

func asSequence(value any) ([]any, bool) {
	seq, ok := value.([]any)
	return seq, ok
}

// round1 rounds to one decimal, halves away from zero.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
