package rubric

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidStrictRubric indicates the strict rubric JSON failed validation.
var ErrInvalidStrictRubric = errors.New("invalid strict rubric")

const strictSchemaJSON = `{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["name"],
    "properties": {
      "name": {"type": "string", "minLength": 1},
      "description": {"type": "string"},
      "weight": {"type": "number"},
      "levels": {"type": "object", "additionalProperties": {"type": "string"}}
    }
  }
}`

var strictSchema = jsonschema.MustCompileString("strict_rubric.json", strictSchemaJSON)

// StrictItem is one entry of a rich rubric definition.
type StrictItem struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Weight      *float64          `json:"weight,omitempty"`
	Levels      map[string]string `json:"levels,omitempty"`
}

// Strict is a parsed rich rubric: the ordered criterion names, a prompt block
// describing each criterion for the grading model, and the base weights when
// any item declares one.
type Strict struct {
	Names       []string
	PromptBlock string
	BaseWeights []float64
}

// ParseStrict validates and parses a strict rubric JSON document.
func ParseStrict(text string) (Strict, error) {
	var untyped any
	if err := json.Unmarshal([]byte(text), &untyped); err != nil {
		return Strict{}, fmt.Errorf("%w: %v", ErrInvalidStrictRubric, err)
	}
	if err := strictSchema.Validate(untyped); err != nil {
		return Strict{}, fmt.Errorf("%w: %v", ErrInvalidStrictRubric, err)
	}

	var items []StrictItem
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return Strict{}, fmt.Errorf("%w: %v", ErrInvalidStrictRubric, err)
	}

	parsed := Strict{}
	lines := make([]string, 0, len(items))
	weights := make([]float64, 0, len(items))
	anyWeight := false

	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		parsed.Names = append(parsed.Names, name)

		var body []string
		if desc := strings.TrimSpace(item.Description); desc != "" {
			body = append(body, "   Description: "+desc)
		}
		if len(item.Levels) > 0 {
			body = append(body, "   Scoring guide:")
			levelKeys := make([]string, 0, len(item.Levels))
			for key := range item.Levels {
				levelKeys = append(levelKeys, key)
			}
			sort.Sort(sort.Reverse(sort.StringSlice(levelKeys)))
			for _, key := range levelKeys {
				body = append(body, fmt.Sprintf("     - Score %s: %s", key, item.Levels[key]))
			}
		}

		header := fmt.Sprintf("%d. %s", len(parsed.Names), name)
		if len(body) > 0 {
			lines = append(lines, header+"\n"+strings.Join(body, "\n"))
		} else {
			lines = append(lines, header)
		}

		if item.Weight != nil {
			weights = append(weights, *item.Weight)
			anyWeight = true
		} else {
			weights = append(weights, 0)
		}
	}

	if len(parsed.Names) == 0 {
		return Strict{}, fmt.Errorf("%w: no items with a name", ErrInvalidStrictRubric)
	}

	parsed.PromptBlock = strings.Join(lines, "\n")
	if anyWeight {
		parsed.BaseWeights = weights
	}

	return parsed, nil
}

// IsJSON reports whether the text parses as JSON at all; non-JSON strict
// rubric input is handed to the AI model for conversion first.
func IsJSON(text string) bool {
	var probe any
	return json.Unmarshal([]byte(strings.TrimSpace(text)), &probe) == nil
}
