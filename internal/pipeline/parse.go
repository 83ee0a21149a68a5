package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

var errNotObject = errors.New("response is not a JSON object")

// parseObject decodes sanitized model output into a JSON object. When the
// text does not parse as is, the outermost {...} span is tried, then (if
// repair is enabled) a repaired version of the text.
func parseObject(text string, repair bool) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty response")
	}

	obj, err := decodeObject(text)
	if err == nil || errors.Is(err, errNotObject) {
		return obj, err
	}
	firstErr := err

	if span, ok := outerObject(text); ok && span != text {
		if obj, err := decodeObject(span); err == nil {
			return obj, nil
		}
	}

	if repair {
		fixed, rerr := jsonrepair.JSONRepair(text)
		if rerr == nil {
			if obj, err := decodeObject(fixed); err == nil {
				return obj, nil
			}
		}
	}

	return nil, firstErr
}

// decodeObject parses text with the schema library's decoder, which keeps
// numbers as json.Number, and requires an object at the top level.
func decodeObject(text string) (map[string]any, error) {
	v, err := jsonschema.UnmarshalJSON(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w (got %s)", errNotObject, jsonKind(v))
	}
	return obj, nil
}

// outerObject returns the text between the first '{' and the last '}'.
func outerObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	}
	return "number"
}
