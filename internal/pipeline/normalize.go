package pipeline

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Normalizers coerce harmless shape variations into the canonical shape
// before the schema gate. They never invent required fields.

func normalizeQuestion(obj map[string]any) {
	trimString(obj, "title", "description", "questionType", "difficulty")

	switch v := obj["constraints"].(type) {
	case string:
		obj["constraints"] = splitList(v)
	case []any:
		obj["constraints"] = stringifyItems(v)
	}

	if examples, ok := obj["examples"].([]any); ok {
		for _, e := range examples {
			if m, ok := e.(map[string]any); ok {
				stringify(m, "input", "output", "explanation")
			}
		}
	}
}

func normalizeEvaluation(obj map[string]any) {
	// Some models drop the "evaluation" wrapper.
	if _, ok := obj["evaluation"]; !ok {
		if _, ok := obj["testResults"]; ok {
			inner := map[string]any{}
			for _, k := range []string{"passed", "testResults", "summary"} {
				if v, ok := obj[k]; ok {
					inner[k] = v
					delete(obj, k)
				}
			}
			obj["evaluation"] = inner
		}
	}

	eval, ok := obj["evaluation"].(map[string]any)
	if !ok {
		return
	}
	// The summary is always recomputed from the results.
	delete(eval, "summary")

	if results, ok := eval["testResults"].([]any); ok {
		for _, r := range results {
			m, ok := r.(map[string]any)
			if !ok {
				continue
			}
			stringify(m, "input", "expectedOutput", "actualOutput", "error", "errorType", "errorDescription")
			integer(m, "testCase", "lineNumber")
		}
	}

	analysis, ok := obj["analysis"].(map[string]any)
	if !ok {
		return
	}
	if lines, ok := analysis["lineByLine"].([]any); ok {
		for _, l := range lines {
			if m, ok := l.(map[string]any); ok {
				integer(m, "lineNumber")
				stringify(m, "code")
				listify(m, "potentialIssues", "suggestions")
			}
		}
	}
	for _, k := range []string{"timeComplexity", "spaceComplexity"} {
		if s, ok := analysis[k].(string); ok {
			analysis[k] = map[string]any{"notation": s}
		}
	}
	if quality, ok := analysis["codeQuality"].(map[string]any); ok {
		listify(quality, "suggestions", "edgeCases", "potentialBugs")
	}
}

func normalizeComplexity(obj map[string]any) {
	// Some models drop the "complexity" wrapper.
	if _, ok := obj["complexity"]; !ok {
		_, hasTime := obj["time"]
		_, hasSpace := obj["space"]
		if hasTime || hasSpace {
			obj["complexity"] = map[string]any{"time": obj["time"], "space": obj["space"]}
			delete(obj, "time")
			delete(obj, "space")
		}
	}

	if c, ok := obj["complexity"].(map[string]any); ok {
		for _, k := range []string{"time", "space"} {
			if s, ok := c[k].(string); ok {
				c[k] = map[string]any{"notation": strings.TrimSpace(s)}
			}
		}
	}

	if opt, ok := obj["optimization"].(map[string]any); ok {
		listify(opt, "suggestions", "potentialImprovements", "tradeoffs")
	}
}

// reviewAliases maps camelCase keys some models emit to the review's
// snake_case fields.
var reviewAliases = map[string]string{
	"timeComplexity":  "time_complexity",
	"spaceComplexity": "space_complexity",
}

func normalizeReview(obj map[string]any) {
	for from, to := range reviewAliases {
		if v, ok := obj[from]; ok {
			if _, taken := obj[to]; !taken {
				obj[to] = v
			}
			delete(obj, from)
		}
	}

	// The prompt asks for bulleted prose, which models often return as
	// nested objects or lists.
	for _, k := range []string{"output", "time_complexity", "space_complexity"} {
		obj[k] = flattenText(obj[k])
		if obj[k] == nil {
			delete(obj, k)
		}
	}
	trimString(obj, "output", "time_complexity", "space_complexity")
	listify(obj, "suggestions")
	if s, ok := obj["passed"].(string); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			obj["passed"] = b
		}
	}
}

// flattenText renders lists and objects as one "key: value" or bullet line
// per entry. Strings and nil pass through; other scalars become strings.
func flattenText(v any) any {
	switch t := v.(type) {
	case nil, string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case []any:
		lines := make([]string, 0, len(t))
		for _, it := range t {
			if s, ok := flattenText(it).(string); ok && s != "" {
				lines = append(lines, "- "+s)
			}
		}
		return strings.Join(lines, "\n")
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			if s, ok := flattenText(t[k]).(string); ok && s != "" {
				lines = append(lines, k+": "+s)
			}
		}
		return strings.Join(lines, "\n")
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return nil
}

// trimString trims whitespace around string fields.
func trimString(m map[string]any, keys ...string) {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			m[k] = strings.TrimSpace(s)
		}
	}
}

// stringify renders numbers, booleans, arrays and objects in string fields
// as compact JSON. Models often emit test inputs like [1,2,3] unquoted.
func stringify(m map[string]any, keys ...string) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case nil, string:
		case json.Number:
			m[k] = v.String()
		default:
			if b, err := json.Marshal(v); err == nil {
				m[k] = string(b)
			}
		}
	}
}

// integer turns integral floats and numeric strings into integers.
func integer(m map[string]any, keys ...string) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case json.Number:
			if _, err := v.Int64(); err == nil {
				continue
			}
			if f, err := v.Float64(); err == nil && f == math.Trunc(f) {
				m[k] = json.Number(strconv.FormatInt(int64(f), 10))
			}
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				m[k] = json.Number(strconv.Itoa(n))
			}
		}
	}
}

// listify wraps a lone string into a list.
func listify(m map[string]any, keys ...string) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			m[k] = splitList(v)
		case []any:
			m[k] = stringifyItems(v)
		}
	}
}

// stringifyItems converts non-string scalars in a list into strings.
func stringifyItems(items []any) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case nil:
		case string:
			out = append(out, v)
		case json.Number:
			out = append(out, v.String())
		default:
			if b, err := json.Marshal(v); err == nil {
				out = append(out, string(b))
			}
		}
	}
	return out
}

// splitList turns a bulleted or multi-line string into list items.
func splitList(s string) []any {
	var out []any
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• ")
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	if out == nil {
		out = []any{}
	}
	return out
}
