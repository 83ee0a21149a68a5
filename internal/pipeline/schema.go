package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema definitions for the result shapes. Only the fields callers
// depend on are required; every other field is typed so that decoding into
// the result structs cannot fail once the gate passes. Optional fields also
// accept null.

func str() map[string]any { return map[string]any{"type": "string"} }

func nonEmptyStr() map[string]any {
	return map[string]any{"type": "string", "minLength": 1, "pattern": `\S`}
}

func optional(typ string) map[string]any {
	return map[string]any{"type": []any{typ, "null"}}
}

func optionalStrList() map[string]any {
	return map[string]any{"type": []any{"array", "null"}, "items": str()}
}

func object(props map[string]any, required ...string) map[string]any {
	def := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		req := make([]any, len(required))
		for i, r := range required {
			req[i] = r
		}
		def["required"] = req
	}
	return def
}

func optionalObject(props map[string]any, required ...string) map[string]any {
	def := object(props, required...)
	def["type"] = []any{"object", "null"}
	return def
}

func optionalList(items map[string]any) map[string]any {
	return map[string]any{"type": []any{"array", "null"}, "items": items}
}

func costItem() map[string]any {
	return object(map[string]any{
		"operation":   optional("string"),
		"structure":   optional("string"),
		"complexity":  optional("string"),
		"space":       optional("string"),
		"explanation": optional("string"),
	})
}

func breakdown() map[string]any {
	return optionalObject(map[string]any{
		"operations":     optionalList(costItem()),
		"dataStructures": optionalList(costItem()),
		"worstCase":      optional("string"),
		"bestCase":       optional("string"),
		"averageCase":    optional("string"),
		"auxiliarySpace": optional("string"),
		"totalSpace":     optional("string"),
	})
}

func complexityDetail(required bool) map[string]any {
	props := map[string]any{
		"notation":    nonEmptyStr(),
		"explanation": optional("string"),
		"breakdown":   breakdown(),
	}
	if required {
		return object(props, "notation")
	}
	return optionalObject(props, "notation")
}

var questionSchemaDef = object(map[string]any{
	"title":          nonEmptyStr(),
	"description":    nonEmptyStr(),
	"questionType":   nonEmptyStr(),
	"difficulty":     optional("string"),
	"constraints":    optionalStrList(),
	"timeComplexity": optional("string"),
	"examples": optionalList(object(map[string]any{
		"input":       optional("string"),
		"output":      optional("string"),
		"explanation": optional("string"),
	})),
}, "title", "description", "questionType")

var evaluationSchemaDef = object(map[string]any{
	"evaluation": object(map[string]any{
		"passed": map[string]any{"type": "boolean"},
		"testResults": map[string]any{
			"type": "array",
			"items": object(map[string]any{
				"testCase":         optional("integer"),
				"input":            optional("string"),
				"expectedOutput":   optional("string"),
				"actualOutput":     optional("string"),
				"passed":           map[string]any{"type": "boolean"},
				"error":            optional("string"),
				"lineNumber":       optional("integer"),
				"errorType":        optional("string"),
				"errorDescription": optional("string"),
			}, "passed"),
		},
	}, "passed", "testResults"),
	"analysis": optionalObject(map[string]any{
		"lineByLine": optionalList(object(map[string]any{
			"lineNumber":      optional("integer"),
			"code":            optional("string"),
			"explanation":     optional("string"),
			"complexity":      optional("string"),
			"potentialIssues": optionalStrList(),
			"suggestions":     optionalStrList(),
		})),
		"timeComplexity":  complexityDetail(false),
		"spaceComplexity": complexityDetail(false),
		"codeQuality": optionalObject(map[string]any{
			"readability":   optional("number"),
			"efficiency":    optional("number"),
			"bestPractices": optional("number"),
			"suggestions":   optionalStrList(),
			"edgeCases":     optionalStrList(),
			"potentialBugs": optionalStrList(),
		}),
	}),
}, "evaluation")

var complexitySchemaDef = object(map[string]any{
	"complexity": object(map[string]any{
		"time":  complexityDetail(true),
		"space": complexityDetail(true),
	}, "time", "space"),
	"optimization": optionalObject(map[string]any{
		"suggestions":           optionalStrList(),
		"potentialImprovements": optionalStrList(),
		"tradeoffs":             optionalStrList(),
	}),
	"explanation": optional("string"),
}, "complexity")

var reviewSchemaDef = object(map[string]any{
	"passed":           map[string]any{"type": "boolean"},
	"output":           nonEmptyStr(),
	"time_complexity":  optional("string"),
	"space_complexity": optional("string"),
	"suggestions":      optionalStrList(),
}, "passed", "output")

// mustCompileSchema compiles a definition. The definitions are static, so
// a failure is a programming error.
func mustCompileSchema(name string, def map[string]any) *jsonschema.Schema {
	s, err := compileSchema(name, def)
	if err != nil {
		panic(err)
	}
	return s
}

func compileSchema(name string, def map[string]any) (*jsonschema.Schema, error) {
	// The compiler wants the value shape produced by its own decoder.
	raw, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %q: %w", name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse schema %q: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://codecoach/%s.json", name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", name, err)
	}
	return compiled, nil
}
