package pipeline

import (
	"encoding/json"
	"text/template"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/codecoach/internal/llm"
	"github.com/abhisek/codecoach/internal/templates"
)

// Sampling parameters shared by every kind.
const (
	defaultTopK = 40
	defaultTopP = 0.95
)

// contract bundles everything that differs between kinds. The pipeline
// itself is kind-agnostic.
type contract struct {
	kind        Kind
	template    *template.Template
	schema      *jsonschema.Schema
	temperature float64
	maxTokens   int

	// cacheable kinds are deterministic enough to serve from cache.
	cacheable bool

	normalize func(obj map[string]any)

	// decode unmarshals validated JSON into res and applies the kind's
	// post-processing.
	decode func(data []byte, task Task, res *Result) error
}

var contracts = map[Kind]*contract{
	KindGenerateQuestion: {
		kind:        KindGenerateQuestion,
		template:    questionTemplate,
		schema:      mustCompileSchema("question", questionSchemaDef),
		temperature: 0.7,
		maxTokens:   1024,
		normalize:   normalizeQuestion,
		decode:      decodeQuestion,
	},
	KindEvaluateCode: {
		kind:        KindEvaluateCode,
		template:    evaluationTemplate,
		schema:      mustCompileSchema("evaluation", evaluationSchemaDef),
		temperature: 0.3,
		maxTokens:   2048,
		cacheable:   true,
		normalize:   normalizeEvaluation,
		decode:      decodeEvaluation,
	},
	KindAnalyzeComplexity: {
		kind:        KindAnalyzeComplexity,
		template:    complexityTemplate,
		schema:      mustCompileSchema("complexity", complexitySchemaDef),
		temperature: 0.3,
		maxTokens:   1024,
		cacheable:   true,
		normalize:   normalizeComplexity,
		decode:      decodeComplexity,
	},
	KindReviewCode: {
		kind:        KindReviewCode,
		template:    reviewTemplate,
		schema:      mustCompileSchema("review", reviewSchemaDef),
		temperature: 0.3,
		maxTokens:   1024,
		cacheable:   true,
		normalize:   normalizeReview,
		decode:      decodeReview,
	},
}

// request builds the provider request for prompt.
func (c *contract) request(prompt string, jsonMode bool) llm.Request {
	return llm.Request{
		Messages:    llm.UserPrompt(prompt),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopK:        defaultTopK,
		TopP:        defaultTopP,
		JSONMode:    jsonMode,
	}
}

func decodeQuestion(data []byte, task Task, res *Result) error {
	var q QuestionSpec
	if err := json.Unmarshal(data, &q); err != nil {
		return err
	}
	if q.Difficulty == "" {
		q.Difficulty = task.difficulty()
	}
	qt := templates.InferType(q.QuestionType, q.Title, q.Description)
	q.CodeTemplate = templates.For(task.Language, qt)
	res.Question = &q
	return nil
}

func decodeEvaluation(data []byte, _ Task, res *Result) error {
	var e EvaluationReport
	if err := json.Unmarshal(data, &e); err != nil {
		return err
	}
	e.Evaluation.Summary = summarize(e.Evaluation.TestResults)
	res.Evaluation = &e
	return nil
}

func decodeComplexity(data []byte, _ Task, res *Result) error {
	var c ComplexityReport
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	res.Complexity = &c
	return nil
}

func decodeReview(data []byte, _ Task, res *Result) error {
	var r ReviewReport
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	res.Review = &r
	return nil
}
