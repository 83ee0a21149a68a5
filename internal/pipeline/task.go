package pipeline

import (
	"fmt"
	"strings"
)

// Kind identifies which model-backed operation a Task runs.
type Kind string

const (
	KindGenerateQuestion  Kind = "generate_question"
	KindEvaluateCode      Kind = "evaluate_code"
	KindAnalyzeComplexity Kind = "analyze_complexity"

	// KindReviewCode judges a submission without test cases.
	KindReviewCode Kind = "review_code"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindGenerateQuestion, KindEvaluateCode, KindAnalyzeComplexity, KindReviewCode}

// DefaultDifficulty is used when a question task leaves Difficulty empty.
const DefaultDifficulty = "Easy"

// Task is one request for question generation, code evaluation, complexity
// analysis or review. TestCases is only read by KindEvaluateCode.
type Task struct {
	Kind       Kind
	Language   string
	Topic      string
	Difficulty string
	Code       string
	TestCases  []TestCase
}

// TestCase is a single input/expected-output pair for code evaluation.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
}

// Validate checks that the task carries everything its kind needs.
func (t Task) Validate() error {
	switch t.Kind {
	case KindGenerateQuestion, KindEvaluateCode, KindAnalyzeComplexity, KindReviewCode:
	case "":
		return &ErrInvalidTask{Reason: "kind is required"}
	default:
		return &ErrInvalidTask{Reason: fmt.Sprintf("unsupported kind %q", t.Kind)}
	}

	if strings.TrimSpace(t.Language) == "" {
		return &ErrInvalidTask{Kind: t.Kind, Reason: "language is required"}
	}

	if t.Kind == KindGenerateQuestion {
		return nil
	}

	if strings.TrimSpace(t.Code) == "" {
		return &ErrInvalidTask{Kind: t.Kind, Reason: "code is required"}
	}
	if t.Kind == KindEvaluateCode && len(t.TestCases) == 0 {
		return &ErrInvalidTask{Kind: t.Kind, Reason: "at least one test case is required"}
	}
	return nil
}

// difficulty returns the task's difficulty or the default.
func (t Task) difficulty() string {
	if d := strings.TrimSpace(t.Difficulty); d != "" {
		return d
	}
	return DefaultDifficulty
}
