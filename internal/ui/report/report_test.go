package report

import (
	"strings"
	"testing"

	"github.com/abhisek/codecoach/internal/pipeline"
)

func TestQuestion(t *testing.T) {
	out := Question(&pipeline.QuestionSpec{
		Title:        "Two Sum",
		Description:  "Find two numbers.",
		QuestionType: "array",
		Difficulty:   "Easy",
		Constraints:  []string{"n <= 10^4"},
		Examples:     []pipeline.Example{{Input: "[2,7]", Output: "[0,1]"}},
		CodeTemplate: "int main() {}\n",
	})

	for _, want := range []string{"Two Sum", "Easy", "Constraints", "n <= 10^4", "Example 1", "[2,7]", "Starter code", "int main() {}"} {
		if !strings.Contains(out, want) {
			t.Errorf("question output missing %q", want)
		}
	}
}

func TestEvaluation(t *testing.T) {
	out := Evaluation(&pipeline.EvaluationReport{
		Evaluation: pipeline.Evaluation{
			Passed: false,
			TestResults: []pipeline.TestResult{
				{TestCase: 1, Input: "1", ExpectedOutput: "1", ActualOutput: "1", Passed: true},
				{TestCase: 2, Input: "2", ExpectedOutput: "4", ActualOutput: "3", Passed: false, Error: "off by one", LineNumber: 7},
			},
			Summary: pipeline.Summary{TotalTests: 2, PassedTests: 1, FailedTests: 1, SuccessRate: 50},
		},
		Analysis: &pipeline.Analysis{
			TimeComplexity: &pipeline.ComplexityDetail{Notation: "O(n)"},
			CodeQuality:    &pipeline.CodeQuality{Readability: 7, Suggestions: []string{"rename x"}},
		},
	})

	for _, want := range []string{"FAILED", "1/2 tests passed", "50%", "Test 2", "line 7: off by one", "O(n)", "rename x"} {
		if !strings.Contains(out, want) {
			t.Errorf("evaluation output missing %q", want)
		}
	}
}

func TestComplexity(t *testing.T) {
	out := Complexity(&pipeline.ComplexityReport{
		Complexity: pipeline.Complexity{
			Time: pipeline.ComplexityDetail{
				Notation:  "O(n log n)",
				Breakdown: &pipeline.Breakdown{Operations: []pipeline.CostItem{{Operation: "sort", Complexity: "O(n log n)"}}},
			},
			Space: pipeline.ComplexityDetail{Notation: "O(1)"},
		},
		Optimization: &pipeline.Optimization{Tradeoffs: []string{"memory vs speed"}},
	})

	for _, want := range []string{"O(n log n)", "O(1)", "sort", "Tradeoffs", "memory vs speed"} {
		if !strings.Contains(out, want) {
			t.Errorf("complexity output missing %q", want)
		}
	}
}

func TestReview(t *testing.T) {
	out := Review(&pipeline.ReviewReport{
		Passed:          false,
		Output:          "empty input panics",
		TimeComplexity:  "O(n log n)",
		SpaceComplexity: "O(n)",
		Suggestions:     []string{"check len(xs) first"},
	})

	for _, want := range []string{"NEEDS WORK", "empty input panics", "Time", "O(n log n)", "Space", "Suggestions", "check len(xs) first"} {
		if !strings.Contains(out, want) {
			t.Errorf("review output missing %q", want)
		}
	}

	passed := Review(&pipeline.ReviewReport{Passed: true, Output: "ok"})
	if !strings.Contains(passed, "LOOKS CORRECT") {
		t.Error("expected passing verdict")
	}
	if strings.Contains(passed, "Complexity") {
		t.Error("complexity section rendered without content")
	}
}

func TestResult_Metadata(t *testing.T) {
	out := Result(&pipeline.Result{
		InvocationID: "abc-123",
		Model:        "mock",
		Attempts:     2,
		Cached:       true,
		Complexity:   &pipeline.ComplexityReport{},
	})
	if !strings.Contains(out, "abc-123") || !strings.Contains(out, "2 attempt(s), cached") {
		t.Errorf("missing metadata in %q", out)
	}
}
