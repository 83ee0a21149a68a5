package pipeline

import (
	"encoding/json"
	"strings"
)

// Result is the validated outcome of one Execute call. Exactly one payload
// is set, matching Kind.
type Result struct {
	Kind         Kind   `json:"kind"`
	InvocationID string `json:"invocationId"`
	Model        string `json:"model"`
	Attempts     int    `json:"attempts"`
	Cached       bool   `json:"cached"`

	Question   *QuestionSpec     `json:"question,omitempty"`
	Evaluation *EvaluationReport `json:"evaluation,omitempty"`
	Complexity *ComplexityReport `json:"complexity,omitempty"`
	Review     *ReviewReport     `json:"review,omitempty"`
}

// QuestionSpec is a generated programming question.
type QuestionSpec struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	QuestionType   string    `json:"questionType"`
	Difficulty     string    `json:"difficulty,omitempty"`
	Constraints    []string  `json:"constraints,omitempty"`
	TimeComplexity string    `json:"timeComplexity,omitempty"`
	Examples       []Example `json:"examples,omitempty"`
	CodeTemplate   string    `json:"codeTemplate,omitempty"`
}

// Example is a worked input/output pair shown with a question.
type Example struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Explanation string `json:"explanation,omitempty"`
}

// EvaluationReport is the model's verdict on a code submission.
type EvaluationReport struct {
	Evaluation Evaluation `json:"evaluation"`
	Analysis   *Analysis  `json:"analysis,omitempty"`
}

// Evaluation holds per-test results and their summary.
type Evaluation struct {
	Passed      bool         `json:"passed"`
	TestResults []TestResult `json:"testResults"`
	Summary     Summary      `json:"summary"`
}

// TestResult is the outcome of one test case.
type TestResult struct {
	TestCase         int    `json:"testCase"`
	Input            string `json:"input"`
	ExpectedOutput   string `json:"expectedOutput"`
	ActualOutput     string `json:"actualOutput"`
	Passed           bool   `json:"passed"`
	Error            string `json:"error,omitempty"`
	LineNumber       int    `json:"lineNumber,omitempty"`
	ErrorType        string `json:"errorType,omitempty"`
	ErrorDescription string `json:"errorDescription,omitempty"`
}

// Summary aggregates TestResults. It is always derived from the results,
// never taken from the model.
type Summary struct {
	TotalTests  int     `json:"totalTests"`
	PassedTests int     `json:"passedTests"`
	FailedTests int     `json:"failedTests"`
	SuccessRate float64 `json:"successRate"`
}

// Analysis is the optional line-by-line review attached to an evaluation.
type Analysis struct {
	LineByLine      []LineAnalysis    `json:"lineByLine,omitempty"`
	TimeComplexity  *ComplexityDetail `json:"timeComplexity,omitempty"`
	SpaceComplexity *ComplexityDetail `json:"spaceComplexity,omitempty"`
	CodeQuality     *CodeQuality      `json:"codeQuality,omitempty"`
}

// LineAnalysis explains one line of the submission.
type LineAnalysis struct {
	LineNumber      int      `json:"lineNumber"`
	Code            string   `json:"code"`
	Explanation     string   `json:"explanation"`
	Complexity      string   `json:"complexity,omitempty"`
	PotentialIssues []string `json:"potentialIssues,omitempty"`
	Suggestions     []string `json:"suggestions,omitempty"`
}

// CodeQuality scores the submission.
type CodeQuality struct {
	Readability   float64  `json:"readability"`
	Efficiency    float64  `json:"efficiency"`
	BestPractices float64  `json:"bestPractices"`
	Suggestions   []string `json:"suggestions,omitempty"`
	EdgeCases     []string `json:"edgeCases,omitempty"`
	PotentialBugs []string `json:"potentialBugs,omitempty"`
}

// ComplexityReport is the model's time/space analysis of a snippet.
type ComplexityReport struct {
	Complexity   Complexity    `json:"complexity"`
	Optimization *Optimization `json:"optimization,omitempty"`
	Explanation  string        `json:"explanation,omitempty"`
}

// Complexity pairs the time and space analyses.
type Complexity struct {
	Time  ComplexityDetail `json:"time"`
	Space ComplexityDetail `json:"space"`
}

// ComplexityDetail is a Big-O notation with its reasoning.
type ComplexityDetail struct {
	Notation    string     `json:"notation"`
	Explanation string     `json:"explanation,omitempty"`
	Breakdown   *Breakdown `json:"breakdown,omitempty"`
}

// Breakdown itemizes the cost of operations or data structures.
type Breakdown struct {
	Operations     []CostItem `json:"operations,omitempty"`
	DataStructures []CostItem `json:"dataStructures,omitempty"`
	WorstCase      string     `json:"worstCase,omitempty"`
	BestCase       string     `json:"bestCase,omitempty"`
	AverageCase    string     `json:"averageCase,omitempty"`
	AuxiliarySpace string     `json:"auxiliarySpace,omitempty"`
	TotalSpace     string     `json:"totalSpace,omitempty"`
}

// CostItem is one operation or data structure and its cost. Operations use
// Operation/Complexity, data structures use Structure/Space.
type CostItem struct {
	Operation   string `json:"operation,omitempty"`
	Structure   string `json:"structure,omitempty"`
	Complexity  string `json:"complexity,omitempty"`
	Space       string `json:"space,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

// Optimization lists improvement ideas.
type Optimization struct {
	Suggestions           []string `json:"suggestions,omitempty"`
	PotentialImprovements []string `json:"potentialImprovements,omitempty"`
	Tradeoffs             []string `json:"tradeoffs,omitempty"`
}

// ReviewReport is a verdict on a submission reviewed without test cases.
// The complexity fields are free text.
type ReviewReport struct {
	Passed          bool     `json:"passed"`
	Output          string   `json:"output"`
	TimeComplexity  string   `json:"time_complexity,omitempty"`
	SpaceComplexity string   `json:"space_complexity,omitempty"`
	Suggestions     []string `json:"suggestions,omitempty"`
}

// summarize derives the summary from the test results.
func summarize(results []TestResult) Summary {
	s := Summary{TotalTests: len(results)}
	for _, r := range results {
		if r.Passed {
			s.PassedTests++
		}
	}
	s.FailedTests = s.TotalTests - s.PassedTests
	if s.TotalTests > 0 {
		s.SuccessRate = 100 * float64(s.PassedTests) / float64(s.TotalTests)
	}
	return s
}

// value returns the populated payload of r.
func (r *Result) value() any {
	switch {
	case r.Question != nil:
		return r.Question
	case r.Evaluation != nil:
		return r.Evaluation
	case r.Complexity != nil:
		return r.Complexity
	case r.Review != nil:
		return r.Review
	}
	return nil
}

// MarshalPayload encodes only the kind-specific payload, the shape HTTP
// clients and the CLI's --json output consume.
func (r *Result) MarshalPayload() ([]byte, error) {
	return json.Marshal(r.value())
}

// headline is a one-line description used in logs.
func (r *Result) headline() string {
	switch {
	case r.Question != nil:
		return r.Question.Title
	case r.Evaluation != nil:
		if r.Evaluation.Evaluation.Passed {
			return "passed"
		}
		return "failed"
	case r.Complexity != nil:
		return strings.Join([]string{r.Complexity.Complexity.Time.Notation, r.Complexity.Complexity.Space.Notation}, " / ")
	case r.Review != nil:
		if r.Review.Passed {
			return "review passed"
		}
		return "review failed"
	}
	return ""
}
