package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

const defaultTopic = "general programming concepts"

// promptData is the template input. Every field is derived from the Task
// alone so rendering stays deterministic.
type promptData struct {
	Language        string
	Topic           string
	Difficulty      string
	DifficultyLower string
	Code            string
	TestCases       string
}

var questionTemplate = template.Must(template.New("question").Parse(`You are an expert programming instructor specializing in {{.Language}}.
If the user asks for anything unrelated to coding or programming (such as the current time, recipes, or general knowledge), respond with: 'I can only help with coding questions and programming topics.'
Generate a coding question that is {{.DifficultyLower}} difficulty level and focuses on {{.Topic}}.
The question should be well-structured, include clear examples, and have a specific solution approach.
Do NOT include the answer or solution in any form. Only provide the question, constraints, and examples.
Make sure the question tests understanding of {{.Language}} concepts and best practices.

Respond with a single JSON object and nothing else, using exactly this structure:
{
  "title": "A clear, concise title for the problem",
  "description": "Detailed problem description with a clear problem statement, the input/output format and the edge cases to consider",
  "difficulty": "{{.Difficulty}}",
  "constraints": ["Each constraint as one string: time and space complexity requirements, input size limits, anything else important"],
  "timeComplexity": "Expected time complexity with explanation",
  "questionType": "The type of question (array, string, tree, etc.)",
  "examples": [
    {"input": "string", "output": "string", "explanation": "string"}
  ]
}`))

var evaluationTemplate = template.Must(template.New("evaluation").Parse(`You are an expert code evaluator specializing in {{.Language}}.
Evaluate the following code against the provided test cases.
Analyze the code line by line and provide detailed feedback.

Code to evaluate:
{{.Code}}

Test cases:
{{.TestCases}}

Respond with a single JSON object and nothing else, using exactly this structure:
{
  "evaluation": {
    "passed": boolean,
    "testResults": [
      {
        "testCase": number,
        "input": string,
        "expectedOutput": string,
        "actualOutput": string,
        "passed": boolean,
        "error": string | null,
        "lineNumber": number | null,
        "errorType": string | null,
        "errorDescription": string | null
      }
    ]
  },
  "analysis": {
    "lineByLine": [
      {
        "lineNumber": number,
        "code": string,
        "explanation": string,
        "complexity": string,
        "potentialIssues": string[],
        "suggestions": string[]
      }
    ],
    "timeComplexity": {
      "notation": string,
      "explanation": string,
      "breakdown": {
        "operations": [{"operation": string, "complexity": string, "explanation": string}],
        "worstCase": string,
        "bestCase": string,
        "averageCase": string
      }
    },
    "spaceComplexity": {
      "notation": string,
      "explanation": string,
      "breakdown": {
        "dataStructures": [{"structure": string, "space": string, "explanation": string}],
        "auxiliarySpace": string,
        "totalSpace": string
      }
    },
    "codeQuality": {
      "readability": number,
      "efficiency": number,
      "bestPractices": number,
      "suggestions": string[],
      "edgeCases": string[],
      "potentialBugs": string[]
    }
  }
}
Include one entry in "testResults" per test case, in the order given.`))

var complexityTemplate = template.Must(template.New("complexity").Parse(`You are an expert in algorithm analysis specializing in {{.Language}}.
Analyze the time and space complexity of the following code, considering all operations and data structures used.

Code to analyze:
{{.Code}}

Respond with a single JSON object and nothing else, using exactly this structure:
{
  "complexity": {
    "time": {
      "notation": string,
      "explanation": string,
      "breakdown": {
        "operations": [{"operation": string, "complexity": string, "explanation": string}],
        "worstCase": string,
        "bestCase": string,
        "averageCase": string
      }
    },
    "space": {
      "notation": string,
      "explanation": string,
      "breakdown": {
        "dataStructures": [{"structure": string, "space": string, "explanation": string}],
        "auxiliarySpace": string,
        "totalSpace": string
      }
    }
  },
  "optimization": {
    "suggestions": string[],
    "potentialImprovements": string[],
    "tradeoffs": string[]
  }
}`))

var reviewTemplate = template.Must(template.New("review").Parse(`You are an expert code reviewer specializing in {{.Language}}.
Evaluate the code for correctness, efficiency and best practices.
Consider time complexity, space complexity and code readability.

Code to review:
{{.Code}}

Respond with a single JSON object and nothing else, using exactly this structure:
{
  "passed": boolean,
  "output": "Results of the cases you traced, with input values, expected output, actual output and pass/fail status",
  "time_complexity": "Current complexity, optimal complexity and an explanation",
  "space_complexity": "Current complexity, optimal complexity and an explanation",
  "suggestions": ["One improvement per item, covering efficiency, best practices, readability and edge cases"]
}`))

// BuildPrompt renders the prompt for task. It is a pure function of the
// task: equal tasks always produce byte-identical prompts.
func BuildPrompt(task Task) (string, error) {
	if err := task.Validate(); err != nil {
		return "", err
	}
	c := contracts[task.Kind]

	data, err := newPromptData(task)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := c.template.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", task.Kind, err)
	}
	return buf.String(), nil
}

func newPromptData(task Task) (promptData, error) {
	data := promptData{
		Language:   strings.TrimSpace(task.Language),
		Topic:      strings.TrimSpace(task.Topic),
		Difficulty: task.difficulty(),
		Code:       task.Code,
	}
	if data.Topic == "" {
		data.Topic = defaultTopic
	}
	data.DifficultyLower = strings.ToLower(data.Difficulty)

	if len(task.TestCases) > 0 {
		tc, err := json.MarshalIndent(task.TestCases, "", "  ")
		if err != nil {
			return promptData{}, fmt.Errorf("encode test cases: %w", err)
		}
		data.TestCases = string(tc)
	}
	return data, nil
}
