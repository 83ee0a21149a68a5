package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/abhisek/codecoach/internal/pipeline"
	"github.com/abhisek/codecoach/internal/ui/report"
)

var questionCmd = &cobra.Command{
	Use:   "question",
	Short: "Generate a programming question",
	RunE: func(cmd *cobra.Command, args []string) error {
		language, _ := cmd.Flags().GetString("language")
		topic, _ := cmd.Flags().GetString("topic")
		difficulty, _ := cmd.Flags().GetString("difficulty")

		return runTask(cmd, pipeline.Task{
			Kind:       pipeline.KindGenerateQuestion,
			Language:   language,
			Topic:      topic,
			Difficulty: difficulty,
		})
	},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate code against test cases",
	RunE: func(cmd *cobra.Command, args []string) error {
		language, _ := cmd.Flags().GetString("language")
		codeFile, _ := cmd.Flags().GetString("code-file")
		testsFile, _ := cmd.Flags().GetString("tests-file")

		code, err := os.ReadFile(codeFile)
		if err != nil {
			return fmt.Errorf("read code: %w", err)
		}
		testCases, err := readTestCases(testsFile)
		if err != nil {
			return err
		}

		return runTask(cmd, pipeline.Task{
			Kind:      pipeline.KindEvaluateCode,
			Language:  language,
			Code:      string(code),
			TestCases: testCases,
		})
	},
}

var complexityCmd = &cobra.Command{
	Use:   "complexity",
	Short: "Analyze the time and space complexity of code",
	RunE: func(cmd *cobra.Command, args []string) error {
		language, _ := cmd.Flags().GetString("language")
		codeFile, _ := cmd.Flags().GetString("code-file")

		code, err := os.ReadFile(codeFile)
		if err != nil {
			return fmt.Errorf("read code: %w", err)
		}

		return runTask(cmd, pipeline.Task{
			Kind:     pipeline.KindAnalyzeComplexity,
			Language: language,
			Code:     string(code),
		})
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review code for correctness and quality without test cases",
	RunE: func(cmd *cobra.Command, args []string) error {
		language, _ := cmd.Flags().GetString("language")
		codeFile, _ := cmd.Flags().GetString("code-file")

		code, err := os.ReadFile(codeFile)
		if err != nil {
			return fmt.Errorf("read code: %w", err)
		}

		return runTask(cmd, pipeline.Task{
			Kind:     pipeline.KindReviewCode,
			Language: language,
			Code:     string(code),
		})
	},
}

// readTestCases loads a JSON list of {"input", "expectedOutput"} objects.
func readTestCases(path string) ([]pipeline.TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read test cases: %w", err)
	}
	var tcs []pipeline.TestCase
	if err := json.Unmarshal(data, &tcs); err != nil {
		return nil, fmt.Errorf("parse test cases %s: %w", path, err)
	}
	return tcs, nil
}

// errTaskFailed is returned after the failure notice has been printed.
var errTaskFailed = errors.New("task failed")

// runTask executes one task and prints the result, styled or as JSON.
func runTask(cmd *cobra.Command, task pipeline.Task) error {
	a, err := openApp(cmd, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer a.Close()

	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	res, err := a.pipeline.Execute(cmd.Context(), task)
	if err != nil {
		notice := pipeline.Notice(task.Kind, err)
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			_ = enc.Encode(map[string]any{"error": notice, "class": pipeline.Classify(err)})
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), report.Failure(notice))
		}
		cmd.SilenceErrors = true
		return errTaskFailed
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Fprintln(out, report.Result(res))
	return nil
}

func init() {
	for _, c := range []*cobra.Command{questionCmd, evaluateCmd, complexityCmd, reviewCmd} {
		c.Flags().StringP("language", "l", "", "Programming language (e.g. cpp, java, go)")
		c.Flags().Bool("json", false, "Print the result as JSON")
		_ = c.MarkFlagRequired("language")
	}

	questionCmd.Flags().StringP("topic", "t", "", "Topic to focus on")
	questionCmd.Flags().StringP("difficulty", "d", pipeline.DefaultDifficulty, "Difficulty: Easy, Medium or Hard")

	evaluateCmd.Flags().String("code-file", "", "File containing the code to evaluate")
	evaluateCmd.Flags().String("tests-file", "", "JSON file with a list of {input, expectedOutput}")
	_ = evaluateCmd.MarkFlagRequired("code-file")
	_ = evaluateCmd.MarkFlagRequired("tests-file")

	complexityCmd.Flags().String("code-file", "", "File containing the code to analyze")
	_ = complexityCmd.MarkFlagRequired("code-file")

	reviewCmd.Flags().String("code-file", "", "File containing the code to review")
	_ = reviewCmd.MarkFlagRequired("code-file")
}
