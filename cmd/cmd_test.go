package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/codecoach/internal/pipeline"
	"github.com/abhisek/codecoach/internal/store"
)

func TestReadTestCases(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid list", func(t *testing.T) {
		path := filepath.Join(dir, "tests.json")
		require.NoError(t, os.WriteFile(path, []byte(`[
			{"input": "1 2", "expectedOutput": "3"},
			{"input": "[1,2]", "expectedOutput": "[2,1]"}
		]`), 0o644))

		tcs, err := readTestCases(path)
		require.NoError(t, err)
		assert.Equal(t, []pipeline.TestCase{
			{Input: "1 2", ExpectedOutput: "3"},
			{Input: "[1,2]", ExpectedOutput: "[2,1]"},
		}, tcs)
	})

	t.Run("not a list", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"input": "1"}`), 0o644))
		_, err := readTestCases(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readTestCases(filepath.Join(dir, "nope.json"))
		assert.Error(t, err)
	})
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.0012", formatCost(0.00123))
	assert.Equal(t, "$1.50", formatCost(1.5))
}

func TestAvgLatency(t *testing.T) {
	assert.Equal(t, int64(0), avgLatency(store.LLMUsage{}))
	assert.Equal(t, int64(150), avgLatency(store.LLMUsage{Calls: 4, LatencyMs: 600}))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.True(t, strings.HasPrefix(out.String(), "codecoach "))
}

func TestTasksCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "events.db")
	s, err := store.Open(dbPath)
	require.NoError(t, err)

	ctx := context.Background()
	repo := s.EventRepo()
	require.NoError(t, repo.AppendTaskEvent(ctx, store.TaskEventData{
		InvocationID: "inv-ok", Kind: string(pipeline.KindAnalyzeComplexity),
		Language: "go", Outcome: pipeline.OutcomeOK, Attempts: 1, Model: "mock",
	}))
	require.NoError(t, repo.AppendTaskEvent(ctx, store.TaskEventData{
		InvocationID: "inv-bad", Kind: string(pipeline.KindGenerateQuestion),
		Language: "java", Outcome: string(pipeline.ClassSchemaViolation), Attempts: 1, Model: "mock",
	}))
	require.NoError(t, s.Close())

	t.Setenv("CODECOACH_LLM_PROVIDER", "mock")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"tasks", "--db", dbPath, "--class", string(pipeline.ClassSchemaViolation)})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.ExecuteContext(ctx))
	assert.Contains(t, out.String(), "inv-bad")
	assert.NotContains(t, out.String(), "inv-ok")
}

func TestReviewCommand_RecordsTask(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "events.db")
	codePath := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(codePath, []byte("package main\n\nfunc main() {}\n"), 0o644))

	// The mock provider has no scripted answers, so the single attempt fails.
	t.Setenv("CODECOACH_LLM_PROVIDER", "mock")
	t.Setenv("CODECOACH_PIPELINE_MAX_RETRIES", "1")

	var out, logs bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&logs)
	rootCmd.SetArgs([]string{"review", "--db", dbPath, "--language", "go", "--code-file", codePath, "--json"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		_ = tasksCmd.Flags().Set("kind", "")
		_ = tasksCmd.Flags().Set("class", "")
	})

	err := rootCmd.ExecuteContext(context.Background())
	require.ErrorIs(t, err, errTaskFailed)

	var failure struct {
		Error string         `json:"error"`
		Class pipeline.Class `json:"class"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &failure), out.String())
	assert.Equal(t, pipeline.ClassExhaustedRetries, failure.Class)
	assert.True(t, strings.HasPrefix(failure.Error, "could not review code: "), failure.Error)

	out.Reset()
	rootCmd.SetArgs([]string{"tasks", "--db", dbPath, "--kind", string(pipeline.KindReviewCode), "--class", string(pipeline.ClassExhaustedRetries)})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), string(pipeline.KindReviewCode))
}
