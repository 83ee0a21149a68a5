// Package report renders pipeline results for the terminal.
package report

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/codecoach/internal/pipeline"
	"github.com/abhisek/codecoach/internal/ui/components"
	"github.com/abhisek/codecoach/internal/ui/theme"
)

// Width is the target width of rendered reports.
const Width = 80

// Result renders whichever payload res carries, followed by a metadata line.
func Result(res *pipeline.Result) string {
	var body string
	switch {
	case res.Question != nil:
		body = Question(res.Question)
	case res.Evaluation != nil:
		body = Evaluation(res.Evaluation)
	case res.Complexity != nil:
		body = Complexity(res.Complexity)
	case res.Review != nil:
		body = Review(res.Review)
	}

	cache := ""
	if res.Cached {
		cache = ", cached"
	}
	meta := theme.Hint.Render(fmt.Sprintf("%s · %s · %d attempt(s)%s", res.InvocationID, res.Model, res.Attempts, cache))
	return body + "\n" + meta
}

// Question renders a generated question.
func Question(q *pipeline.QuestionSpec) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render(q.Title))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(strings.Join(nonEmpty(q.Difficulty, q.QuestionType, q.TimeComplexity), " · ")))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Width(Width).Render(q.Description))
	b.WriteString("\n")

	if len(q.Constraints) > 0 {
		b.WriteString("\n" + theme.Section.Render("Constraints") + "\n")
		for _, c := range q.Constraints {
			b.WriteString("  • " + theme.Body.Render(c) + "\n")
		}
	}

	for i, ex := range q.Examples {
		lines := []string{
			theme.Section.Render(fmt.Sprintf("Example %d", i+1)),
			"Input:  " + ex.Input,
			"Output: " + ex.Output,
		}
		if ex.Explanation != "" {
			lines = append(lines, theme.Hint.Render(ex.Explanation))
		}
		b.WriteString("\n" + theme.Card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)) + "\n")
	}

	if q.CodeTemplate != "" {
		b.WriteString("\n" + theme.Section.Render("Starter code") + "\n")
		b.WriteString(theme.Code.Render(strings.TrimRight(q.CodeTemplate, "\n")) + "\n")
	}
	return b.String()
}

// Evaluation renders the verdict on a submission.
func Evaluation(r *pipeline.EvaluationReport) string {
	var b strings.Builder
	ev := r.Evaluation

	verdict := theme.Fail.Render("✗ FAILED")
	if ev.Passed {
		verdict = theme.Pass.Render("✓ PASSED")
	}
	b.WriteString(verdict + "  ")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%d/%d tests passed", ev.Summary.PassedTests, ev.Summary.TotalTests)))
	b.WriteString("\n")
	outcomes := make([]bool, len(ev.TestResults))
	for i, tr := range ev.TestResults {
		outcomes[i] = tr.Passed
	}
	b.WriteString(components.NewTestGauge("Tests", outcomes, Width/2).View())
	b.WriteString("\n\n")

	for _, tr := range ev.TestResults {
		mark := theme.Pass.Render("✓")
		if !tr.Passed {
			mark = theme.Fail.Render("✗")
		}
		line := fmt.Sprintf("%s Test %d  input=%s expected=%s actual=%s",
			mark, tr.TestCase, tr.Input, tr.ExpectedOutput, tr.ActualOutput)
		b.WriteString(line + "\n")
		if tr.Error != "" {
			detail := tr.Error
			if tr.LineNumber > 0 {
				detail = fmt.Sprintf("line %d: %s", tr.LineNumber, detail)
			}
			b.WriteString("    " + theme.Hint.Render(detail) + "\n")
		}
	}

	a := r.Analysis
	if a == nil {
		return b.String()
	}
	if a.TimeComplexity != nil || a.SpaceComplexity != nil {
		b.WriteString("\n" + theme.Section.Render("Complexity") + "\n")
		if a.TimeComplexity != nil {
			b.WriteString(detailLine("Time", *a.TimeComplexity))
		}
		if a.SpaceComplexity != nil {
			b.WriteString(detailLine("Space", *a.SpaceComplexity))
		}
	}
	if q := a.CodeQuality; q != nil {
		b.WriteString("\n" + theme.Section.Render("Code quality") + "\n")
		b.WriteString(fmt.Sprintf("  readability %.0f · efficiency %.0f · best practices %.0f\n",
			q.Readability, q.Efficiency, q.BestPractices))
		b.WriteString(bullets("Suggestions", q.Suggestions))
		b.WriteString(bullets("Edge cases", q.EdgeCases))
		b.WriteString(bullets("Potential bugs", q.PotentialBugs))
	}
	return b.String()
}

// Complexity renders a complexity analysis.
func Complexity(r *pipeline.ComplexityReport) string {
	var b strings.Builder

	b.WriteString(theme.Section.Render("Complexity") + "\n")
	b.WriteString(detailLine("Time", r.Complexity.Time))
	b.WriteString(detailLine("Space", r.Complexity.Space))

	for _, d := range []pipeline.ComplexityDetail{r.Complexity.Time, r.Complexity.Space} {
		if d.Breakdown == nil {
			continue
		}
		for _, op := range d.Breakdown.Operations {
			b.WriteString(fmt.Sprintf("    %s: %s\n", op.Operation, op.Complexity))
		}
		for _, ds := range d.Breakdown.DataStructures {
			b.WriteString(fmt.Sprintf("    %s: %s\n", ds.Structure, ds.Space))
		}
	}

	if r.Explanation != "" {
		b.WriteString("\n" + theme.Body.Width(Width).Render(r.Explanation) + "\n")
	}
	if o := r.Optimization; o != nil {
		b.WriteString(bullets("Suggestions", o.Suggestions))
		b.WriteString(bullets("Improvements", o.PotentialImprovements))
		b.WriteString(bullets("Tradeoffs", o.Tradeoffs))
	}
	return b.String()
}

// Review renders a test-free review.
func Review(r *pipeline.ReviewReport) string {
	var b strings.Builder

	verdict := theme.Fail.Render("✗ NEEDS WORK")
	if r.Passed {
		verdict = theme.Pass.Render("✓ LOOKS CORRECT")
	}
	b.WriteString(verdict + "\n\n")
	b.WriteString(theme.Body.Width(Width).Render(r.Output) + "\n")

	if r.TimeComplexity != "" || r.SpaceComplexity != "" {
		b.WriteString("\n" + theme.Section.Render("Complexity") + "\n")
		for _, part := range []struct{ label, text string }{
			{"Time", r.TimeComplexity},
			{"Space", r.SpaceComplexity},
		} {
			if part.text == "" {
				continue
			}
			b.WriteString(theme.Subtitle.Render(part.label) + "\n")
			b.WriteString(theme.Body.Width(Width).Render(part.text) + "\n")
		}
	}
	b.WriteString(bullets("Suggestions", r.Suggestions))
	return b.String()
}

// Failure renders a user-facing error notice.
func Failure(notice string) string {
	return theme.Fail.Render("✗ " + notice)
}

func detailLine(label string, d pipeline.ComplexityDetail) string {
	line := fmt.Sprintf("  %-6s %s", label, theme.Notation.Render(d.Notation))
	if d.Explanation != "" {
		line += "  " + theme.Hint.Render(d.Explanation)
	}
	return line + "\n"
}

func bullets(title string, items []string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n" + theme.Section.Render(title) + "\n")
	for _, it := range items {
		b.WriteString("  • " + it + "\n")
	}
	return b.String()
}

func nonEmpty(parts ...string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
