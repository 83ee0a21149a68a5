package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/codecoach/internal/ui/theme"
)

// TestGauge renders one cell per test case, coloured by outcome, followed
// by the success rate. When there are more results than fit in Width the
// cells are scaled down proportionally.
type TestGauge struct {
	Label   string
	Results []bool
	Width   int
}

// NewTestGauge creates a gauge for the given per-test outcomes.
func NewTestGauge(label string, results []bool, width int) TestGauge {
	return TestGauge{Label: label, Results: results, Width: width}
}

// Rate returns the share of passing results in [0, 1].
func (g TestGauge) Rate() float64 {
	if len(g.Results) == 0 {
		return 0
	}
	passed := 0
	for _, ok := range g.Results {
		if ok {
			passed++
		}
	}
	return float64(passed) / float64(len(g.Results))
}

// View renders the gauge.
func (g TestGauge) View() string {
	var b strings.Builder

	if g.Label != "" {
		b.WriteString(theme.Body.Render(g.Label) + "  ")
	}

	rate := g.Rate()
	suffix := fmt.Sprintf("  %d%%", int(rate*100+0.5))
	cells := max(g.Width-lipgloss.Width(b.String())-len(suffix), 4)

	if len(g.Results) == 0 {
		b.WriteString(theme.GaugeEmpty.Render(strings.Repeat(" ", cells)))
	} else if len(g.Results) <= cells {
		for _, ok := range g.Results {
			b.WriteString(cell(ok, 1))
		}
	} else {
		passed := min(int(float64(cells)*rate+0.5), cells)
		b.WriteString(cell(true, passed))
		b.WriteString(cell(false, cells-passed))
	}

	b.WriteString(theme.Subtitle.Render(suffix))
	return b.String()
}

func cell(passed bool, n int) string {
	if n <= 0 {
		return ""
	}
	if passed {
		return theme.GaugePass.Render(strings.Repeat(" ", n))
	}
	return theme.GaugeFail.Render(strings.Repeat(" ", n))
}
