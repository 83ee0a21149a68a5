package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette for terminal output
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Section = lipgloss.NewStyle().
		Bold(true).
		Foreground(Secondary)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Notation = lipgloss.NewStyle().
			Bold(true).
			Foreground(Accent)
)

// Blocks
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	Code = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(Border).
		PaddingLeft(1).
		Foreground(TextDim)
)

// States
var (
	Pass = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Fail = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Test gauge cells
var (
	GaugePass = lipgloss.NewStyle().
			Background(Success)

	GaugeFail = lipgloss.NewStyle().
			Background(Error)

	GaugeEmpty = lipgloss.NewStyle().
			Background(Border)
)
