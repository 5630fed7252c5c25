package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Base styles
var (
	// Headers and titles
	TitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true)

	// Text styles
	NormalStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// Status styles
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	// Code and path styles
	CodeStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	PathStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Italic(true)

	// Dotfile names
	DotfileStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)
)

// Diff and hook styles
var (
	AddedStyle = lipgloss.NewStyle().
			Foreground(AddedColor)

	RemovedStyle = lipgloss.NewStyle().
			Foreground(RemovedColor)

	HunkStyle = lipgloss.NewStyle().
			Foreground(HunkColor)

	DiffHeaderStyle = lipgloss.NewStyle().
			Bold(true)

	StepStyle = lipgloss.NewStyle().
			Foreground(StepColor)
)

// Operation indicators
const (
	SuccessIndicator = "✓"
	ErrorIndicator   = "✗"
	WarningIndicator = "!"
	InfoIndicator    = "•"
)

// Helper functions
func Indent(s string, level int) string {
	return lipgloss.NewStyle().PaddingLeft(level * 2).Render(s)
}

func Bold(s string) string {
	return lipgloss.NewStyle().Bold(true).Render(s)
}

func Italic(s string) string {
	return lipgloss.NewStyle().Italic(true).Render(s)
}
