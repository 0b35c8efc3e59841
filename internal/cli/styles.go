package cli

import "github.com/charmbracelet/lipgloss"

// Shared hex colors for text output.
const (
	colorTitle   = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
	colorSuccess = lipgloss.Color("#10B981")
	colorError   = lipgloss.Color("#EF4444")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorTitle)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	passStyle  = lipgloss.NewStyle().Foreground(colorSuccess)
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorError)
)

const (
	passMark = "✓"
	failMark = "✗"
)

func passLine(text string) string { return passStyle.Render(passMark + " " + text) }

func failLine(text string) string { return failStyle.Render(failMark + " " + text) }
