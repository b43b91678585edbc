package tui

import "github.com/charmbracelet/lipgloss"

// Color Palette
// Single source of truth for all TUI colors.
var (
	skyBlue     = lipgloss.Color("#87CEEB") // primary accent
	seafoam     = lipgloss.Color("#A8E6CF") // success states, tool output
	sandGold    = lipgloss.Color("#F5D491") // payment highlights
	mutedGray   = lipgloss.Color("#6B7280") // secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // primary text
	alertRed    = lipgloss.Color("203")     // errors
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(skyBlue).
			Bold(true)

	tipsStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	userStyle = lipgloss.NewStyle().
			Foreground(skyBlue).
			Bold(true)

	agentStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	thinkingStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)

	toolStyle = lipgloss.NewStyle().
			Foreground(seafoam)

	paymentStyle = lipgloss.NewStyle().
			Foreground(sandGold).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(alertRed)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(skyBlue).
			Padding(0, 1)
)
