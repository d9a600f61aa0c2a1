// Package ui provides the terminal user interface for wikidex: the
// collection browser, the duplicate resolution prompt, and markdown
// rendering for document display.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette colors shared across the UI (Tokyo Night).
const (
	colorBackground = "#1a1b26"
	colorForeground = "#c0caf5"
	colorMuted      = "#565f89"
	colorAccent     = "#7aa2f7"
	colorGreen      = "#9ece6a"
	colorRed        = "#f7768e"
	colorYellow     = "#e0af68"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SHARED STYLES
// ═══════════════════════════════════════════════════════════════════════════════

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorAccent))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorMuted))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorMuted)).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorRed)).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorAccent)).
			Padding(1, 2)

	tableBaseStyle = lipgloss.NewStyle().
			BorderForeground(lipgloss.Color(colorMuted)).
			Align(lipgloss.Left)
)
