// Package ui renders operator-facing console text.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	successStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	failureStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorRed)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorRed).
			Padding(0, 1)
)

const (
	checkMark = "[OK]"
	crossMark = "[!!]"
	warnMark  = "[??]"
)

// Title renders a heading.
func Title(s string) string { return titleStyle.Render(s) }

// Success renders a completed step.
func Success(s string) string { return successStyle.Render(checkMark + " " + s) }

// Failure renders a failed step.
func Failure(s string) string { return failureStyle.Render(crossMark + " " + s) }

// Warning renders a non-fatal problem.
func Warning(s string) string { return warningStyle.Render(warnMark + " " + s) }

// Dim renders secondary text.
func Dim(s string) string { return dimStyle.Render(s) }

// FailureBanner frames the final failure message with its detail lines.
func FailureBanner(message string, details ...string) string {
	lines := append([]string{failureStyle.Render(message)}, details...)
	return bannerStyle.Render(strings.Join(lines, "\n"))
}
