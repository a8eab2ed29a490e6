// Package cli provides the styled terminal front-end: reports, tables and the
// interactive triage prompter.
package cli

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	accent  = lipgloss.Color("#5B8DEF")
	good    = lipgloss.Color("#4ECDC4")
	caution = lipgloss.Color("#FFE66D")
	bad     = lipgloss.Color("#FF6B6B")
	note    = lipgloss.Color("#95E1D3")

	// SubtleColor is used for borders and secondary text.
	SubtleColor = lipgloss.Color("#666666")

	teamPalette = []lipgloss.Color{"#5B8DEF", "#4ECDC4", "#F7B267", "#C3A6FF", "#95E1D3", "#F38BA8"}
)

var (
	// SuccessStyle colors completed actions.
	SuccessStyle = lipgloss.NewStyle().Foreground(good)
	// WarningStyle colors non-fatal problems.
	WarningStyle = lipgloss.NewStyle().Foreground(caution)
	// InfoStyle colors neutral status lines.
	InfoStyle = lipgloss.NewStyle().Foreground(note)
	// SubtleStyle dims secondary text.
	SubtleStyle = lipgloss.NewStyle().Foreground(SubtleColor)
	// SubtitleStyle is a dimmed heading with a blank line after it.
	SubtitleStyle = SubtleStyle.MarginBottom(1)
	// BoldStyle emphasizes labels and table headers.
	BoldStyle = lipgloss.NewStyle().Bold(true)

	errorStyle  = lipgloss.NewStyle().Foreground(bad)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	promptStyle = titleStyle
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)
)

// Icons.
const (
	SuccessIcon = "✓"
	WarningIcon = "⚠️"
	ChartIcon   = "📊"

	errorIcon = "✗"
	infoIcon  = "ℹ️"
	titleIcon = "📋"
)

// FormatSuccess renders a ✓ line.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError renders a ✗ line.
func FormatError(message string) string {
	return errorStyle.Render(errorIcon + " " + message)
}

// FormatWarning renders a warning line.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo renders an informational line.
func FormatInfo(message string) string {
	return InfoStyle.Render(infoIcon + " " + message)
}

// FormatTitle renders a section heading.
func FormatTitle(title string) string {
	return titleStyle.MarginBottom(1).Render(titleIcon + " " + title)
}

// FormatPrompt renders an input prompt ending in an arrow.
func FormatPrompt(prompt string) string {
	return promptStyle.Render(prompt + " → ")
}

// RenderBox frames content under a bold title.
func RenderBox(title, content string) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), content))
}

// TeamColor picks a stable accent color for a team name so the same team
// renders the same way across reports.
func TeamColor(team string) lipgloss.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(team))
	return teamPalette[h.Sum32()%uint32(len(teamPalette))]
}
