// Package themes defines the color themes of the work-queue browser.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Bold          lipgloss.Style
	Header        lipgloss.Style
	Selected      lipgloss.Style
	Detail        lipgloss.Style
	StatusBar     lipgloss.Style
	StatusError   lipgloss.Style
	Primary       lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	HighPriority  lipgloss.Color
	DenyHighlight lipgloss.Color
}

func build(primary, muted, border, foreground, selectedBg, high, deny lipgloss.Color) Theme {
	return Theme{
		Primary:       primary,
		Muted:         muted,
		Border:        border,
		HighPriority:  high,
		DenyHighlight: deny,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
		Subtitle: lipgloss.NewStyle().
			Foreground(muted),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(foreground),
		Header: lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(border).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Background(selectedBg).
			Foreground(foreground).
			Bold(true),
		Detail: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(1, 2),
		StatusBar: lipgloss.NewStyle().
			Foreground(muted),
		StatusError: lipgloss.NewStyle().
			Foreground(deny).
			Bold(true),
	}
}

// Default is the default theme.
var Default = build("#5B8DEF", "#737373", "#404040", "#fafafa", "#2c4a8a", "#f59e0b", "#ef4444")

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = build("#cba6f7", "#6c7086", "#45475a", "#cdd6f4", "#585b70", "#f9e2af", "#f38ba8")

// ByName returns the named theme, falling back to Default.
func ByName(name string) Theme {
	switch name {
	case "catppuccin", "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}
