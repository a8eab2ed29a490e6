package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the work-queue keyboard shortcuts. Row navigation is
// handled by the table's own bindings.
type KeyMap struct {
	NextSort     key.Binding
	Reverse      key.Binding
	NextFilter   key.Binding
	ClearFilter  key.Binding
	ToggleDetail key.Binding
	Help         key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "next sort column"),
		),
		Reverse: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reverse order"),
		),
		NextFilter: key.NewBinding(
			key.WithKeys("f", "tab"),
			key.WithHelp("f/tab", "next category"),
		),
		ClearFilter: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "all categories"),
		),
		ToggleDetail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "claim detail"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextSort, k.NextFilter, k.ToggleDetail, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextSort, k.Reverse},
		{k.NextFilter, k.ClearFilter},
		{k.ToggleDetail, k.Help, k.Quit},
	}
}
