package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/claims-triage/internal/analysis"
	"github.com/Veraticus/claims-triage/internal/model"
)

func claims() []model.ProcessedClaim {
	return []model.ProcessedClaim{
		{ClaimID: "A", Category: "Billing Error", TeamName: "Billing", PriorityScore: 17, Age: 10, IsActionable: true,
			Original: model.RawRow{"Claim #": "A", "Edit": "E100"}},
		{ClaimID: "B", Category: model.NotApplicable, PriorityScore: -1},
		{ClaimID: "C", Category: "Escalation", TeamName: "Escalations", PriorityScore: 40, Age: 2, IsActionable: true},
		{ClaimID: "D", Category: "Billing Error", TeamName: "Billing", PriorityScore: 5, Age: 30, IsActionable: true},
	}
}

func ids(cs []model.ProcessedClaim) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ClaimID
	}
	return out
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func TestNew_DefaultsToPriorityDescending(t *testing.T) {
	m := New(claims(), model.Metrics{TotalClaims: 4}, Options{})

	assert.Equal(t, []string{"C", "A", "D"}, ids(m.Queue()))
	assert.Equal(t, analysis.SortByPriority, m.SortKey())
	assert.Empty(t, m.Category())

	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "C", sel.ClaimID)
}

func TestNew_Options(t *testing.T) {
	m := New(claims(), model.Metrics{}, Options{Category: "Billing Error", SortKey: analysis.SortByAge, Ascending: true})

	assert.Equal(t, "Billing Error", m.Category())
	assert.Equal(t, []string{"A", "D"}, ids(m.Queue()))
}

func TestUpdate_FilterCycle(t *testing.T) {
	m := New(claims(), model.Metrics{}, Options{})

	m = press(t, m, "f")
	assert.Equal(t, "Billing Error", m.Category())
	assert.Equal(t, []string{"A", "D"}, ids(m.Queue()))

	m = press(t, m, "f")
	assert.Equal(t, "Escalation", m.Category())

	m = press(t, m, "f")
	assert.Empty(t, m.Category())
	assert.Len(t, m.Queue(), 3)

	m = press(t, m, "f", "a")
	assert.Empty(t, m.Category())
}

func TestUpdate_SortAndReverse(t *testing.T) {
	m := New(claims(), model.Metrics{}, Options{})

	m = press(t, m, "r")
	assert.Equal(t, []string{"D", "A", "C"}, ids(m.Queue()))

	m = press(t, m, "s")
	assert.Equal(t, analysis.SortByCategory, m.SortKey())
	assert.Equal(t, []string{"A", "D", "C"}, ids(m.Queue()))
}

func TestUpdate_NavigationAndDetail(t *testing.T) {
	m := New(claims(), model.Metrics{}, Options{})

	m = press(t, m, "down")
	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "A", sel.ClaimID)

	m = press(t, m, "enter")
	view := m.View()
	assert.Contains(t, view, "Claim A")
	assert.Contains(t, view, "Edit: E100")
}

func TestUpdate_Quit(t *testing.T) {
	m := New(claims(), model.Metrics{}, Options{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestView_Empty(t *testing.T) {
	m := New(nil, model.Metrics{}, Options{Title: "Acme"})
	view := m.View()
	assert.Contains(t, view, "Acme")
	assert.Contains(t, view, "No actionable claims.")
	_, ok := m.Selected()
	assert.False(t, ok)
}

func TestWindowResize(t *testing.T) {
	m := New(claims(), model.Metrics{}, Options{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	assert.Equal(t, 120, m.width)
	assert.LessOrEqual(t, m.table.Height(), 40-chrome)
	assert.Positive(t, m.table.Height())
}
