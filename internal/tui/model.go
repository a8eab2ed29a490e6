// Package tui implements the interactive work-queue browser shown by
// `triage analyze --interactive`.
package tui

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/claims-triage/internal/analysis"
	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/tui/themes"
)

// chrome is the number of lines around the table: title, status, help and margins.
const chrome = 7

// Options configures the initial view.
type Options struct {
	Theme     themes.Theme
	Title     string
	Category  string
	SortKey   analysis.SortKey
	Ascending bool
}

// Model is the bubbletea model of the work-queue browser.
type Model struct {
	theme      themes.Theme
	help       help.Model
	keymap     KeyMap
	title      string
	table      table.Model
	all        []model.ProcessedClaim
	queue      []model.ProcessedClaim
	categories []string
	metrics    model.Metrics
	filter     int
	sortIdx    int
	width      int
	height     int
	ascending  bool
	showDetail bool
}

// New builds a browser over the claims of one analysis run.
func New(claims []model.ProcessedClaim, metrics model.Metrics, opts Options) Model {
	if opts.Title == "" {
		opts.Title = "Work Queue"
	}
	if opts.Theme.Primary == "" {
		opts.Theme = themes.Default
	}

	m := Model{
		theme:      opts.Theme,
		help:       help.New(),
		keymap:     DefaultKeyMap(),
		title:      opts.Title,
		all:        claims,
		metrics:    metrics,
		categories: analysis.Categories(claims),
		filter:     -1,
		ascending:  opts.Ascending,
		height:     24,
	}

	if i := slices.Index(m.categories, opts.Category); i >= 0 {
		m.filter = i
	}
	if i := slices.Index(analysis.SortKeys, opts.SortKey); i >= 0 {
		m.sortIdx = i
	}

	styles := table.DefaultStyles()
	styles.Header = m.theme.Header
	styles.Selected = m.theme.Selected

	m.table = table.New(
		table.WithFocused(true),
		table.WithHeight(m.height-chrome),
		table.WithStyles(styles),
	)
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(3, msg.Height-chrome))
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keymap.NextSort):
			m.sortIdx = (m.sortIdx + 1) % len(analysis.SortKeys)
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keymap.Reverse):
			m.ascending = !m.ascending
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keymap.NextFilter):
			if len(m.categories) > 0 {
				m.filter++
				if m.filter >= len(m.categories) {
					m.filter = -1
				}
				m.refresh()
			}
			return m, nil
		case key.Matches(msg, m.keymap.ClearFilter):
			m.filter = -1
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keymap.ToggleDetail):
			m.showDetail = !m.showDetail
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// refresh rebuilds the visible queue from the current filter and sort.
func (m *Model) refresh() {
	m.queue = analysis.WorkQueue(m.all, analysis.QueueOptions{
		Category:  m.Category(),
		SortKey:   m.SortKey(),
		Ascending: m.ascending,
	})

	arrow := "▼"
	if m.ascending {
		arrow = "▲"
	}
	cols := make([]table.Column, len(analysis.QueueColumns))
	for i, c := range analysis.QueueColumns {
		title := c.Header
		if c.Key != "" && c.Key == m.SortKey() {
			title += " " + arrow
		}
		cols[i] = table.Column{Title: title, Width: int(c.Width)}
	}

	rows := make([]table.Row, len(m.queue))
	for i, c := range m.queue {
		rows[i] = cells(c)
	}

	// Rows must shrink before the column count changes.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) || m.table.Cursor() < 0 {
		m.table.SetCursor(0)
	}
}

func cells(c model.ProcessedClaim) table.Row {
	row := analysis.QueueRow(c)
	out := make(table.Row, len(row))
	for i, v := range row {
		if f, ok := v.(float64); ok {
			out[i] = fmt.Sprintf("%.2f", f)
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

// Category is the active category filter; empty means all.
func (m Model) Category() string {
	if m.filter < 0 || m.filter >= len(m.categories) {
		return ""
	}
	return m.categories[m.filter]
}

// SortKey is the active sort column.
func (m Model) SortKey() analysis.SortKey {
	return analysis.SortKeys[m.sortIdx]
}

// Queue returns the claims currently shown, in display order.
func (m Model) Queue() []model.ProcessedClaim {
	return m.queue
}

// Selected returns the claim under the cursor.
func (m Model) Selected() (model.ProcessedClaim, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.queue) {
		return model.ProcessedClaim{}, false
	}
	return m.queue[i], true
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.Title.Render(m.title))
	b.WriteString("  ")
	b.WriteString(m.theme.Subtitle.Render(fmt.Sprintf("%d claims analyzed, net payment %.2f",
		m.metrics.TotalClaims, m.metrics.TotalNetPayment)))
	b.WriteString("\n")

	category := m.Category()
	if category == "" {
		category = "All categories"
	}
	order := "descending"
	if m.ascending {
		order = "ascending"
	}
	b.WriteString(m.theme.StatusBar.Render(fmt.Sprintf("%s · %d in queue · sorted by %s, %s",
		category, len(m.queue), m.SortKey(), order)))
	b.WriteString("\n\n")

	if len(m.queue) == 0 {
		b.WriteString(m.theme.Subtitle.Render("No actionable claims."))
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")

	if m.showDetail {
		if c, ok := m.Selected(); ok {
			b.WriteString(m.detail(c))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.help.View(m.keymap))
	return b.String()
}

func (m Model) detail(c model.ProcessedClaim) string {
	var lines []string
	lines = append(lines,
		m.theme.Bold.Render("Claim "+c.ClaimID),
		fmt.Sprintf("Category: %s (%s) via %s", c.Category, c.TeamName, c.CategorySource),
		fmt.Sprintf("Priority: %d", c.PriorityScore),
	)
	if c.SendToL1Monitor {
		lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.HighPriority).Render("Send to L1 monitor"))
	}

	headers := make([]string, 0, len(c.Original))
	for h := range c.Original {
		headers = append(headers, h)
	}
	sort.Strings(headers)
	if len(headers) > 0 {
		lines = append(lines, "")
	}
	for _, h := range headers {
		lines = append(lines, fmt.Sprintf("%s: %v", h, c.Original[h]))
	}
	return m.theme.Detail.Render(strings.Join(lines, "\n"))
}
