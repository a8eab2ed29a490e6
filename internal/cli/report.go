package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Veraticus/claims-triage/internal/analysis"
	"github.com/Veraticus/claims-triage/internal/discovery"
	"github.com/Veraticus/claims-triage/internal/model"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(SubtleColor)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return BoldStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// RenderCategoryPicker lists categories numbered from 1, grouped under their team.
func RenderCategoryPicker(groups []CategoryGroup) string {
	var b strings.Builder
	n := 1
	for gi, g := range groups {
		if gi > 0 {
			b.WriteString("\n")
		}
		team := g.Team
		if team == "" {
			team = model.DefaultTeam
		}
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(TeamColor(team)).Render(team))
		b.WriteString("\n")
		for _, c := range g.Categories {
			fmt.Fprintf(&b, "  %3d. %s", n, c.Name)
			if c.SendToL1Monitor {
				b.WriteString(" " + SubtleStyle.Render("[L1]"))
			}
			b.WriteString("\n")
			n++
		}
	}
	return RenderBox("Categories", strings.TrimRight(b.String(), "\n"))
}

// RenderSummary renders the analysis totals and per-category counts.
func RenderSummary(s analysis.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total claims:      %d\n", s.Metrics.TotalClaims)
	fmt.Fprintf(&b, "Total net payment: %s\n", formatMoney(s.Metrics.TotalNetPayment))
	fmt.Fprintf(&b, "Actionable:        %d\n", s.Actionable)
	fmt.Fprintf(&b, "Not actionable:    %d\n", s.NonActionable)

	if len(s.BySource) > 0 {
		b.WriteString("\nCategorized by:\n")
		for _, src := range []model.CategorySource{model.SourceEditRule, model.SourceNoteRule, model.SourceDefault} {
			if n := s.BySource[src]; n > 0 {
				fmt.Fprintf(&b, "  • %s: %d\n", src, n)
			}
		}
	}

	out := RenderBox(ChartIcon+" Analysis Summary", strings.TrimRight(b.String(), "\n"))
	if len(s.Categories) == 0 {
		return out
	}

	t := newTable("Category", "Team", "Claims", "Top Priority", "L1")
	for _, c := range s.Categories {
		t.Row(c.Category, c.TeamName, strconv.Itoa(c.Claims), strconv.Itoa(c.TopPriority), yesNo(c.SendToL1Monitor))
	}
	return out + "\n" + t.Render()
}

// RenderQueue renders up to limit claims of a work queue; limit <= 0 renders all.
func RenderQueue(claims []model.ProcessedClaim, limit int) string {
	if len(claims) == 0 {
		return FormatInfo("No actionable claims.")
	}
	shown := claims
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	t := newTable(analysis.QueueHeaders()...)
	for _, c := range shown {
		t.Row(queueCells(c)...)
	}
	out := t.Render()
	if len(shown) < len(claims) {
		out += "\n" + SubtleStyle.Render(fmt.Sprintf("… %d more claims not shown", len(claims)-len(shown)))
	}
	return out
}

func queueCells(c model.ProcessedClaim) []string {
	row := analysis.QueueRow(c)
	cells := make([]string, len(row))
	for i, v := range row {
		switch x := v.(type) {
		case float64:
			cells[i] = formatMoney(x)
		default:
			cells[i] = fmt.Sprint(x)
		}
	}
	return cells
}

func formatMoney(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")
	for i := len(whole) - 3; i > 0; i -= 3 {
		whole = whole[:i] + "," + whole[i:]
	}
	if neg {
		return "-$" + whole + "." + frac
	}
	return "$" + whole + "." + frac
}

// RenderDiscovery lists the values discovery found.
func RenderDiscovery(r discovery.Result) string {
	if r.Empty() {
		return FormatSuccess("Every edit and note value is already covered by a rule.")
	}
	var b strings.Builder
	section := func(title string, items []model.UncategorizedItem) {
		fmt.Fprintf(&b, "%s (%d)\n", BoldStyle.Render(title), len(items))
		for _, it := range items {
			fmt.Fprintf(&b, "  • %s\n", it.Text)
		}
	}
	section("New edits", r.Edits)
	b.WriteString("\n")
	section("New notes", r.Notes)
	return RenderBox("Rule Discovery", strings.TrimRight(b.String(), "\n"))
}

// RenderRules renders a rule list.
func RenderRules(rules []model.Rule) string {
	if len(rules) == 0 {
		return FormatInfo("No rules.")
	}
	t := newTable("Text", "Category", "Team", "L1")
	for _, r := range rules {
		t.Row(r.Text, r.CategoryName, r.TeamName, yesNo(r.SendToL1Monitor))
	}
	return t.Render()
}

// RenderTeams renders the team list.
func RenderTeams(teams []model.Team) string {
	if len(teams) == 0 {
		return FormatInfo("No teams.")
	}
	t := newTable("ID", "Team")
	for _, tm := range teams {
		t.Row(strconv.Itoa(tm.ID), tm.Name)
	}
	return t.Render()
}

// RenderCategories renders the category list.
func RenderCategories(categories []model.Category) string {
	if len(categories) == 0 {
		return FormatInfo("No categories.")
	}
	t := newTable("ID", "Category", "Team", "L1")
	for _, c := range categories {
		t.Row(strconv.Itoa(c.ID), c.Name, c.TeamName, yesNo(c.SendToL1Monitor))
	}
	return t.Render()
}

// RenderClients renders client configurations with their mapped fields.
func RenderClients(configs []model.ClientConfig) string {
	if len(configs) == 0 {
		return FormatInfo("No client configurations.")
	}
	t := newTable("ID", "Client", "Mapped Fields", "Teams")
	for _, c := range configs {
		var mapped []string
		for _, f := range model.LogicalFields {
			if _, ok := c.Mapping[f]; ok {
				mapped = append(mapped, f)
			}
		}
		t.Row(strconv.Itoa(c.ID), c.Name, strings.Join(mapped, ", "), strconv.Itoa(len(c.TeamIDs)))
	}
	return t.Render()
}
