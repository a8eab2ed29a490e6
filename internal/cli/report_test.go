package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/claims-triage/internal/analysis"
	"github.com/Veraticus/claims-triage/internal/discovery"
	"github.com/Veraticus/claims-triage/internal/model"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		want string
		in   float64
	}{
		{"$0.00", 0},
		{"$12.50", 12.5},
		{"$1,234.00", 1234},
		{"$1,234,567.89", 1234567.89},
		{"-$950.10", -950.1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMoney(tt.in))
	}
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(analysis.Summary{
		Metrics:    model.Metrics{TotalClaims: 3, TotalNetPayment: 1500},
		Actionable: 2,
		BySource:   map[model.CategorySource]int{model.SourceEditRule: 2},
		Categories: []analysis.CategoryCount{{Category: "Billing Error", TeamName: "Billing", Claims: 2, TopPriority: 17}},
	})

	assert.Contains(t, out, "Total claims:      3")
	assert.Contains(t, out, "$1,500.00")
	assert.Contains(t, out, "Edit Rule: 2")
	assert.Contains(t, out, "Billing Error")
}

func TestRenderQueue(t *testing.T) {
	claims := []model.ProcessedClaim{
		{ClaimID: "C1", Category: "Billing Error", PriorityScore: 17, NetPayment: 12.5, IsActionable: true},
		{ClaimID: "C2", Category: "Escalation", PriorityScore: 3, IsActionable: true},
	}

	out := RenderQueue(claims, 1)
	assert.Contains(t, out, "C1")
	assert.NotContains(t, out, "C2")
	assert.Contains(t, out, "1 more claims not shown")
	assert.Contains(t, out, "$12.50")

	assert.Contains(t, RenderQueue(nil, 0), "No actionable claims")
}

func TestRenderDiscovery(t *testing.T) {
	assert.Contains(t, RenderDiscovery(discovery.Result{}), "already covered")

	out := RenderDiscovery(discovery.Result{
		Edits: []model.UncategorizedItem{{Text: "E200"}},
	})
	assert.Contains(t, out, "New edits")
	assert.Contains(t, out, "E200")
}

func TestRenderCategoryPicker(t *testing.T) {
	out := RenderCategoryPicker(GroupByTeam(testCategories()))
	assert.Contains(t, out, "1. Billing Error")
	assert.Contains(t, out, "4. On Hold")
	assert.Contains(t, out, "[L1]")
}

func TestRenderAdminTables(t *testing.T) {
	assert.Contains(t, RenderTeams([]model.Team{{ID: 1, Name: "Billing"}}), "Billing")
	assert.Contains(t, RenderCategories([]model.Category{{ID: 2, Name: "Escalation", TeamName: "Escalations"}}), "Escalation")
	assert.Contains(t, RenderRules([]model.Rule{{Text: "E100", CategoryName: "Billing Error"}}), "E100")
	assert.Contains(t, RenderClients([]model.ClientConfig{{ID: 1, Name: "Acme", Mapping: model.ColumnMapping{model.FieldEdit: "Edit"}}}), "edit")
	assert.Contains(t, RenderRules(nil), "No rules")
}
