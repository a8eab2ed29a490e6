package analysis

import "github.com/Veraticus/claims-triage/internal/model"

// Column is one work-queue column as rendered by the exporters and the terminal views.
type Column struct {
	Value   func(model.ProcessedClaim) any
	Header  string
	Key     SortKey
	Width   float64
	Numeric bool
}

// QueueColumns is the work-queue layout shared by every renderer.
var QueueColumns = []Column{
	{Header: "Priority", Key: SortByPriority, Width: 10, Numeric: true,
		Value: func(c model.ProcessedClaim) any { return c.PriorityScore }},
	{Header: "Claim ID", Key: SortByClaimID, Width: 16,
		Value: func(c model.ProcessedClaim) any { return c.ClaimID }},
	{Header: "Category", Key: SortByCategory, Width: 24,
		Value: func(c model.ProcessedClaim) any { return c.Category }},
	{Header: "Team", Key: SortByTeam, Width: 20,
		Value: func(c model.ProcessedClaim) any { return c.TeamName }},
	{Header: "Source", Width: 12,
		Value: func(c model.ProcessedClaim) any { return string(c.CategorySource) }},
	{Header: "State", Width: 18,
		Value: func(c model.ProcessedClaim) any { return c.State }},
	{Header: "Status", Width: 12,
		Value: func(c model.ProcessedClaim) any { return c.Status }},
	{Header: "Age", Key: SortByAge, Width: 8, Numeric: true,
		Value: func(c model.ProcessedClaim) any { return c.Age }},
	{Header: "Net Payment", Key: SortByNetPayment, Width: 14, Numeric: true,
		Value: func(c model.ProcessedClaim) any { return c.NetPayment }},
	{Header: "Provider", Key: SortByProvider, Width: 28,
		Value: func(c model.ProcessedClaim) any { return c.ProviderName }},
	{Header: "L1 Monitor", Width: 11,
		Value: func(c model.ProcessedClaim) any {
			if c.SendToL1Monitor {
				return "Yes"
			}
			return "No"
		}},
}

// QueueHeaders returns the header text of QueueColumns.
func QueueHeaders() []string {
	out := make([]string, len(QueueColumns))
	for i, col := range QueueColumns {
		out[i] = col.Header
	}
	return out
}

// QueueRow renders one claim in QueueColumns order.
func QueueRow(c model.ProcessedClaim) []any {
	out := make([]any, len(QueueColumns))
	for i, col := range QueueColumns {
		out[i] = col.Value(c)
	}
	return out
}
