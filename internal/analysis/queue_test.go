package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/claims-triage/internal/model"
)

func queueClaims() []model.ProcessedClaim {
	return []model.ProcessedClaim{
		{ClaimID: "A", Category: "Billing Error", TeamName: "Billing", PriorityScore: 17, Age: 10, IsActionable: true, CategorySource: model.SourceEditRule},
		{ClaimID: "B", Category: model.NotApplicable, TeamName: model.NotApplicable, PriorityScore: -1, CategorySource: model.SourceNotApplicable},
		{ClaimID: "C", Category: "Escalation", TeamName: "Escalations", PriorityScore: 100, Age: 2, IsActionable: true, CategorySource: model.SourceNoteRule},
		{ClaimID: "D", Category: "Billing Error", TeamName: "Billing", PriorityScore: 17, Age: 30, IsActionable: true, CategorySource: model.SourceEditRule},
		{ClaimID: "E", Category: model.DefaultCategory, TeamName: model.DefaultTeam, PriorityScore: 3, IsActionable: true, CategorySource: model.SourceDefault},
	}
}

func claimIDs(claims []model.ProcessedClaim) []string {
	ids := make([]string, 0, len(claims))
	for _, c := range claims {
		ids = append(ids, c.ClaimID)
	}
	return ids
}

func TestWorkQueue(t *testing.T) {
	tests := []struct {
		name string
		opts QueueOptions
		want []string
	}{
		{name: "default priority descending, stable", opts: QueueOptions{}, want: []string{"C", "A", "D", "E"}},
		{name: "priority ascending", opts: QueueOptions{SortKey: SortByPriority, Ascending: true}, want: []string{"E", "A", "D", "C"}},
		{name: "category filter", opts: QueueOptions{Category: "Billing Error"}, want: []string{"A", "D"}},
		{name: "age descending", opts: QueueOptions{SortKey: SortByAge}, want: []string{"D", "A", "C", "E"}},
		{name: "claim id ascending", opts: QueueOptions{SortKey: SortByClaimID, Ascending: true}, want: []string{"A", "C", "D", "E"}},
		{name: "team ascending", opts: QueueOptions{SortKey: SortByTeam, Ascending: true}, want: []string{"A", "D", "C", "E"}},
		{name: "unknown category filter", opts: QueueOptions{Category: "Nope"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, claimIDs(WorkQueue(queueClaims(), tt.opts)))
		})
	}
}

func TestWorkQueue_DoesNotMutateInput(t *testing.T) {
	claims := queueClaims()
	_ = WorkQueue(claims, QueueOptions{})
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, claimIDs(claims))
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortByPriority, k)

	k, err = ParseSortKey("AGE")
	require.NoError(t, err)
	assert.Equal(t, SortByAge, k)

	_, err = ParseSortKey("color")
	assert.Error(t, err)
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"Billing Error", "Escalation", model.DefaultCategory}, Categories(queueClaims()))
	assert.Empty(t, Categories(nil))
}

func TestSummarize(t *testing.T) {
	s := Summarize(Result{Claims: queueClaims(), Metrics: model.Metrics{TotalClaims: 5}})

	assert.NotEmpty(t, s.RunID)
	assert.Equal(t, 4, s.Actionable)
	assert.Equal(t, 1, s.NonActionable)
	assert.Equal(t, 5, s.Metrics.TotalClaims)
	assert.Equal(t, map[model.CategorySource]int{
		model.SourceEditRule: 2,
		model.SourceNoteRule: 1,
		model.SourceDefault:  1,
	}, s.BySource)

	require.Len(t, s.Categories, 3)
	assert.Equal(t, "Billing Error", s.Categories[0].Category)
	assert.Equal(t, 2, s.Categories[0].Claims)
	assert.Equal(t, 17, s.Categories[0].TopPriority)
	assert.Equal(t, "Escalation", s.Categories[1].Category)
	assert.Equal(t, model.DefaultCategory, s.Categories[2].Category)
}

func TestSummarize_UniqueRunIDs(t *testing.T) {
	assert.NotEqual(t, Summarize(Result{}).RunID, Summarize(Result{}).RunID)
}

func TestQueueRow(t *testing.T) {
	c := model.ProcessedClaim{
		ClaimID:         "C1",
		Category:        "Billing Error",
		TeamName:        "Billing",
		CategorySource:  model.SourceEditRule,
		State:           "PEND",
		Status:          "OPEN",
		Age:             10,
		NetPayment:      12.5,
		ProviderName:    "Acme Clinic",
		PriorityScore:   17,
		SendToL1Monitor: true,
	}

	row := QueueRow(c)
	require.Len(t, row, len(QueueHeaders()))
	assert.Equal(t, 17, row[0])
	assert.Equal(t, "C1", row[1])
	assert.Equal(t, "Edit Rule", row[4])
	assert.Equal(t, 12.5, row[8])
	assert.Equal(t, "Yes", row[10])
	assert.Equal(t, "Priority", QueueHeaders()[0])
}
