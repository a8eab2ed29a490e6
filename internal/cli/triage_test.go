package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/claims-triage/internal/discovery"
	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/service"
)

// Picker order: Billing/Billing Error (1), Escalations/Escalation (2), Holds/Management Hold (3), Holds/On Hold (4).
func testCategories() []model.Category {
	return []model.Category{
		{ID: 30, Name: "On Hold", TeamName: "Holds"},
		{ID: 10, Name: "Billing Error", TeamName: "Billing", SendToL1Monitor: true},
		{ID: 40, Name: "Management Hold", TeamName: "Holds"},
		{ID: 20, Name: "Escalation", TeamName: "Escalations"},
	}
}

func testQueue() *discovery.Queue {
	return discovery.NewQueue(model.RuleTypeEdit, []model.UncategorizedItem{
		{Text: "E200"}, {Text: "E300"}, {Text: "E400"},
	})
}

func runTriage(t *testing.T, input string, q *discovery.Queue) (TriageStats, string) {
	t.Helper()
	var out bytes.Buffer
	p := NewTriagePrompter(strings.NewReader(input), &out)
	p.DisableProgress()
	stats, err := p.Triage(context.Background(), q, testCategories())
	require.NoError(t, err)
	return stats, out.String()
}

func TestGroupByTeam(t *testing.T) {
	groups := GroupByTeam(testCategories())

	require.Len(t, groups, 3)
	assert.Equal(t, "Billing", groups[0].Team)
	assert.Equal(t, "Holds", groups[2].Team)
	require.Len(t, groups[2].Categories, 2)
	assert.Equal(t, "Management Hold", groups[2].Categories[0].Name)
	assert.Equal(t, "On Hold", groups[2].Categories[1].Name)
}

func TestTriage_AssignSkip(t *testing.T) {
	q := testQueue()
	stats, out := runTriage(t, "1\ns\n4\n", q)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Assigned)
	assert.Equal(t, 1, stats.Skipped)
	assert.False(t, stats.Stopped)
	assert.Equal(t, []service.RuleAssignment{
		{Text: "E200", CategoryID: 10},
		{Text: "E400", CategoryID: 30},
	}, q.Assignments())
	assert.Contains(t, out, "E200 → Billing Error (Billing)")
}

func TestTriage_BackReassigns(t *testing.T) {
	q := testQueue()
	stats, _ := runTriage(t, "1\nb\n2\n3\n3\n", q)

	assert.Equal(t, 3, stats.Assigned)
	assert.Equal(t, []service.RuleAssignment{
		{Text: "E200", CategoryID: 20},
		{Text: "E300", CategoryID: 40},
		{Text: "E400", CategoryID: 40},
	}, q.Assignments())
}

func TestTriage_InvalidInputReprompts(t *testing.T) {
	q := testQueue()
	stats, out := runTriage(t, "9\nabc\n2\nq\n", q)

	assert.Contains(t, out, "Enter a number between 1 and 4.")
	assert.True(t, stats.Stopped)
	assert.Equal(t, 1, stats.Assigned)
	assert.Equal(t, 2, stats.Skipped)
}

func TestTriage_EOFStops(t *testing.T) {
	q := testQueue()
	stats, _ := runTriage(t, "1\n", q)

	assert.True(t, stats.Stopped)
	assert.Equal(t, 1, stats.Assigned)
}

func TestTriage_EmptyQueue(t *testing.T) {
	stats, out := runTriage(t, "", discovery.NewQueue(model.RuleTypeNote, nil))
	assert.Zero(t, stats.Total)
	assert.Empty(t, out)
}

func TestTriage_NoCategories(t *testing.T) {
	p := NewTriagePrompter(strings.NewReader("1\n"), &bytes.Buffer{})
	_, err := p.Triage(context.Background(), testQueue(), nil)
	assert.Error(t, err)
}

func TestTriage_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewTriagePrompter(strings.NewReader("1\n"), &bytes.Buffer{})
	p.DisableProgress()
	_, err := p.Triage(ctx, testQueue(), testCategories())
	assert.ErrorIs(t, err, ErrInputCancelled)
}

func TestShowCompletion(t *testing.T) {
	var out bytes.Buffer
	p := NewTriagePrompter(strings.NewReader(""), &out)
	p.ShowCompletion(model.RuleTypeNote, TriageStats{Total: 5, Assigned: 3, Skipped: 2})

	assert.Contains(t, out.String(), "Triage Complete")
	assert.Contains(t, out.String(), "Assigned: 3")
	assert.Contains(t, out.String(), "Left for later: 2")
}
