package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/rules"
)

var discoveryMapping = model.ColumnMapping{
	model.FieldEdit:  "Edit",
	model.FieldNotes: "Notes",
	model.FieldState: "State",
}

func texts(items []model.UncategorizedItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Text)
		if it.ProposedCategoryID != nil {
			out = append(out, "<proposed>")
		}
	}
	return out
}

func TestDiscover_SkipsExistingAndDeduplicates(t *testing.T) {
	rows := []model.RawRow{
		{"State": "PEND", "Edit": "E100"},
		{"State": "PEND", "Edit": "E200"},
		{"State": "PEND", "Edit": "E200"},
	}
	existing := rules.Texts([]model.Rule{{Text: "E100"}})

	got := Discover(rows, discoveryMapping, existing, nil)
	assert.Equal(t, []string{"E200"}, texts(got.Edits))
	assert.Empty(t, got.Notes)
	assert.NotNil(t, got.Notes)
}

func TestDiscover_TrimsAndSorts(t *testing.T) {
	rows := []model.RawRow{
		{"State": "ONHOLD", "Edit": " Z9 ", "Notes": "waiting on auth "},
		{"State": "ONHOLD", "Edit": "A1", "Notes": "   "},
		{"State": "ONHOLD", "Edit": "Z9", "Notes": "Called provider"},
		{"State": "ONHOLD", "Edit": 42},
	}

	got := Discover(rows, discoveryMapping, nil, map[string]struct{}{"called provider": {}})
	assert.Equal(t, []string{"42", "A1", "Z9"}, texts(got.Edits))
	assert.Equal(t, []string{"Called provider", "waiting on auth"}, texts(got.Notes))
}

func TestDiscover_ExcludesNonActionable(t *testing.T) {
	rows := []model.RawRow{
		{"State": "PAID", "Edit": "E300", "Notes": "paid in full"},
		{"State": "MANAGEMENTREVIEW", "Edit": "E400"},
	}

	got := Discover(rows, discoveryMapping, nil, nil)
	assert.Equal(t, []string{"E400"}, texts(got.Edits))
	assert.Empty(t, got.Notes)
}

func TestDiscover_WithoutStateColumnConsidersEveryRow(t *testing.T) {
	m := model.ColumnMapping{model.FieldEdit: "Edit", model.FieldNotes: "Notes"}
	rows := []model.RawRow{{"Edit": "E300"}, {"Edit": "E301", "State": "PAID"}}

	got := Discover(rows, m, nil, nil)
	assert.Equal(t, []string{"E300", "E301"}, texts(got.Edits))
}

func TestDiscover_Empty(t *testing.T) {
	got := Discover(nil, discoveryMapping, nil, nil)
	assert.True(t, got.Empty())
}

func TestCheckMapping(t *testing.T) {
	require.NoError(t, CheckMapping(discoveryMapping))

	err := CheckMapping(model.ColumnMapping{model.FieldEdit: "Edit"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDiscoveryMapping)
	assert.Contains(t, common.UserMessage(err, ""), "must map both")
}

func TestQueue(t *testing.T) {
	q := NewQueue(model.RuleTypeEdit, []model.UncategorizedItem{{Text: "E200"}, {Text: "E300"}, {Text: "E400"}})
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 3, q.Pending())
	assert.Empty(t, q.Assignments())

	require.NoError(t, q.Assign(0, 7))
	require.NoError(t, q.Assign(2, 9))
	assert.Equal(t, 1, q.Pending())
	assert.Equal(t, 7, *q.Item(0).ProposedCategoryID)

	require.NoError(t, q.Clear(0))
	require.NoError(t, q.Assign(1, 8))

	got := q.Assignments()
	require.Len(t, got, 2)
	assert.Equal(t, "E300", got[0].Text)
	assert.Equal(t, 8, got[0].CategoryID)
	assert.Equal(t, "E400", got[1].Text)
	assert.Equal(t, 9, got[1].CategoryID)
	assert.Equal(t, model.RuleTypeEdit, q.RuleType())
}

func TestQueue_Errors(t *testing.T) {
	q := NewQueue(model.RuleTypeNote, []model.UncategorizedItem{{Text: "hold"}})
	assert.Error(t, q.Assign(1, 3))
	assert.Error(t, q.Assign(-1, 3))
	assert.Error(t, q.Assign(0, 0))
	assert.Error(t, q.Clear(5))
}

func TestQueue_CopiesInput(t *testing.T) {
	items := []model.UncategorizedItem{{Text: "hold"}}
	q := NewQueue(model.RuleTypeNote, items)
	require.NoError(t, q.Assign(0, 1))
	assert.Nil(t, items[0].ProposedCategoryID)
}
