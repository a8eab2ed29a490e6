package classification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/claims-triage/internal/model"
)

var testMapping = model.ColumnMapping{
	model.FieldEdit:  "EDIT",
	model.FieldNotes: "NOTES",
	model.FieldState: "STATE",
}

func TestClassify(t *testing.T) {
	ruleSet := model.RuleSet{
		EditRules: []model.Rule{
			{Text: "E100", CategoryID: 1, CategoryName: "Billing Error", TeamName: "Billing", SendToL1Monitor: true},
		},
		NoteRules: []model.Rule{
			{Text: "urgent", CategoryID: 2, CategoryName: "Escalation", TeamName: "Escalations"},
			{Text: "hold", CategoryID: 3, CategoryName: "On Hold", TeamName: "Holds"},
			{Text: "management hold", CategoryID: 4, CategoryName: "Management Hold", TeamName: "Management"},
		},
	}
	c := New(ruleSet, nil)

	tests := []struct {
		row          model.RawRow
		name         string
		wantCategory string
		wantTeam     string
		wantSource   model.CategorySource
		wantL1       bool
	}{
		{
			name:         "edit rule wins over note rule",
			row:          model.RawRow{"EDIT": "E100", "NOTES": "urgent review needed"},
			wantCategory: "Billing Error",
			wantTeam:     "Billing",
			wantSource:   model.SourceEditRule,
			wantL1:       true,
		},
		{
			name:         "note rule when edit unknown",
			row:          model.RawRow{"EDIT": "E999", "NOTES": "urgent review needed"},
			wantCategory: "Escalation",
			wantTeam:     "Escalations",
			wantSource:   model.SourceNoteRule,
		},
		{
			name:         "notes matched case insensitively",
			row:          model.RawRow{"NOTES": "URGENT: call provider"},
			wantCategory: "Escalation",
			wantTeam:     "Escalations",
			wantSource:   model.SourceNoteRule,
		},
		{
			name:         "longer keyword beats shorter one",
			row:          model.RawRow{"NOTES": "Placed on Management Hold pending review"},
			wantCategory: "Management Hold",
			wantTeam:     "Management",
			wantSource:   model.SourceNoteRule,
		},
		{
			name:         "short keyword still matches alone",
			row:          model.RawRow{"NOTES": "on hold"},
			wantCategory: "On Hold",
			wantTeam:     "Holds",
			wantSource:   model.SourceNoteRule,
		},
		{
			name:         "edit codes are case sensitive",
			row:          model.RawRow{"EDIT": "e100"},
			wantCategory: model.DefaultCategory,
			wantTeam:     model.DefaultTeam,
			wantSource:   model.SourceDefault,
		},
		{
			name:         "nothing mapped falls to default",
			row:          model.RawRow{},
			wantCategory: model.DefaultCategory,
			wantTeam:     model.DefaultTeam,
			wantSource:   model.SourceDefault,
		},
		{
			name:         "numeric edit cell",
			row:          model.RawRow{"EDIT": 100, "NOTES": "nothing relevant"},
			wantCategory: model.DefaultCategory,
			wantTeam:     model.DefaultTeam,
			wantSource:   model.SourceDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.row, testMapping)
			assert.Equal(t, tt.wantCategory, got.Category)
			assert.Equal(t, tt.wantTeam, got.TeamName)
			assert.Equal(t, tt.wantSource, got.Source)
			assert.Equal(t, tt.wantL1, got.SendToL1Monitor)
		})
	}
}

func TestClassify_EditValueIsTrimmed(t *testing.T) {
	c := New(model.RuleSet{EditRules: []model.Rule{{Text: "E200", CategoryName: "Coding"}}}, nil)
	got := c.Classify(model.RawRow{"EDIT": " E200 "}, testMapping)
	assert.Equal(t, "Coding", got.Category)
}

func TestClassify_UnmappedColumns(t *testing.T) {
	c := New(model.RuleSet{
		EditRules: []model.Rule{{Text: "E100", CategoryName: "Billing Error"}},
		NoteRules: []model.Rule{{Text: "urgent", CategoryName: "Escalation"}},
	}, nil)

	got := c.Classify(model.RawRow{"EDIT": "E100", "NOTES": "urgent"}, model.ColumnMapping{})
	assert.Equal(t, Default, got)
}

func TestClassifier_Counts(t *testing.T) {
	c := New(model.RuleSet{
		EditRules: []model.Rule{{Text: "A"}, {Text: "A"}, {Text: "B"}},
		NoteRules: []model.Rule{{Text: "x"}, {Text: ""}},
	}, nil)
	assert.Equal(t, 2, c.EditRuleCount())
	assert.Equal(t, 1, c.NoteRuleCount())
}
