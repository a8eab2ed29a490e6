// Package classification assigns a category to a claim from a client's edit and note rules.
package classification

import (
	"log/slog"
	"strings"

	"github.com/Veraticus/claims-triage/internal/mapping"
	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/rules"
)

// Result is the outcome of classifying one claim.
type Result struct {
	Category        string
	TeamName        string
	Source          model.CategorySource
	CategoryID      int
	SendToL1Monitor bool
}

// Default is the result for a claim no rule matched.
var Default = Result{
	Category:        model.DefaultCategory,
	TeamName:        model.DefaultTeam,
	Source:          model.SourceDefault,
	SendToL1Monitor: false,
}

// Classify picks a category for row. The first tier that matches wins:
//  1. the edit code equals an edit rule's text exactly (case sensitive);
//  2. the lower-cased notes contain a note keyword, longest keywords tried first;
//  3. otherwise Default.
//
// Missing or blank fields simply fall through to the next tier.
func Classify(row model.RawRow, m model.ColumnMapping, edits *rules.EditIndex, notes []rules.NoteRule) Result {
	if edit := mapping.String(row, model.FieldEdit, m, ""); edit != "" {
		if r, ok := edits.Lookup(edit); ok {
			return fromRule(r, model.SourceEditRule)
		}
	}

	if text := strings.ToLower(mapping.String(row, model.FieldNotes, m, "")); text != "" {
		for _, nr := range notes {
			if strings.Contains(text, nr.Keyword) {
				return fromRule(nr.Rule, model.SourceNoteRule)
			}
		}
	}

	return Default
}

func fromRule(r model.Rule, source model.CategorySource) Result {
	return Result{
		Category:        r.CategoryName,
		TeamName:        r.TeamName,
		Source:          source,
		CategoryID:      r.CategoryID,
		SendToL1Monitor: r.SendToL1Monitor,
	}
}

// Classifier holds a client's rules prepared for repeated lookups.
type Classifier struct {
	edits *rules.EditIndex
	notes []rules.NoteRule
}

// New prepares a rule set. The returned Classifier is read-only and safe to share.
func New(rs model.RuleSet, logger *slog.Logger) *Classifier {
	return &Classifier{
		edits: rules.NewEditIndex(rs.EditRules, logger),
		notes: rules.SortNoteRules(rs.NoteRules),
	}
}

// Classify classifies row with the prepared rules.
func (c *Classifier) Classify(row model.RawRow, m model.ColumnMapping) Result {
	return Classify(row, m, c.edits, c.notes)
}

// EditRuleCount returns the number of distinct edit codes.
func (c *Classifier) EditRuleCount() int {
	return c.edits.Len()
}

// NoteRuleCount returns the number of usable note keywords.
func (c *Classifier) NoteRuleCount() int {
	return len(c.notes)
}
