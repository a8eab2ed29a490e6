// Package discovery proposes new edit and note rules from spreadsheet values
// that no existing rule covers, and tracks the human triage of those proposals.
package discovery

import (
	"fmt"
	"slices"

	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/mapping"
	"github.com/Veraticus/claims-triage/internal/model"
)

// Result lists the uncovered edit codes and note texts, each sorted.
type Result struct {
	Edits []model.UncategorizedItem `json:"edits"`
	Notes []model.UncategorizedItem `json:"notes"`
}

// Empty reports whether nothing new was found.
func (r Result) Empty() bool {
	return len(r.Edits) == 0 && len(r.Notes) == 0
}

// CheckMapping reports whether a client mapping can be used for discovery.
// Both the edit and notes columns must be mapped.
func CheckMapping(m model.ColumnMapping) error {
	if mapping.Supports(m, model.FieldEdit, model.FieldNotes) {
		return nil
	}
	return common.NewUserError(
		`This client's configuration must map both "edit" and "notes" to discover new rules.`,
		fmt.Errorf("%w: edit=%q notes=%q", common.ErrDiscoveryMapping, m[model.FieldEdit], m[model.FieldNotes]),
	)
}

// Discover collects the trimmed edit and note values of actionable rows that
// are not already rule texts. When the mapping has no state column every row
// is considered. Values are de-duplicated and no item carries a proposed
// category.
func Discover(rows []model.RawRow, m model.ColumnMapping, existingEdits, existingNotes map[string]struct{}) Result {
	hasState := m[model.FieldState] != ""

	edits := make(map[string]struct{})
	notes := make(map[string]struct{})

	for _, row := range rows {
		if hasState && !model.IsActionableState(mapping.Upper(row, model.FieldState, m, model.UnknownValue)) {
			continue
		}
		collect(row, m, model.FieldEdit, existingEdits, edits)
		collect(row, m, model.FieldNotes, existingNotes, notes)
	}

	return Result{
		Edits: items(edits),
		Notes: items(notes),
	}
}

func collect(row model.RawRow, m model.ColumnMapping, key string, existing, found map[string]struct{}) {
	v := mapping.String(row, key, m, "")
	if v == "" {
		return
	}
	if _, ok := existing[v]; ok {
		return
	}
	found[v] = struct{}{}
}

func items(values map[string]struct{}) []model.UncategorizedItem {
	texts := make([]string, 0, len(values))
	for v := range values {
		texts = append(texts, v)
	}
	slices.Sort(texts)

	out := make([]model.UncategorizedItem, 0, len(texts))
	for _, t := range texts {
		out = append(out, model.UncategorizedItem{Text: t})
	}
	return out
}
