// Package rules turns a client's stored rule lists into the lookup structures the classifier uses.
package rules

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/service"
)

// EditIndex maps an exact edit code to its rule.
type EditIndex struct {
	rules      map[string]model.Rule
	collisions int
}

// NewEditIndex indexes rules by exact text. When two rules share a text the later one wins;
// conflicting categories are logged so the duplicate can be cleaned up.
func NewEditIndex(rules []model.Rule, logger *slog.Logger) *EditIndex {
	logger = common.OrDefault(logger)
	idx := &EditIndex{rules: make(map[string]model.Rule, len(rules))}

	for _, r := range rules {
		if prev, ok := idx.rules[r.Text]; ok {
			idx.collisions++
			if prev.CategoryName != r.CategoryName || prev.CategoryID != r.CategoryID {
				logger.Warn("edit rule text claimed by more than one category",
					"text", r.Text,
					"replaced_category", prev.CategoryName,
					"category", r.CategoryName)
			}
		}
		idx.rules[r.Text] = r
	}

	return idx
}

// Lookup returns the rule for an edit code.
func (i *EditIndex) Lookup(text string) (model.Rule, bool) {
	if i == nil {
		return model.Rule{}, false
	}
	r, ok := i.rules[text]
	return r, ok
}

// Len returns the number of distinct edit codes.
func (i *EditIndex) Len() int {
	if i == nil {
		return 0
	}
	return len(i.rules)
}

// Collisions returns how many rules were overwritten by a later rule with the same text.
func (i *EditIndex) Collisions() int {
	if i == nil {
		return 0
	}
	return i.collisions
}

// NoteRule pairs a lower-case keyword with its rule.
type NoteRule struct {
	Keyword string
	Rule    model.Rule
}

// SortNoteRules lower-cases every keyword and orders them longest first so a specific phrase
// ("management hold") is tried before a generic one ("hold"). Equal lengths keep input order.
func SortNoteRules(rules []model.Rule) []NoteRule {
	sorted := make([]NoteRule, 0, len(rules))
	for _, r := range rules {
		kw := strings.ToLower(r.Text)
		if kw == "" {
			continue
		}
		sorted = append(sorted, NoteRule{Keyword: kw, Rule: r})
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Keyword) > len(sorted[j].Keyword)
	})

	return sorted
}

// Texts returns the set of rule texts, used to find values that have no rule yet.
func Texts(rules []model.Rule) map[string]struct{} {
	set := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		set[r.Text] = struct{}{}
	}
	return set
}

// Load fetches both rule lists for a client. Failures are returned as user errors; the caller
// decides whether to retry.
func Load(ctx context.Context, src service.RuleSource, clientID int) (model.RuleSet, error) {
	edits, err := src.ListEditRules(ctx, clientID)
	if err != nil {
		return model.RuleSet{}, common.NewUserError(
			fmt.Sprintf("Failed to load edit rules for client %d", clientID),
			fmt.Errorf("%w: %w", common.ErrRuleFetchFailed, err))
	}

	notes, err := src.ListNoteRules(ctx, clientID)
	if err != nil {
		return model.RuleSet{}, common.NewUserError(
			fmt.Sprintf("Failed to load note rules for client %d", clientID),
			fmt.Errorf("%w: %w", common.ErrRuleFetchFailed, err))
	}

	return model.RuleSet{EditRules: edits, NoteRules: notes}, nil
}
