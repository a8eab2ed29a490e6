// Package clientconfig reads and writes client configuration files: a
// client's column mapping, its teams and its seed rules in one YAML document.
//
// Example:
//
//	name: Acme Health
//	columns:
//	  claimId: "Claim #"
//	  state: State
//	  edit: Edit
//	  notes: Notes
//	teams: [Billing, Escalations]
//	rules:
//	  edit:
//	    - {text: E100, category: Billing Error}
//	  note:
//	    - {text: urgent, category: Escalation}
package clientconfig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/service"
)

// ErrInvalidFile reports a client file that does not match the schema.
var ErrInvalidFile = errors.New("invalid client configuration file")

// File is the YAML form of a client configuration.
type File struct {
	Columns model.ColumnMapping `yaml:"columns"`
	Name    string              `yaml:"name"`
	Teams   []string            `yaml:"teams,omitempty"`
	Rules   Rules               `yaml:"rules,omitempty"`
}

// Rules holds seed rules by type.
type Rules struct {
	Edit []RuleEntry `yaml:"edit,omitempty"`
	Note []RuleEntry `yaml:"note,omitempty"`
}

// RuleEntry maps rule text to a category by name.
type RuleEntry struct {
	Text     string `yaml:"text"`
	Category string `yaml:"category"`
}

// Parse decodes and validates a client file.
func Parse(data []byte) (*File, error) {
	doc, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	return &f, nil
}

// Load reads and parses the client file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read client file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("Client file %s is not valid", path), err)
	}
	return f, nil
}

// Marshal renders f as YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

// ApplyResult reports what Apply wrote.
type ApplyResult struct {
	Config    *model.ClientConfig
	EditRules int
	NoteRules int
	Created   bool
}

// Apply creates or updates the client named in f, replaces its team
// associations with f.Teams and upserts its rules. Team and category names
// are resolved before anything is written.
func Apply(ctx context.Context, store service.Storage, f *File, logger *slog.Logger) (*ApplyResult, error) {
	logger = common.OrDefault(logger)

	teamIDs, err := resolveTeams(ctx, store, f.Teams)
	if err != nil {
		return nil, err
	}
	edits, err := resolveRules(ctx, store, f.Rules.Edit)
	if err != nil {
		return nil, err
	}
	notes, err := resolveRules(ctx, store, f.Rules.Note)
	if err != nil {
		return nil, err
	}

	res := &ApplyResult{EditRules: len(edits), NoteRules: len(notes)}

	existing, err := store.GetClientConfigByName(ctx, f.Name)
	switch {
	case errors.Is(err, common.ErrNotFound):
		res.Config, err = store.CreateClientConfig(ctx, f.Name, f.Columns)
		res.Created = true
	case err == nil:
		res.Config, err = store.UpdateClientConfig(ctx, existing.ID, f.Name, f.Columns)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save client %q: %w", f.Name, err)
	}

	if err := store.SetClientTeams(ctx, res.Config.ID, teamIDs); err != nil {
		return nil, fmt.Errorf("failed to save teams for %q: %w", f.Name, err)
	}
	res.Config.TeamIDs = teamIDs

	if len(edits) > 0 {
		if err := store.UpsertRules(ctx, res.Config.ID, model.RuleTypeEdit, edits); err != nil {
			return nil, err
		}
	}
	if len(notes) > 0 {
		if err := store.UpsertRules(ctx, res.Config.ID, model.RuleTypeNote, notes); err != nil {
			return nil, err
		}
	}

	logger.Info("applied client file",
		"client", f.Name,
		"created", res.Created,
		"teams", len(teamIDs),
		"edit_rules", res.EditRules,
		"note_rules", res.NoteRules)
	return res, nil
}

func resolveTeams(ctx context.Context, store service.TaxonomyStore, names []string) ([]int, error) {
	if len(names) == 0 {
		return nil, nil
	}
	teams, err := store.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	byName := make(map[string]int, len(teams))
	for _, t := range teams {
		byName[t.Name] = t.ID
	}

	ids := make([]int, 0, len(names))
	for _, n := range names {
		id, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("team %q: %w", n, common.ErrNotFound)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func resolveRules(ctx context.Context, store service.TaxonomyStore, entries []RuleEntry) ([]service.RuleAssignment, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	cats, err := store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	byName := make(map[string]int, len(cats))
	for _, c := range cats {
		byName[c.Name] = c.ID
	}

	out := make([]service.RuleAssignment, 0, len(entries))
	for _, e := range entries {
		id, ok := byName[e.Category]
		if !ok {
			return nil, fmt.Errorf("rule %q: category %q: %w", e.Text, e.Category, common.ErrNotFound)
		}
		out = append(out, service.RuleAssignment{Text: e.Text, CategoryID: id})
	}
	return out, nil
}

// Export builds the file form of a stored client, including its rules.
func Export(ctx context.Context, store service.Storage, clientID int) (*File, error) {
	cfg, err := store.GetClientConfig(ctx, clientID)
	if err != nil {
		return nil, err
	}

	f := &File{Name: cfg.Name, Columns: cfg.Mapping}

	if len(cfg.TeamIDs) > 0 {
		teams, err := store.ListTeams(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list teams: %w", err)
		}
		names := make(map[int]string, len(teams))
		for _, t := range teams {
			names[t.ID] = t.Name
		}
		for _, id := range cfg.TeamIDs {
			if n, ok := names[id]; ok {
				f.Teams = append(f.Teams, n)
			}
		}
	}

	edits, err := store.ListEditRules(ctx, clientID)
	if err != nil {
		return nil, err
	}
	notes, err := store.ListNoteRules(ctx, clientID)
	if err != nil {
		return nil, err
	}
	f.Rules.Edit = toEntries(edits)
	f.Rules.Note = toEntries(notes)
	return f, nil
}

func toEntries(rules []model.Rule) []RuleEntry {
	if len(rules) == 0 {
		return nil
	}
	out := make([]RuleEntry, len(rules))
	for i, r := range rules {
		out[i] = RuleEntry{Text: r.Text, Category: r.CategoryName}
	}
	return out
}
