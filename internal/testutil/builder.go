package testutil

import (
	"context"
	"fmt"

	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/service"
)

// Names used by the standard taxonomy.
const (
	TeamBilling     = "Billing"
	TeamEscalations = "Escalations"
	TeamHolds       = "Holds"

	CategoryBillingError = "Billing Error"
	CategoryEscalation   = "Escalation"
	CategoryOnHold       = "On Hold"
	CategoryMgmtHold     = "Management Hold"

	ClientAcme = "Acme Health"
)

// StandardMapping is the column mapping given to the standard client.
func StandardMapping() model.ColumnMapping {
	return model.ColumnMapping{
		model.FieldClaimID:      "Claim #",
		model.FieldState:        "State",
		model.FieldStatus:       "Status",
		model.FieldAge:          "Age",
		model.FieldNetPayment:   "Net Paid",
		model.FieldTotalCharges: "Charges",
		model.FieldProviderName: "Provider",
		model.FieldNotes:        "Notes",
		model.FieldEdit:         "Edit",
	}
}

type categorySpec struct {
	name string
	team string
	l1   bool
}

type ruleSpec struct {
	client   string
	text     string
	category string
	ruleType model.RuleType
}

type clientSpec struct {
	mapping model.ColumnMapping
	name    string
	teams   []string
}

// Builder describes taxonomy, clients and rules to seed. Entries are created
// in dependency order by Build.
type Builder struct {
	teams      []string
	categories []categorySpec
	clients    []clientSpec
	rules      []ruleSpec
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithTeam adds a team.
func (b *Builder) WithTeam(name string) *Builder {
	b.teams = append(b.teams, name)
	return b
}

// WithCategory adds a category owned by team.
func (b *Builder) WithCategory(name, team string, sendToL1Monitor bool) *Builder {
	b.categories = append(b.categories, categorySpec{name: name, team: team, l1: sendToL1Monitor})
	return b
}

// WithClient adds a client configuration associated with teams.
func (b *Builder) WithClient(name string, m model.ColumnMapping, teams ...string) *Builder {
	b.clients = append(b.clients, clientSpec{name: name, mapping: m, teams: teams})
	return b
}

// WithRule adds a rule for client pointing at category.
func (b *Builder) WithRule(client string, ruleType model.RuleType, text, category string) *Builder {
	b.rules = append(b.rules, ruleSpec{client: client, ruleType: ruleType, text: text, category: category})
	return b
}

// WithStandardTaxonomy seeds three teams, four categories, the Acme client and
// a small rule set matching the scenarios used across tests.
func (b *Builder) WithStandardTaxonomy() *Builder {
	return b.
		WithTeam(TeamBilling).
		WithTeam(TeamEscalations).
		WithTeam(TeamHolds).
		WithCategory(CategoryBillingError, TeamBilling, true).
		WithCategory(CategoryEscalation, TeamEscalations, false).
		WithCategory(CategoryOnHold, TeamHolds, false).
		WithCategory(CategoryMgmtHold, TeamHolds, true).
		WithClient(ClientAcme, StandardMapping(), TeamBilling, TeamEscalations).
		WithRule(ClientAcme, model.RuleTypeEdit, "E100", CategoryBillingError).
		WithRule(ClientAcme, model.RuleTypeNote, "urgent", CategoryEscalation).
		WithRule(ClientAcme, model.RuleTypeNote, "hold", CategoryOnHold).
		WithRule(ClientAcme, model.RuleTypeNote, "management hold", CategoryMgmtHold)
}

// Seeded maps fixture names to the IDs the store assigned.
type Seeded struct {
	Teams      map[string]int
	Categories map[string]int
	Clients    map[string]int
}

// Build creates every described entry in store.
func (b *Builder) Build(ctx context.Context, store service.Storage) (*Seeded, error) {
	seed := &Seeded{
		Teams:      make(map[string]int),
		Categories: make(map[string]int),
		Clients:    make(map[string]int),
	}

	for _, name := range b.teams {
		t, err := store.CreateTeam(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("team %q: %w", name, err)
		}
		seed.Teams[name] = t.ID
	}

	for _, c := range b.categories {
		teamID, ok := seed.Teams[c.team]
		if !ok {
			return nil, fmt.Errorf("category %q references unknown team %q", c.name, c.team)
		}
		cat, err := store.CreateCategory(ctx, c.name, teamID, c.l1)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", c.name, err)
		}
		seed.Categories[c.name] = cat.ID
	}

	for _, c := range b.clients {
		cfg, err := store.CreateClientConfig(ctx, c.name, c.mapping)
		if err != nil {
			return nil, fmt.Errorf("client %q: %w", c.name, err)
		}
		seed.Clients[c.name] = cfg.ID

		if len(c.teams) == 0 {
			continue
		}
		ids := make([]int, 0, len(c.teams))
		for _, team := range c.teams {
			id, ok := seed.Teams[team]
			if !ok {
				return nil, fmt.Errorf("client %q references unknown team %q", c.name, team)
			}
			ids = append(ids, id)
		}
		if err := store.SetClientTeams(ctx, cfg.ID, ids); err != nil {
			return nil, fmt.Errorf("client %q teams: %w", c.name, err)
		}
	}

	for _, r := range b.rules {
		clientID, ok := seed.Clients[r.client]
		if !ok {
			return nil, fmt.Errorf("rule %q references unknown client %q", r.text, r.client)
		}
		categoryID, ok := seed.Categories[r.category]
		if !ok {
			return nil, fmt.Errorf("rule %q references unknown category %q", r.text, r.category)
		}
		items := []service.RuleAssignment{{Text: r.text, CategoryID: categoryID}}
		if err := store.UpsertRules(ctx, clientID, r.ruleType, items); err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.text, err)
		}
	}

	return seed, nil
}
