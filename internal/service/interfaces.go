// Package service defines the interfaces between the triage core and its collaborators.
package service

import (
	"context"

	"github.com/Veraticus/claims-triage/internal/model"
)

// RuleSource supplies the rule lists configured for a client.
type RuleSource interface {
	ListEditRules(ctx context.Context, clientID int) ([]model.Rule, error)
	ListNoteRules(ctx context.Context, clientID int) ([]model.Rule, error)
}

// RuleAssignment is a triaged value ready to become a rule.
type RuleAssignment struct {
	Text       string `json:"text"`
	CategoryID int    `json:"category_id"`
}

// RuleStore is the read/write rule persistence used by triage and admin commands.
type RuleStore interface {
	RuleSource
	ListRules(ctx context.Context, clientID int, ruleType model.RuleType) ([]model.Rule, error)
	ListAllRules(ctx context.Context) (model.RuleSet, error)
	UpsertRules(ctx context.Context, clientID int, ruleType model.RuleType, items []RuleAssignment) error
	DeleteRule(ctx context.Context, clientID int, ruleType model.RuleType, text string) error
}

// ConfigStore persists client configurations and their team associations.
type ConfigStore interface {
	GetClientConfig(ctx context.Context, id int) (*model.ClientConfig, error)
	GetClientConfigByName(ctx context.Context, name string) (*model.ClientConfig, error)
	ListClientConfigs(ctx context.Context) ([]model.ClientConfig, error)
	CreateClientConfig(ctx context.Context, name string, mapping model.ColumnMapping) (*model.ClientConfig, error)
	UpdateClientConfig(ctx context.Context, id int, name string, mapping model.ColumnMapping) (*model.ClientConfig, error)
	DeleteClientConfig(ctx context.Context, id int) error
	SetClientTeams(ctx context.Context, clientID int, teamIDs []int) error
}

// TaxonomyStore persists teams and categories.
type TaxonomyStore interface {
	ListTeams(ctx context.Context) ([]model.Team, error)
	CreateTeam(ctx context.Context, name string) (*model.Team, error)
	DeleteTeam(ctx context.Context, id int) error
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id int) (*model.Category, error)
	CreateCategory(ctx context.Context, name string, teamID int, sendToL1Monitor bool) (*model.Category, error)
	DeleteCategory(ctx context.Context, id int) error
}

// Storage is the full persistence contract implemented by the SQLite and Postgres stores.
type Storage interface {
	RuleStore
	ConfigStore
	TaxonomyStore

	Migrate(ctx context.Context) error
	Close() error
}

// WorkQueueWriter publishes a prioritized work queue somewhere outside the process.
type WorkQueueWriter interface {
	Write(ctx context.Context, claims []model.ProcessedClaim, metrics model.Metrics) error
}
