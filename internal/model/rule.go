// Package model defines the core data structures for the claims triage application.
package model

import "time"

// RuleType distinguishes the two rule tiers.
type RuleType string

// Rule type constants.
const (
	// RuleTypeEdit rules match a claim's edit code exactly.
	RuleTypeEdit RuleType = "edit"
	// RuleTypeNote rules match a lower-case keyword inside the claim notes.
	RuleTypeNote RuleType = "note"
)

// Valid reports whether t is a known rule type.
func (t RuleType) Valid() bool {
	return t == RuleTypeEdit || t == RuleTypeNote
}

// Rule maps a piece of rule text to a category and the team that owns it.
type Rule struct {
	LastSeen        time.Time `json:"last_seen,omitempty"`
	Text            string    `json:"text"`
	CategoryName    string    `json:"category_name"`
	TeamName        string    `json:"team_name"`
	CategoryID      int       `json:"category_id"`
	ClientID        int       `json:"config_id,omitempty"`
	SendToL1Monitor bool      `json:"send_to_l1_monitor"`
}

// RuleSet is the pair of rule lists configured for one client.
type RuleSet struct {
	EditRules []Rule `json:"editRules"`
	NoteRules []Rule `json:"noteRules"`
}
