package model

import "time"

// Team is an operational group that works claims of one or more categories.
type Team struct {
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"team_name"`
	ID        int       `json:"id"`
}

// Category is an operational claim category owned by a team.
type Category struct {
	CreatedAt       time.Time `json:"created_at"`
	Name            string    `json:"category_name"`
	TeamName        string    `json:"team_name"`
	ID              int       `json:"id"`
	TeamID          int       `json:"team_id"`
	SendToL1Monitor bool      `json:"send_to_l1_monitor"`
}

// ClientConfig is a claims-reporting customer with its own spreadsheet layout.
type ClientConfig struct {
	UpdatedAt time.Time     `json:"last_updated"`
	Mapping   ColumnMapping `json:"column_mappings"`
	Name      string        `json:"config_name"`
	TeamIDs   []int         `json:"team_ids,omitempty"`
	ID        int           `json:"id"`
}
