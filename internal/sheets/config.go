// Package sheets publishes the claims work queue to Google Sheets.
package sheets

import (
	"fmt"
	"time"

	"github.com/Veraticus/claims-triage/internal/common"
)

// DefaultSpreadsheetName is used when a new spreadsheet has to be created.
const DefaultSpreadsheetName = "Claims Work Queue"

// AuthMethod is how the writer obtains Google credentials.
type AuthMethod int

// Supported credential sources.
const (
	AuthNone AuthMethod = iota
	AuthOAuth
	AuthServiceAccount
)

// Config controls the Sheets writer. Exactly one credential source must be set:
// a service-account key file, or an OAuth client plus the refresh token saved
// by `triage auth sheets`.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string

	SpreadsheetID    string // reuse this spreadsheet; empty creates one
	SpreadsheetName  string
	SheetTitle       string
	TimeZone         string
	BatchSize        int // rows per values.update call
	RetryAttempts    int
	RetryDelay       time.Duration
	EnableFormatting bool
}

// DefaultConfig returns the writer defaults; credentials are left empty.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:  DefaultSpreadsheetName,
		SheetTitle:       "Work Queue",
		TimeZone:         "America/New_York",
		BatchSize:        1000,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
		EnableFormatting: true,
	}
}

// AuthMethod reports which credential source is configured. It returns
// AuthNone when neither or both are present.
func (c *Config) AuthMethod() AuthMethod {
	oauth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	sa := c.ServiceAccountPath != ""
	switch {
	case oauth && !sa:
		return AuthOAuth
	case sa && !oauth:
		return AuthServiceAccount
	default:
		return AuthNone
	}
}

// Validate reports configuration problems wrapped in common.ErrInvalidConfig.
func (c *Config) Validate() error {
	invalid := func(msg string) error { return fmt.Errorf("%w: sheets: %s", common.ErrInvalidConfig, msg) }

	if c.AuthMethod() == AuthNone {
		if c.ServiceAccountPath != "" {
			return invalid("multiple authentication methods configured; use either OAuth2 or service account")
		}
		return invalid("no authentication method configured")
	}
	if c.BatchSize <= 0 {
		return invalid("batch size must be positive")
	}
	if c.RetryAttempts < 0 {
		return invalid("retry attempts cannot be negative")
	}
	if c.RetryDelay < 0 {
		return invalid("retry delay cannot be negative")
	}
	return nil
}
