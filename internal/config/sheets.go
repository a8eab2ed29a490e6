package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/Veraticus/claims-triage/internal/sheets"
)

// LoadSheetsConfig loads Google Sheets configuration from Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or TRIAGE_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. The refresh token saved by `triage auth sheets`
// 4. Default values
func LoadSheetsConfig() (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	if v := viper.GetString("sheets.service_account_path"); v != "" {
		config.ServiceAccountPath = ExpandPath(v)
	}
	if v := viper.GetString("sheets.client_id"); v != "" {
		config.ClientID = v
	}
	if v := viper.GetString("sheets.client_secret"); v != "" {
		config.ClientSecret = v
	}
	if v := viper.GetString("sheets.refresh_token"); v != "" {
		config.RefreshToken = v
	}
	if v := viper.GetString("sheets.spreadsheet_id"); v != "" {
		config.SpreadsheetID = v
	}
	if v := viper.GetString("sheets.spreadsheet_name"); v != "" {
		config.SpreadsheetName = v
	}
	if v := viper.GetString("sheets.sheet_title"); v != "" {
		config.SheetTitle = v
	}

	if config.ServiceAccountPath == "" {
		if v := os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"); v != "" {
			config.ServiceAccountPath = ExpandPath(v)
		}
	}
	if config.ClientID == "" {
		config.ClientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if config.ClientSecret == "" {
		config.ClientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if config.RefreshToken == "" {
		config.RefreshToken = os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")
	}
	if config.SpreadsheetID == "" {
		config.SpreadsheetID = os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")
	}
	if config.RefreshToken == "" && config.ServiceAccountPath == "" {
		config.RefreshToken = sheets.RefreshTokenFromFile(SheetsTokenPath())
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// SheetsTokenPath is where `triage auth sheets` stores its OAuth2 token.
func SheetsTokenPath() string {
	if v := viper.GetString("sheets.token_file"); v != "" {
		return ExpandPath(v)
	}
	return filepath.Join(ConfigDir(), "sheets_token.json")
}
