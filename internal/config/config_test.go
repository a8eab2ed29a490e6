package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/scoring"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("TRIAGE_TEST_DIR", "/data")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/triage.db", filepath.Join(home, "triage.db")},
		{"$TRIAGE_TEST_DIR/triage.db", "/data/triage.db"},
		{"/abs/path", "/abs/path"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestLoadScoringWeights(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Reset()
	w, err := LoadScoringWeights()
	require.NoError(t, err)
	assert.Equal(t, scoring.DefaultWeights(), w)

	viper.Set("scoring.charges_divisor", 250.0)
	viper.Set("scoring.deny_bonus", 50)
	w, err = LoadScoringWeights()
	require.NoError(t, err)
	assert.InDelta(t, 250.0, w.ChargesDivisor, 0.0001)
	assert.Equal(t, 50, w.DenyBonus)
	assert.InDelta(t, 1.5, w.AgeMultiplier, 0.0001)

	viper.Set("scoring.charges_divisor", 0)
	_, err = LoadScoringWeights()
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestLoadDatabaseConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Reset()
	cfg, err := LoadDatabaseConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Driver)
	assert.Equal(t, ExpandPath(DefaultDatabasePath), cfg.Path)

	viper.Set("database.driver", "postgres")
	_, err = LoadDatabaseConfig()
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	viper.Set("database.dsn", "postgres://localhost/triage")
	viper.Set("database.statement_timeout", "30s")
	cfg, err = LoadDatabaseConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/triage", cfg.Postgres.DSN)
	assert.Equal(t, 30*time.Second, cfg.Postgres.StatementTimeout)

	viper.Set("database.driver", "oracle")
	_, err = LoadDatabaseConfig()
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, "/xdg/triage", ConfigDir())

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "triage"), ConfigDir())
}

func TestLoadSheetsConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Reset()
	for _, k := range []string{
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET",
		"GOOGLE_SHEETS_REFRESH_TOKEN", "GOOGLE_SHEETS_SPREADSHEET_ID",
	} {
		t.Setenv(k, "")
	}
	viper.Set("sheets.token_file", filepath.Join(t.TempDir(), "none.json"))

	_, err := LoadSheetsConfig()
	assert.Error(t, err)

	viper.Set("sheets.service_account_path", "/keys/sa.json")
	viper.Set("sheets.spreadsheet_id", "abc")
	cfg, err := LoadSheetsConfig()
	require.NoError(t, err)
	assert.Equal(t, "/keys/sa.json", cfg.ServiceAccountPath)
	assert.Equal(t, "abc", cfg.SpreadsheetID)
	assert.Equal(t, "Work Queue", cfg.SheetTitle)
}
