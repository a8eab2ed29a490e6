package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/storage/postgres"
)

// Storage drivers accepted in database.driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultDatabasePath is the SQLite file used when database.path is unset.
const DefaultDatabasePath = "$HOME/.local/share/triage/triage.db"

// DatabaseConfig selects and configures the rule store.
type DatabaseConfig struct {
	Driver   string
	Path     string
	Postgres postgres.Config
}

// LoadDatabaseConfig reads the database.* keys.
func LoadDatabaseConfig() (DatabaseConfig, error) {
	cfg := DatabaseConfig{
		Driver: viper.GetString("database.driver"),
		Path:   viper.GetString("database.path"),
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	if cfg.Path == "" {
		cfg.Path = DefaultDatabasePath
	}
	cfg.Path = ExpandPath(cfg.Path)

	switch cfg.Driver {
	case DriverSQLite:
	case DriverPostgres:
		cfg.Postgres = postgres.Config{
			DSN:              viper.GetString("database.dsn"),
			MaxConns:         viper.GetInt32("database.max_conns"),
			MinConns:         viper.GetInt32("database.min_conns"),
			MaxConnLifetime:  viper.GetDuration("database.max_conn_lifetime"),
			MaxConnIdleTime:  viper.GetDuration("database.max_conn_idle_time"),
			DialTimeout:      viper.GetDuration("database.dial_timeout"),
			StatementTimeout: viper.GetDuration("database.statement_timeout"),
			ConnectRetry: common.RetryOptions{
				MaxAttempts:  viper.GetInt("database.connect_attempts"),
				InitialDelay: 500 * time.Millisecond,
			},
		}
		if cfg.Postgres.DSN == "" {
			return DatabaseConfig{}, fmt.Errorf("%w: database.dsn is required for the postgres driver", common.ErrMissingConfig)
		}
	default:
		return DatabaseConfig{}, fmt.Errorf("%w: unknown database driver %q", common.ErrInvalidConfig, cfg.Driver)
	}

	return cfg, nil
}
