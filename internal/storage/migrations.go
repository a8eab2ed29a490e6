package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/claims-triage/internal/common"
)

// ExpectedSchemaVersion is the schema this build reads and writes.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS teams (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					team_name TEXT NOT NULL UNIQUE,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS claim_categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					category_name TEXT NOT NULL UNIQUE,
					team_id INTEGER NOT NULL REFERENCES teams(id) ON DELETE RESTRICT,
					send_to_l1_monitor BOOLEAN NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_claim_categories_team ON claim_categories(team_id)`,

				`CREATE TABLE IF NOT EXISTS column_configurations (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					config_name TEXT NOT NULL UNIQUE,
					config_data TEXT NOT NULL,
					last_updated DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS claim_edit_rules (
					config_id INTEGER NOT NULL REFERENCES column_configurations(id) ON DELETE CASCADE,
					edit_text TEXT NOT NULL,
					category_id INTEGER NOT NULL REFERENCES claim_categories(id) ON DELETE CASCADE,
					last_seen DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (config_id, edit_text)
				)`,

				`CREATE TABLE IF NOT EXISTS claim_note_rules (
					config_id INTEGER NOT NULL REFERENCES column_configurations(id) ON DELETE CASCADE,
					note_keyword TEXT NOT NULL,
					category_id INTEGER NOT NULL REFERENCES claim_categories(id) ON DELETE CASCADE,
					last_seen DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (config_id, note_keyword)
				)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Add client team associations",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS client_team_associations (
					config_id INTEGER NOT NULL REFERENCES column_configurations(id) ON DELETE CASCADE,
					team_id INTEGER NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
					PRIMARY KEY (config_id, team_id)
				)`,
				`CREATE INDEX idx_client_team_associations_team ON client_team_associations(team_id)`,
			)
		},
	},
	{
		Version:     3,
		Description: "Index rules by category",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE INDEX idx_claim_edit_rules_category ON claim_edit_rules(category_id)`,
				`CREATE INDEX idx_claim_note_rules_category ON claim_note_rules(category_id)`,
				`CREATE TRIGGER update_column_configurations_last_updated
				AFTER UPDATE OF config_name, config_data ON column_configurations
				FOR EACH ROW
				BEGIN
					UPDATE column_configurations SET last_updated = CURRENT_TIMESTAMP WHERE id = NEW.id;
				END`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Migrate brings the schema up to ExpectedSchemaVersion, one transaction per migration.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := s.apply(ctx, m); err != nil {
			return err
		}
		slog.Info("Applied migration", "version", m.Version, "description", m.Description)
	}

	final, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if final != ExpectedSchemaVersion {
		return fmt.Errorf("%w: schema version %d, expected %d", common.ErrDatabaseCorrupted, final, ExpectedSchemaVersion)
	}
	return nil
}

func (s *SQLiteStorage) apply(ctx context.Context, m Migration) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = m.Up(tx); err != nil {
		return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
		return fmt.Errorf("failed to record schema version %d: %w", m.Version, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}
	return nil
}

// SchemaVersion reports the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return v, nil
}
