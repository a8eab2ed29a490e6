package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ExpectedSchemaVersion is the schema version this package writes.
const ExpectedSchemaVersion = 2

type migration struct {
	description string
	statements  []string
	version     int
}

var migrations = []migration{
	{
		version:     1,
		description: "Initial schema",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS teams (
				id SERIAL PRIMARY KEY,
				team_name TEXT NOT NULL UNIQUE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE TABLE IF NOT EXISTS claim_categories (
				id SERIAL PRIMARY KEY,
				category_name TEXT NOT NULL UNIQUE,
				team_id INTEGER NOT NULL REFERENCES teams(id) ON DELETE RESTRICT,
				send_to_l1_monitor BOOLEAN NOT NULL DEFAULT false,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE TABLE IF NOT EXISTS column_configurations (
				id SERIAL PRIMARY KEY,
				config_name TEXT NOT NULL UNIQUE,
				config_data JSONB NOT NULL,
				last_updated TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE TABLE IF NOT EXISTS claim_edit_rules (
				id SERIAL,
				config_id INTEGER NOT NULL REFERENCES column_configurations(id) ON DELETE CASCADE,
				edit_text TEXT NOT NULL,
				category_id INTEGER NOT NULL REFERENCES claim_categories(id) ON DELETE CASCADE,
				last_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
				PRIMARY KEY (config_id, edit_text)
			)`,
			`CREATE TABLE IF NOT EXISTS claim_note_rules (
				id SERIAL,
				config_id INTEGER NOT NULL REFERENCES column_configurations(id) ON DELETE CASCADE,
				note_keyword TEXT NOT NULL,
				category_id INTEGER NOT NULL REFERENCES claim_categories(id) ON DELETE CASCADE,
				last_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
				PRIMARY KEY (config_id, note_keyword)
			)`,
		},
	},
	{
		version:     2,
		description: "Add client team associations",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS client_team_associations (
				config_id INTEGER NOT NULL REFERENCES column_configurations(id) ON DELETE CASCADE,
				team_id INTEGER NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
				PRIMARY KEY (config_id, team_id)
			)`,
		},
	},
}

// Migrate applies pending migrations, recording progress in schema_migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current int
	if err := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		err := s.withTx(ctx, func(tx pgx.Tx) error {
			for _, stmt := range m.statements {
				if _, err := tx.Exec(ctx, stmt); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			_, err := tx.Exec(ctx,
				`INSERT INTO schema_migrations (version, description) VALUES ($1, $2)`, m.version, m.description)
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d failed: %w", m.version, err)
		}
		s.logger.Info("Applied migration", "version", m.version, "description", m.description)
	}

	return nil
}

// SchemaVersion reports the highest applied migration, or 0 for a fresh database.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42P01" {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return v, nil
}
