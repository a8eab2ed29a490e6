package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cast"

	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/config"
	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/service"
	"github.com/Veraticus/claims-triage/internal/spreadsheet"
	"github.com/Veraticus/claims-triage/internal/storage"
	"github.com/Veraticus/claims-triage/internal/storage/postgres"
)

// initStorage opens the configured store and applies pending migrations.
func initStorage(ctx context.Context) (service.Storage, error) {
	store, err := openStorage(ctx)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// openStorage opens the configured store without migrating it.
func openStorage(ctx context.Context) (service.Storage, error) {
	cfg, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	if cfg.Driver == config.DriverPostgres {
		store, err := postgres.Open(ctx, cfg.Postgres, slog.Default())
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	store, err := storage.NewSQLiteStorage(cfg.Path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// sqliteStore returns the SQLite store behind s, for commands that only work on a local file.
func sqliteStore(s service.Storage) (*storage.SQLiteStorage, error) {
	sqlite, ok := s.(*storage.SQLiteStorage)
	if !ok {
		return nil, common.NewUserError("This command requires the sqlite database driver.", common.ErrInvalidConfig)
	}
	return sqlite, nil
}

// resolveClient finds a client configuration by ID or by name.
func resolveClient(ctx context.Context, store service.ConfigStore, ref string) (*model.ClientConfig, error) {
	if ref == "" {
		return nil, common.NewUserError("A client is required; pass --client with a name or ID.", common.ErrMissingConfig)
	}
	if id, err := cast.ToIntE(ref); err == nil && id > 0 {
		cfg, err := store.GetClientConfig(ctx, id)
		if err == nil || !errors.Is(err, common.ErrNotFound) {
			return cfg, err
		}
	}
	cfg, err := store.GetClientConfigByName(ctx, ref)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewUserError(fmt.Sprintf("No client configuration named %q.", ref), err)
	}
	return cfg, err
}

// resolveTeam finds a team by ID or by name.
func resolveTeam(ctx context.Context, store service.TaxonomyStore, ref string) (*model.Team, error) {
	teams, err := store.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	id, idErr := cast.ToIntE(ref)
	for i := range teams {
		if teams[i].Name == ref || (idErr == nil && teams[i].ID == id) {
			return &teams[i], nil
		}
	}
	return nil, common.NewUserError(fmt.Sprintf("No team named %q.", ref), common.ErrNotFound)
}

// resolveCategory finds a category by ID or by name.
func resolveCategory(ctx context.Context, store service.TaxonomyStore, ref string) (*model.Category, error) {
	categories, err := store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	id, idErr := cast.ToIntE(ref)
	for i := range categories {
		if categories[i].Name == ref || (idErr == nil && categories[i].ID == id) {
			return &categories[i], nil
		}
	}
	return nil, common.NewUserError(fmt.Sprintf("No category named %q.", ref), common.ErrNotFound)
}

// loadSheet parses a claims report from disk.
func loadSheet(path string) (*spreadsheet.Sheet, error) {
	f, err := os.Open(config.ExpandPath(path))
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("Cannot open %s.", path), err)
	}
	defer func() { _ = f.Close() }()

	sheet, err := spreadsheet.Parse(f, path)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("Cannot read %s: %v", path, err), err)
	}
	slog.Debug("loaded report", "path", path, "sheet", sheet.Name, "rows", len(sheet.Rows))
	return sheet, nil
}

func parseRuleType(s string) (model.RuleType, error) {
	t := model.RuleType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", storage.ErrInvalidRuleType, s)
	}
	return t, nil
}
