package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/claims-triage/internal/service"
	"github.com/Veraticus/claims-triage/internal/storage"
	"github.com/Veraticus/claims-triage/internal/storage/postgres"
)

type versioned interface {
	SchemaVersion(ctx context.Context) (int, error)
}

func migrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every command migrates automatically; use --status to inspect a database
without changing it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			current, latest, err := schemaVersions(ctx, store)
			if err != nil {
				return err
			}

			if status {
				fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d\nLatest version:  %d\n", current, latest)
				if current < latest {
					fmt.Fprintln(cmd.OutOrStdout(), "Run 'triage migrate' to upgrade.")
				}
				return nil
			}

			slog.Info("Running database migrations", "from", current, "to", latest)
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			slog.Info("Database migrations completed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "show the schema version without migrating")
	return cmd
}

func schemaVersions(ctx context.Context, store service.Storage) (int, int, error) {
	latest := storage.ExpectedSchemaVersion
	if _, ok := store.(*postgres.Store); ok {
		latest = postgres.ExpectedSchemaVersion
	}

	v, ok := store.(versioned)
	if !ok {
		return 0, latest, fmt.Errorf("storage %T does not report a schema version", store)
	}
	current, err := v.SchemaVersion(ctx)
	if err != nil {
		return 0, latest, err
	}
	return current, latest, nil
}
