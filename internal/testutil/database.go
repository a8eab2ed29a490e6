// Package testutil provides shared test fixtures for the claims-triage packages.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/claims-triage/internal/storage"
)

// TestDB is a migrated in-memory database plus the fixtures seeded into it.
type TestDB struct {
	Storage *storage.SQLiteStorage
	Seed    *Seeded
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database, migrates it and seeds
// it from builder when one is given. Cleanup is registered on t.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.NewBuilder().WithStandardTaxonomy())
func SetupTestDB(t *testing.T, builder *Builder) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	seed := &Seeded{
		Teams:      map[string]int{},
		Categories: map[string]int{},
		Clients:    map[string]int{},
	}
	if builder != nil {
		seed, err = builder.Build(ctx, store)
		if err != nil {
			t.Fatalf("failed to seed test database: %v", err)
		}
	}

	return &TestDB{
		Storage: store,
		Seed:    seed,
		t:       t,
	}
}

// MustCategory returns the ID of a seeded category or fails the test.
func (db *TestDB) MustCategory(name string) int {
	db.t.Helper()
	id, ok := db.Seed.Categories[name]
	if !ok {
		db.t.Fatalf("category %q was not seeded", name)
	}
	return id
}

// MustClient returns the ID of a seeded client or fails the test.
func (db *TestDB) MustClient(name string) int {
	db.t.Helper()
	id, ok := db.Seed.Clients[name]
	if !ok {
		db.t.Fatalf("client %q was not seeded", name)
	}
	return id
}
