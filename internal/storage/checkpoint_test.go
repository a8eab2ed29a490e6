package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpoint_CreateListRestore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "triage.db")
	ctx := context.Background()

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))

	_, err = store.CreateTeam(ctx, "Billing")
	require.NoError(t, err)

	cm, err := store.NewCheckpointManager()
	require.NoError(t, err)

	info, err := cm.Create(ctx, "before-import", "one team")
	require.NoError(t, err)
	assert.Equal(t, 1, info.RowCounts["teams"])
	assert.Equal(t, ExpectedSchemaVersion, info.SchemaVersion)

	_, err = cm.Create(ctx, "before-import", "again")
	require.ErrorIs(t, err, ErrCheckpointExists)

	_, err = cm.Create(ctx, "../escape", "")
	require.ErrorIs(t, err, ErrInvalidCheckpointID)

	list, err := cm.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "before-import", list[0].ID)

	_, err = store.CreateTeam(ctx, "Escalations")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, RestoreCheckpoint(dbPath, "before-import"))

	store, err = NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	teams, err := store.ListTeams(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "Billing", teams[0].Name)

	cm, err = store.NewCheckpointManager()
	require.NoError(t, err)
	require.NoError(t, cm.Delete(ctx, "before-import"))
	assert.ErrorIs(t, cm.Delete(ctx, "before-import"), ErrCheckpointNotFound)
	assert.ErrorIs(t, RestoreCheckpoint(dbPath, "before-import"), ErrCheckpointNotFound)
}

func TestCheckpoint_InMemoryUnsupported(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.NewCheckpointManager()
	assert.Error(t, err)
}
