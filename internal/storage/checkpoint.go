package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// CheckpointManager snapshots the rule database so a bad bulk rule import can be undone.
type CheckpointManager struct {
	db             *sql.DB
	dbPath         string
	checkpointsDir string
}

// CheckpointInfo describes a stored checkpoint.
type CheckpointInfo struct {
	CreatedAt     time.Time      `json:"created_at"`
	RowCounts     map[string]int `json:"row_counts"`
	ID            string         `json:"id"`
	Description   string         `json:"description"`
	FileSize      int64          `json:"file_size"`
	SchemaVersion int            `json:"schema_version"`
}

// Checkpoint errors.
var (
	ErrCheckpointNotFound  = errors.New("checkpoint not found")
	ErrCheckpointCorrupted = errors.New("checkpoint integrity check failed")
	ErrCheckpointExists    = errors.New("checkpoint already exists")
	ErrInvalidCheckpointID = errors.New("invalid checkpoint id: cannot contain path separators")
)

// countedTables are reported in checkpoint metadata.
var countedTables = map[string]string{
	"teams":            "SELECT COUNT(*) FROM teams",
	"categories":       "SELECT COUNT(*) FROM claim_categories",
	"client_configs":   "SELECT COUNT(*) FROM column_configurations",
	"edit_rules":       "SELECT COUNT(*) FROM claim_edit_rules",
	"note_rules":       "SELECT COUNT(*) FROM claim_note_rules",
	"team_assignments": "SELECT COUNT(*) FROM client_team_associations",
}

// CheckpointsDir returns the directory checkpoints for dbPath are kept in.
func CheckpointsDir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "checkpoints")
}

// NewCheckpointManager creates a checkpoint manager for the database at dbPath.
func NewCheckpointManager(db *sql.DB, dbPath string) (*CheckpointManager, error) {
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	dir := CheckpointsDir(abs)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	return &CheckpointManager{
		db:             db,
		dbPath:         abs,
		checkpointsDir: dir,
	}, nil
}

func validCheckpointID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\'";`) || strings.Contains(id, "..") {
		return ErrInvalidCheckpointID
	}
	return nil
}

// Create snapshots the database. An empty tag generates a timestamped one.
func (cm *CheckpointManager) Create(ctx context.Context, tag, description string) (*CheckpointInfo, error) {
	if tag == "" {
		tag = fmt.Sprintf("checkpoint-%s", time.Now().Format("2006-01-02-150405"))
	}
	if err := validCheckpointID(tag); err != nil {
		return nil, err
	}

	checkpointPath := filepath.Join(cm.checkpointsDir, tag+".db")
	if _, err := os.Stat(checkpointPath); err == nil {
		return nil, ErrCheckpointExists
	}

	var schemaVersion int
	if err := cm.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&schemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}

	counts := make(map[string]int, len(countedTables))
	for name, query := range countedTables {
		var n int
		if err := cm.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", name, err)
		}
		counts[name] = n
	}

	// #nosec G202 - checkpointPath is built from a validated id
	if _, err := cm.db.ExecContext(ctx, "VACUUM INTO '"+checkpointPath+"'"); err != nil {
		return nil, fmt.Errorf("failed to backup database: %w", err)
	}

	stat, err := os.Stat(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat checkpoint: %w", err)
	}

	info := &CheckpointInfo{
		ID:            tag,
		CreatedAt:     time.Now(),
		Description:   description,
		FileSize:      stat.Size(),
		RowCounts:     counts,
		SchemaVersion: schemaVersion,
	}

	if err := writeJSON(cm.metadataPath(tag), info); err != nil {
		if rmErr := os.Remove(checkpointPath); rmErr != nil {
			slog.Error("failed to remove checkpoint file after metadata save failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}

	slog.Info("created checkpoint", "id", tag, "size", info.FileSize)
	return info, nil
}

// List returns all checkpoints, newest first. Unreadable metadata is skipped.
func (cm *CheckpointManager) List(_ context.Context) ([]CheckpointInfo, error) {
	entries, err := os.ReadDir(cm.checkpointsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoints directory: %w", err)
	}

	var out []CheckpointInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}
		info, err := readMetadata(filepath.Join(cm.checkpointsDir, entry.Name()))
		if err != nil {
			slog.Debug("skipping unreadable checkpoint metadata", "file", entry.Name(), "error", err)
			continue
		}
		out = append(out, *info)
	}

	slices.SortFunc(out, func(a, b CheckpointInfo) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// Delete removes a checkpoint and its metadata.
func (cm *CheckpointManager) Delete(_ context.Context, id string) error {
	if err := validCheckpointID(id); err != nil {
		return err
	}

	checkpointPath := filepath.Join(cm.checkpointsDir, id+".db")
	if err := os.Remove(checkpointPath); err != nil {
		if os.IsNotExist(err) {
			return ErrCheckpointNotFound
		}
		return fmt.Errorf("failed to remove checkpoint file: %w", err)
	}
	if err := os.Remove(cm.metadataPath(id)); err != nil {
		slog.Debug("failed to remove metadata file", "error", err, "id", id)
	}
	return nil
}

func (cm *CheckpointManager) metadataPath(id string) string {
	return filepath.Join(cm.checkpointsDir, id+".meta.json")
}

// RestoreCheckpoint replaces the database at dbPath with checkpoint id.
// The database must not be open.
func RestoreCheckpoint(dbPath, id string) error {
	if err := validCheckpointID(id); err != nil {
		return err
	}
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return fmt.Errorf("failed to resolve database path: %w", err)
	}

	checkpointPath := filepath.Join(CheckpointsDir(abs), id+".db")
	if _, err := os.Stat(checkpointPath); err != nil {
		if os.IsNotExist(err) {
			return ErrCheckpointNotFound
		}
		return fmt.Errorf("failed to access checkpoint: %w", err)
	}

	if err := verifyIntegrity(checkpointPath); err != nil {
		return fmt.Errorf("%w: %v", ErrCheckpointCorrupted, err)
	}

	backupPath := abs + ".restore-backup"
	if err := copyFile(abs, backupPath); err != nil {
		return fmt.Errorf("failed to backup current database: %w", err)
	}

	// Stale WAL files would be replayed over the restored snapshot.
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(abs + suffix)
	}

	if err := copyFile(checkpointPath, abs); err != nil {
		if restoreErr := copyFile(backupPath, abs); restoreErr != nil {
			slog.Error("failed to restore backup after checkpoint restore failure", "error", restoreErr)
		}
		return fmt.Errorf("failed to restore checkpoint: %w", err)
	}

	if err := os.Remove(backupPath); err != nil {
		slog.Error("failed to remove backup file", "error", err)
	}

	slog.Info("restored checkpoint", "id", id, "database", abs)
	return nil
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return errors.New(result)
	}
	return nil
}

func copyFile(src, dst string) error {
	// #nosec G304 - paths are derived from the configured database path
	source, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	tmp := dst + ".tmp"
	// #nosec G304 - see above
	destination, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if _, err := io.Copy(destination, source); err != nil {
		_ = destination.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := destination.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readMetadata(path string) (*CheckpointInfo, error) {
	// #nosec G304 - path comes from the checkpoints directory listing
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var info CheckpointInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
