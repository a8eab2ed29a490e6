package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/model"
)

// configData is the JSON document stored in column_configurations.config_data.
type configData struct {
	ColumnMappings model.ColumnMapping `json:"columnMappings"`
}

// EncodeConfigData renders a mapping in the stored config_data layout.
func EncodeConfigData(m model.ColumnMapping) ([]byte, error) {
	if m == nil {
		m = model.ColumnMapping{}
	}
	return json.Marshal(configData{ColumnMappings: m})
}

// DecodeConfigData parses a stored config_data document.
func DecodeConfigData(raw []byte) (model.ColumnMapping, error) {
	var d configData
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%w: config_data: %w", common.ErrDatabaseCorrupted, err)
	}
	if d.ColumnMappings == nil {
		d.ColumnMappings = model.ColumnMapping{}
	}
	return d.ColumnMappings, nil
}

const configColumns = `SELECT id, config_name, config_data, last_updated FROM column_configurations`

func scanConfig(row scanner) (*model.ClientConfig, error) {
	var (
		c   model.ClientConfig
		raw string
	)
	if err := row.Scan(&c.ID, &c.Name, &raw, &c.UpdatedAt); err != nil {
		return nil, err
	}
	m, err := DecodeConfigData([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("config %d: %w", c.ID, err)
	}
	c.Mapping = m
	return &c, nil
}

// GetClientConfig returns a client configuration with its team associations.
func (s *SQLiteStorage) GetClientConfig(ctx context.Context, id int) (*model.ClientConfig, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := ValidateID(id, "config id"); err != nil {
		return nil, err
	}
	return s.getConfig(ctx, configColumns+` WHERE id = ?`, id)
}

// GetClientConfigByName returns a client configuration by its unique name.
func (s *SQLiteStorage) GetClientConfigByName(ctx context.Context, name string) (*model.ClientConfig, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := ValidateString(name, "config name"); err != nil {
		return nil, err
	}
	return s.getConfig(ctx, configColumns+` WHERE config_name = ?`, strings.TrimSpace(name))
}

func (s *SQLiteStorage) getConfig(ctx context.Context, query string, arg any) (*model.ClientConfig, error) {
	c, err := scanConfig(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client config %v: %w", arg, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query client config: %w", err)
	}

	teams, err := s.clientTeams(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.TeamIDs = teams
	return c, nil
}

// ListClientConfigs returns every client configuration ordered by name.
func (s *SQLiteStorage) ListClientConfigs(ctx context.Context) ([]model.ClientConfig, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, configColumns+` ORDER BY config_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query client configs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	configs := []model.ClientConfig{}
	for rows.Next() {
		c, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client config: %w", err)
		}
		configs = append(configs, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating client configs: %w", err)
	}

	assoc, err := s.allClientTeams(ctx)
	if err != nil {
		return nil, err
	}
	for i := range configs {
		configs[i].TeamIDs = assoc[configs[i].ID]
	}

	return configs, nil
}

// CreateClientConfig stores a new client configuration.
func (s *SQLiteStorage) CreateClientConfig(ctx context.Context, name string, m model.ColumnMapping) (*model.ClientConfig, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := ValidateString(name, "config name"); err != nil {
		return nil, err
	}
	if err := ValidateMapping(m); err != nil {
		return nil, err
	}

	data, err := EncodeConfigData(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mapping: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO column_configurations (config_name, config_data) VALUES (?, ?)`, name, string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create client config %q: %w", name, translateError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get client config ID: %w", err)
	}

	slog.Info("created client config", "id", id, "name", name, "mapped_fields", len(m))
	return s.GetClientConfig(ctx, int(id))
}

// UpdateClientConfig replaces a configuration's name and mapping.
func (s *SQLiteStorage) UpdateClientConfig(ctx context.Context, id int, name string, m model.ColumnMapping) (*model.ClientConfig, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := ValidateID(id, "config id"); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := ValidateString(name, "config name"); err != nil {
		return nil, err
	}
	if err := ValidateMapping(m); err != nil {
		return nil, err
	}

	data, err := EncodeConfigData(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mapping: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE column_configurations SET config_name = ?, config_data = ? WHERE id = ?`, name, string(data), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update client config %d: %w", id, translateError(err))
	}
	if err := requireAffected(res, "client config", id); err != nil {
		return nil, err
	}

	return s.GetClientConfig(ctx, id)
}

// DeleteClientConfig removes a configuration together with its rules and team associations.
func (s *SQLiteStorage) DeleteClientConfig(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := ValidateID(id, "config id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM column_configurations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client config %d: %w", id, translateError(err))
	}
	return requireAffected(res, "client config", id)
}

// SetClientTeams replaces the set of teams associated with a client.
func (s *SQLiteStorage) SetClientTeams(ctx context.Context, clientID int, teamIDs []int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := ValidateID(clientID, "config id"); err != nil {
		return err
	}
	for _, id := range teamIDs {
		if err := ValidateID(id, "team id"); err != nil {
			return err
		}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM column_configurations WHERE id = ?`, clientID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to verify client config: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("client config %d: %w", clientID, common.ErrNotFound)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM client_team_associations WHERE config_id = ?`, clientID); err != nil {
			return fmt.Errorf("failed to clear team associations: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR IGNORE INTO client_team_associations (config_id, team_id) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare association insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, teamID := range teamIDs {
			if _, err := stmt.ExecContext(ctx, clientID, teamID); err != nil {
				err = translateError(err)
				if errors.Is(err, ErrReferenced) {
					return fmt.Errorf("team %d: %w", teamID, common.ErrNotFound)
				}
				return fmt.Errorf("failed to associate team %d: %w", teamID, err)
			}
		}

		slog.Info("saved client team associations", "config_id", clientID, "teams", len(teamIDs))
		return nil
	})
}

func (s *SQLiteStorage) clientTeams(ctx context.Context, clientID int) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT team_id FROM client_team_associations WHERE config_id = ? ORDER BY team_id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query team associations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan team association: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStorage) allClientTeams(ctx context.Context) (map[int][]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT config_id, team_id FROM client_team_associations ORDER BY config_id, team_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query team associations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[int][]int)
	for rows.Next() {
		var configID, teamID int
		if err := rows.Scan(&configID, &teamID); err != nil {
			return nil, fmt.Errorf("failed to scan team association: %w", err)
		}
		out[configID] = append(out[configID], teamID)
	}
	return out, rows.Err()
}
