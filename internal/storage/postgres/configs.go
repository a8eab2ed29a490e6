package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/storage"
)

const configQuery = `
	SELECT c.id, c.config_name, c.config_data, c.last_updated,
		COALESCE(array_agg(a.team_id ORDER BY a.team_id) FILTER (WHERE a.team_id IS NOT NULL), '{}')
	FROM column_configurations c
	LEFT JOIN client_team_associations a ON a.config_id = c.id`

func scanConfig(row pgx.Row) (*model.ClientConfig, error) {
	var (
		c     model.ClientConfig
		raw   []byte
		teams []int32
	)
	if err := row.Scan(&c.ID, &c.Name, &raw, &c.UpdatedAt, &teams); err != nil {
		return nil, err
	}
	m, err := storage.DecodeConfigData(raw)
	if err != nil {
		return nil, fmt.Errorf("config %d: %w", c.ID, err)
	}
	c.Mapping = m
	for _, t := range teams {
		c.TeamIDs = append(c.TeamIDs, int(t))
	}
	return &c, nil
}

// GetClientConfig returns a client configuration with its team associations.
func (s *Store) GetClientConfig(ctx context.Context, id int) (*model.ClientConfig, error) {
	if err := storage.ValidateID(id, "config id"); err != nil {
		return nil, err
	}
	return s.getConfig(ctx, configQuery+` WHERE c.id = $1 GROUP BY c.id`, id)
}

// GetClientConfigByName returns a client configuration by name.
func (s *Store) GetClientConfigByName(ctx context.Context, name string) (*model.ClientConfig, error) {
	if err := storage.ValidateString(name, "config name"); err != nil {
		return nil, err
	}
	return s.getConfig(ctx, configQuery+` WHERE c.config_name = $1 GROUP BY c.id`, strings.TrimSpace(name))
}

func (s *Store) getConfig(ctx context.Context, query string, arg any) (*model.ClientConfig, error) {
	c, err := scanConfig(s.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("client config %v: %w", arg, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query client config: %w", err)
	}
	return c, nil
}

// ListClientConfigs returns every client configuration ordered by name.
func (s *Store) ListClientConfigs(ctx context.Context) ([]model.ClientConfig, error) {
	rows, err := s.pool.Query(ctx, configQuery+` GROUP BY c.id ORDER BY c.config_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query client configs: %w", err)
	}
	configs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ClientConfig, error) {
		c, err := scanConfig(row)
		if err != nil {
			return model.ClientConfig{}, err
		}
		return *c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan client configs: %w", err)
	}
	return configs, nil
}

// CreateClientConfig stores a new client configuration.
func (s *Store) CreateClientConfig(ctx context.Context, name string, m model.ColumnMapping) (*model.ClientConfig, error) {
	name = strings.TrimSpace(name)
	if err := storage.ValidateString(name, "config name"); err != nil {
		return nil, err
	}
	if err := storage.ValidateMapping(m); err != nil {
		return nil, err
	}
	data, err := storage.EncodeConfigData(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mapping: %w", err)
	}

	var id int
	err = s.pool.QueryRow(ctx,
		`INSERT INTO column_configurations (config_name, config_data) VALUES ($1, $2) RETURNING id`,
		name, data).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create client config %q: %w", name, translateError(err))
	}

	s.logger.Info("created client config", "id", id, "name", name)
	return s.GetClientConfig(ctx, id)
}

// UpdateClientConfig replaces a configuration's name and mapping.
func (s *Store) UpdateClientConfig(ctx context.Context, id int, name string, m model.ColumnMapping) (*model.ClientConfig, error) {
	if err := storage.ValidateID(id, "config id"); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := storage.ValidateString(name, "config name"); err != nil {
		return nil, err
	}
	if err := storage.ValidateMapping(m); err != nil {
		return nil, err
	}
	data, err := storage.EncodeConfigData(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mapping: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE column_configurations SET config_name = $1, config_data = $2, last_updated = now() WHERE id = $3`,
		name, data, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update client config %d: %w", id, translateError(err))
	}
	if err := requireAffected(tag, "client config", id); err != nil {
		return nil, err
	}
	return s.GetClientConfig(ctx, id)
}

// DeleteClientConfig removes a configuration with its rules and associations.
func (s *Store) DeleteClientConfig(ctx context.Context, id int) error {
	if err := storage.ValidateID(id, "config id"); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM column_configurations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client config %d: %w", id, translateError(err))
	}
	return requireAffected(tag, "client config", id)
}

// SetClientTeams replaces the set of teams associated with a client.
func (s *Store) SetClientTeams(ctx context.Context, clientID int, teamIDs []int) error {
	if err := storage.ValidateID(clientID, "config id"); err != nil {
		return err
	}
	for _, id := range teamIDs {
		if err := storage.ValidateID(id, "team id"); err != nil {
			return err
		}
	}

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM column_configurations WHERE id = $1)`, clientID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to verify client config: %w", err)
		}
		if !exists {
			return fmt.Errorf("client config %d: %w", clientID, common.ErrNotFound)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM client_team_associations WHERE config_id = $1`, clientID); err != nil {
			return fmt.Errorf("failed to clear team associations: %w", err)
		}
		if len(teamIDs) == 0 {
			return nil
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO client_team_associations (config_id, team_id)
			SELECT $1, unnest($2::int[])
			ON CONFLICT DO NOTHING`, clientID, teamIDs)
		if err != nil {
			err = translateError(err)
			if errors.Is(err, storage.ErrReferenced) {
				return fmt.Errorf("team: %w", common.ErrNotFound)
			}
			return fmt.Errorf("failed to save team associations: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("team association save rolled back", "config_id", clientID, "error", err)
		return err
	}

	s.logger.Info("saved client team associations", "config_id", clientID, "teams", len(teamIDs))
	return nil
}
