package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/model"
)

// ListTeams returns all teams ordered by name.
func (s *SQLiteStorage) ListTeams(ctx context.Context) ([]model.Team, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, team_name, created_at FROM teams ORDER BY team_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer func() { _ = rows.Close() }()

	teams := []model.Team{}
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// CreateTeam creates a team. Names must be at least two characters and unique.
func (s *SQLiteStorage) CreateTeam(ctx context.Context, name string) (*model.Team, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := ValidateTeamName(name); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO teams (team_name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create team %q: %w", name, translateError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get team ID: %w", err)
	}

	var t model.Team
	err = s.db.QueryRowContext(ctx, `SELECT id, team_name, created_at FROM teams WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load team %d: %w", id, err)
	}

	slog.Info("created team", "id", t.ID, "name", t.Name)
	return &t, nil
}

// DeleteTeam removes a team. Teams that still own categories cannot be deleted.
func (s *SQLiteStorage) DeleteTeam(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := ValidateID(id, "team id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team %d: %w", id, translateError(err))
	}
	return requireAffected(res, "team", id)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func requireAffected(res rowsAffecter, what string, id any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %v: %w", what, id, common.ErrNotFound)
	}
	return nil
}
