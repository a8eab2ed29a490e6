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

// ListTeams returns all teams ordered by name.
func (s *Store) ListTeams(ctx context.Context) ([]model.Team, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, team_name, created_at FROM teams ORDER BY team_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	teams, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Team, error) {
		var t model.Team
		err := row.Scan(&t.ID, &t.Name, &t.CreatedAt)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan teams: %w", err)
	}
	return teams, nil
}

// CreateTeam creates a team.
func (s *Store) CreateTeam(ctx context.Context, name string) (*model.Team, error) {
	name = strings.TrimSpace(name)
	if err := storage.ValidateTeamName(name); err != nil {
		return nil, err
	}

	var t model.Team
	err := s.pool.QueryRow(ctx,
		`INSERT INTO teams (team_name) VALUES ($1) RETURNING id, team_name, created_at`, name).
		Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create team %q: %w", name, translateError(err))
	}

	s.logger.Info("created team", "id", t.ID, "name", t.Name)
	return &t, nil
}

// DeleteTeam removes a team that owns no categories.
func (s *Store) DeleteTeam(ctx context.Context, id int) error {
	if err := storage.ValidateID(id, "team id"); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team %d: %w", id, translateError(err))
	}
	return requireAffected(tag, "team", id)
}

const categoryQuery = `
	SELECT c.id, c.category_name, c.team_id, COALESCE(t.team_name, ''), c.send_to_l1_monitor, c.created_at
	FROM claim_categories c
	LEFT JOIN teams t ON c.team_id = t.id`

func scanCategory(row pgx.Row) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.TeamID, &c.TeamName, &c.SendToL1Monitor, &c.CreatedAt)
	return c, err
}

// ListCategories returns categories ordered by team and name.
func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.pool.Query(ctx, categoryQuery+` ORDER BY t.team_name, c.category_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	cats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Category, error) {
		return scanCategory(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}
	return cats, nil
}

// GetCategory returns a category by ID.
func (s *Store) GetCategory(ctx context.Context, id int) (*model.Category, error) {
	if err := storage.ValidateID(id, "category id"); err != nil {
		return nil, err
	}
	c, err := scanCategory(s.pool.QueryRow(ctx, categoryQuery+` WHERE c.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &c, nil
}

// CreateCategory creates a category owned by teamID.
func (s *Store) CreateCategory(ctx context.Context, name string, teamID int, sendToL1Monitor bool) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if err := storage.ValidateString(name, "category name"); err != nil {
		return nil, err
	}
	if err := storage.ValidateID(teamID, "team id"); err != nil {
		return nil, err
	}

	var id int
	err := s.pool.QueryRow(ctx,
		`INSERT INTO claim_categories (category_name, team_id, send_to_l1_monitor) VALUES ($1, $2, $3) RETURNING id`,
		name, teamID, sendToL1Monitor).Scan(&id)
	if err != nil {
		err = translateError(err)
		if errors.Is(err, storage.ErrReferenced) {
			return nil, fmt.Errorf("team %d: %w", teamID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to create category %q: %w", name, err)
	}

	s.logger.Info("created category", "id", id, "name", name, "team_id", teamID)
	return s.GetCategory(ctx, id)
}

// DeleteCategory removes a category and its rules.
func (s *Store) DeleteCategory(ctx context.Context, id int) error {
	if err := storage.ValidateID(id, "category id"); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM claim_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, translateError(err))
	}
	return requireAffected(tag, "category", id)
}
