package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/model"
)

const categoryColumns = `
		SELECT c.id, c.category_name, c.team_id, COALESCE(t.team_name, ''), c.send_to_l1_monitor, c.created_at
		FROM claim_categories c
		LEFT JOIN teams t ON c.team_id = t.id`

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(row scanner) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.TeamID, &c.TeamName, &c.SendToL1Monitor, &c.CreatedAt)
	return c, err
}

// ListCategories returns all categories ordered by team and category name.
func (s *SQLiteStorage) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, categoryColumns+` ORDER BY t.team_name, c.category_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := []model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategory returns a category by ID.
func (s *SQLiteStorage) GetCategory(ctx context.Context, id int) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := ValidateID(id, "category id"); err != nil {
		return nil, err
	}

	c, err := scanCategory(s.db.QueryRowContext(ctx, categoryColumns+` WHERE c.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &c, nil
}

// CreateCategory creates a category owned by teamID.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name string, teamID int, sendToL1Monitor bool) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := ValidateString(name, "category name"); err != nil {
		return nil, err
	}
	if err := ValidateID(teamID, "team id"); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO claim_categories (category_name, team_id, send_to_l1_monitor) VALUES (?, ?, ?)`,
		name, teamID, sendToL1Monitor)
	if err != nil {
		err = translateError(err)
		if errors.Is(err, ErrReferenced) {
			return nil, fmt.Errorf("team %d: %w", teamID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to create category %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	slog.Info("created category", "id", id, "name", name, "team_id", teamID)
	return s.GetCategory(ctx, int(id))
}

// DeleteCategory removes a category and every rule pointing at it.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := ValidateID(id, "category id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM claim_categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, translateError(err))
	}
	return requireAffected(res, "category", id)
}
