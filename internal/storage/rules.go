package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/service"
)

// ruleTable names the table and text column holding rules of one type.
type ruleTable struct {
	table string
	text  string
}

var ruleTables = map[model.RuleType]ruleTable{
	model.RuleTypeEdit: {table: "claim_edit_rules", text: "edit_text"},
	model.RuleTypeNote: {table: "claim_note_rules", text: "note_keyword"},
}

// ListEditRules returns a client's edit rules.
func (s *SQLiteStorage) ListEditRules(ctx context.Context, clientID int) ([]model.Rule, error) {
	return s.ListRules(ctx, clientID, model.RuleTypeEdit)
}

// ListNoteRules returns a client's note rules.
func (s *SQLiteStorage) ListNoteRules(ctx context.Context, clientID int) ([]model.Rule, error) {
	return s.ListRules(ctx, clientID, model.RuleTypeNote)
}

// ListRules returns a client's rules of one type joined with their category and team,
// in insertion order.
func (s *SQLiteStorage) ListRules(ctx context.Context, clientID int, ruleType model.RuleType) ([]model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := ValidateID(clientID, "config id"); err != nil {
		return nil, err
	}
	if err := ValidateRuleType(ruleType); err != nil {
		return nil, err
	}

	return s.queryRules(ctx, ruleTables[ruleType], `WHERE r.config_id = ?`, clientID)
}

// ListAllRules returns every client's rules.
func (s *SQLiteStorage) ListAllRules(ctx context.Context) (model.RuleSet, error) {
	if err := validateContext(ctx); err != nil {
		return model.RuleSet{}, err
	}

	edits, err := s.queryRules(ctx, ruleTables[model.RuleTypeEdit], "")
	if err != nil {
		return model.RuleSet{}, err
	}
	notes, err := s.queryRules(ctx, ruleTables[model.RuleTypeNote], "")
	if err != nil {
		return model.RuleSet{}, err
	}
	return model.RuleSet{EditRules: edits, NoteRules: notes}, nil
}

func (s *SQLiteStorage) queryRules(ctx context.Context, t ruleTable, where string, args ...any) ([]model.Rule, error) {
	// #nosec G201 - table and column names come from ruleTables
	query := fmt.Sprintf(`
		SELECT r.config_id, r.%s, r.category_id, c.category_name, COALESCE(t.team_name, ''),
			c.send_to_l1_monitor, r.last_seen
		FROM %s r
		INNER JOIN claim_categories c ON r.category_id = c.id
		LEFT JOIN teams t ON c.team_id = t.id
		%s
		ORDER BY r.rowid`, t.text, t.table, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.table, err)
	}
	defer func() { _ = rows.Close() }()

	rules := []model.Rule{}
	for rows.Next() {
		var r model.Rule
		if err := rows.Scan(&r.ClientID, &r.Text, &r.CategoryID, &r.CategoryName, &r.TeamName,
			&r.SendToL1Monitor, &r.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}
	return rules, nil
}

// UpsertRules saves a batch of rules for a client in a single transaction.
// Existing texts are re-pointed at the new category and their last_seen refreshed.
func (s *SQLiteStorage) UpsertRules(ctx context.Context, clientID int, ruleType model.RuleType, items []service.RuleAssignment) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := ValidateID(clientID, "config id"); err != nil {
		return err
	}
	if err := ValidateRuleType(ruleType); err != nil {
		return err
	}
	if err := ValidateAssignments(items); err != nil {
		return err
	}

	t := ruleTables[ruleType]
	// #nosec G201 - table and column names come from ruleTables
	upsert := fmt.Sprintf(`
		INSERT INTO %s (config_id, %s, category_id)
		VALUES (?, ?, ?)
		ON CONFLICT (config_id, %s)
		DO UPDATE SET category_id = excluded.category_id, last_seen = CURRENT_TIMESTAMP`, t.table, t.text, t.text)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsert)
		if err != nil {
			return fmt.Errorf("failed to prepare rule upsert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, it := range items {
			if _, err := stmt.ExecContext(ctx, clientID, it.Text, it.CategoryID); err != nil {
				err = translateError(err)
				if errors.Is(err, ErrReferenced) {
					return fmt.Errorf("rule %q: config %d or category %d: %w", it.Text, clientID, it.CategoryID, common.ErrNotFound)
				}
				return fmt.Errorf("failed to save rule %q: %w", it.Text, err)
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("rule save rolled back", "config_id", clientID, "type", ruleType, "error", err)
		return err
	}

	slog.Info("saved rules", "config_id", clientID, "type", ruleType, "count", len(items))
	return nil
}

// DeleteRule removes one rule. A missing rule reports common.ErrNotFound.
func (s *SQLiteStorage) DeleteRule(ctx context.Context, clientID int, ruleType model.RuleType, text string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := ValidateID(clientID, "config id"); err != nil {
		return err
	}
	if err := ValidateRuleType(ruleType); err != nil {
		return err
	}
	if text == "" {
		return fmt.Errorf("%w: text", ErrEmptyString)
	}

	t := ruleTables[ruleType]
	// #nosec G201 - table and column names come from ruleTables
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE config_id = ? AND %s = ?`, t.table, t.text), clientID, text)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return requireAffected(res, string(ruleType)+" rule", fmt.Sprintf("%q", text))
}
