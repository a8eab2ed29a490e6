package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/service"
	"github.com/Veraticus/claims-triage/internal/storage"
)

// ruleTables names the table and text column for each rule type.
var ruleTables = map[model.RuleType]struct {
	table pgx.Identifier
	text  pgx.Identifier
}{
	model.RuleTypeEdit: {table: pgx.Identifier{"claim_edit_rules"}, text: pgx.Identifier{"edit_text"}},
	model.RuleTypeNote: {table: pgx.Identifier{"claim_note_rules"}, text: pgx.Identifier{"note_keyword"}},
}

// ListEditRules returns a client's edit rules.
func (s *Store) ListEditRules(ctx context.Context, clientID int) ([]model.Rule, error) {
	return s.ListRules(ctx, clientID, model.RuleTypeEdit)
}

// ListNoteRules returns a client's note rules.
func (s *Store) ListNoteRules(ctx context.Context, clientID int) ([]model.Rule, error) {
	return s.ListRules(ctx, clientID, model.RuleTypeNote)
}

// ListRules returns a client's rules of one type with category and team names.
func (s *Store) ListRules(ctx context.Context, clientID int, ruleType model.RuleType) ([]model.Rule, error) {
	if err := storage.ValidateID(clientID, "config id"); err != nil {
		return nil, err
	}
	if err := storage.ValidateRuleType(ruleType); err != nil {
		return nil, err
	}
	return s.queryRules(ctx, ruleType, `WHERE r.config_id = $1`, clientID)
}

// ListAllRules returns the rules of every client.
func (s *Store) ListAllRules(ctx context.Context) (model.RuleSet, error) {
	edits, err := s.queryRules(ctx, model.RuleTypeEdit, "")
	if err != nil {
		return model.RuleSet{}, err
	}
	notes, err := s.queryRules(ctx, model.RuleTypeNote, "")
	if err != nil {
		return model.RuleSet{}, err
	}
	return model.RuleSet{EditRules: edits, NoteRules: notes}, nil
}

func (s *Store) queryRules(ctx context.Context, ruleType model.RuleType, where string, args ...any) ([]model.Rule, error) {
	t := ruleTables[ruleType]
	query := fmt.Sprintf(`
		SELECT r.config_id, r.%s, r.category_id, c.category_name, COALESCE(t.team_name, ''),
			c.send_to_l1_monitor, r.last_seen
		FROM %s r
		INNER JOIN claim_categories c ON r.category_id = c.id
		LEFT JOIN teams t ON c.team_id = t.id
		%s
		ORDER BY r.id`, t.text.Sanitize(), t.table.Sanitize(), where)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s rules: %w", ruleType, err)
	}
	rules, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Rule, error) {
		var r model.Rule
		err := row.Scan(&r.ClientID, &r.Text, &r.CategoryID, &r.CategoryName, &r.TeamName, &r.SendToL1Monitor, &r.LastSeen)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan rules: %w", err)
	}
	return rules, nil
}

// UpsertRules saves a batch of rules in one transaction.
func (s *Store) UpsertRules(ctx context.Context, clientID int, ruleType model.RuleType, items []service.RuleAssignment) error {
	if err := storage.ValidateID(clientID, "config id"); err != nil {
		return err
	}
	if err := storage.ValidateRuleType(ruleType); err != nil {
		return err
	}
	if err := storage.ValidateAssignments(items); err != nil {
		return err
	}

	t := ruleTables[ruleType]
	upsert := fmt.Sprintf(`
		INSERT INTO %[1]s (config_id, %[2]s, category_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (config_id, %[2]s)
		DO UPDATE SET category_id = EXCLUDED.category_id, last_seen = CURRENT_TIMESTAMP`,
		t.table.Sanitize(), t.text.Sanitize())

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, it := range items {
			batch.Queue(upsert, clientID, it.Text, it.CategoryID)
		}
		br := tx.SendBatch(ctx, batch)
		for _, it := range items {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				err = translateError(err)
				if errors.Is(err, storage.ErrReferenced) {
					return fmt.Errorf("rule %q: config %d or category %d: %w", it.Text, clientID, it.CategoryID, common.ErrNotFound)
				}
				return fmt.Errorf("failed to save rule %q: %w", it.Text, err)
			}
		}
		return br.Close()
	})
	if err != nil {
		s.logger.Error("rule save rolled back", "config_id", clientID, "type", ruleType, "error", err)
		return err
	}

	s.logger.Info("saved rules", "config_id", clientID, "type", ruleType, "count", len(items))
	return nil
}

// DeleteRule removes one rule; a missing rule reports common.ErrNotFound.
func (s *Store) DeleteRule(ctx context.Context, clientID int, ruleType model.RuleType, text string) error {
	if err := storage.ValidateID(clientID, "config id"); err != nil {
		return err
	}
	if err := storage.ValidateRuleType(ruleType); err != nil {
		return err
	}
	if text == "" {
		return fmt.Errorf("%w: text", storage.ErrEmptyString)
	}

	t := ruleTables[ruleType]
	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE config_id = $1 AND %s = $2`, t.table.Sanitize(), t.text.Sanitize()),
		clientID, text)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return requireAffected(tag, string(ruleType)+" rule", fmt.Sprintf("%q", text))
}
