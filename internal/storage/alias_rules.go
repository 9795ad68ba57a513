package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wasteworks/chargemap/internal/model"
	"github.com/wasteworks/chargemap/internal/service"
)

// ReplaceAliasRules atomically swaps the ordered alias table of the given
// kind. Order is significant and preserved through the position column.
func (s *SQLiteStorage) ReplaceAliasRules(ctx context.Context, kind service.AliasKind, rules []model.AliasRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(string(kind), "kind"); err != nil {
		return err
	}
	for _, rule := range rules {
		if rule.Label == "" {
			return fmt.Errorf("%w: label is empty", ErrInvalidAliasRule)
		}
		if len(rule.Patterns) == 0 {
			return fmt.Errorf("%w: %q has no patterns", ErrInvalidAliasRule, rule.Label)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM alias_rules WHERE kind = ?`, string(kind)); err != nil {
		return fmt.Errorf("failed to clear %s alias rules: %w", kind, err)
	}

	for i, rule := range rules {
		patterns, err := json.Marshal(rule.Patterns)
		if err != nil {
			return fmt.Errorf("failed to marshal patterns for %q: %w", rule.Label, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO alias_rules (kind, position, label, patterns) VALUES (?, ?, ?, ?)`,
			string(kind), i, rule.Label, string(patterns)); err != nil {
			return fmt.Errorf("failed to insert alias rule %q: %w", rule.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit alias rules: %w", err)
	}
	return nil
}

// GetAliasRules returns the ordered alias table of the given kind.
func (s *SQLiteStorage) GetAliasRules(ctx context.Context, kind service.AliasKind) ([]model.AliasRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(string(kind), "kind"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT label, patterns
		FROM alias_rules
		WHERE kind = ?
		ORDER BY position ASC`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query alias rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.AliasRule
	for rows.Next() {
		var (
			rule     model.AliasRule
			patterns string
		)
		if err := rows.Scan(&rule.Label, &patterns); err != nil {
			return nil, fmt.Errorf("failed to scan alias rule: %w", err)
		}
		if err := json.Unmarshal([]byte(patterns), &rule.Patterns); err != nil {
			return nil, fmt.Errorf("failed to unmarshal patterns for %q: %w", rule.Label, err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alias rules: %w", err)
	}
	return rules, nil
}
