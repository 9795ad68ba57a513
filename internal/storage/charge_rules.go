package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/wasteworks/chargemap/internal/common"
	"github.com/wasteworks/chargemap/internal/model"
)

// CreateChargeRule inserts a new pattern rule. The rule's ID is populated on
// success.
func (s *SQLiteStorage) CreateChargeRule(ctx context.Context, rule *model.ChargeRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateChargeRule(rule); err != nil {
		return err
	}

	var vendor sql.NullString
	isWildcard := 0
	if rule.Scope.IsWildcard() {
		isWildcard = 1
	} else {
		vendor = sql.NullString{String: rule.Scope.Vendor(), Valid: true}
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO charge_rules (is_wildcard, vendor, pattern, charge_type, service_type, priority, sample_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		isWildcard, vendor, rule.Pattern, rule.ChargeType,
		nullable(rule.ServiceType), rule.Priority, rule.SampleCount)
	if err != nil {
		return fmt.Errorf("failed to create charge rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get charge rule id: %w", err)
	}
	rule.ID = id
	return nil
}

// GetChargeRules returns all pattern rules in evaluation order: priority
// ascending, then insertion order.
func (s *SQLiteStorage) GetChargeRules(ctx context.Context) ([]model.ChargeRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, is_wildcard, vendor, pattern, charge_type, service_type,
		       priority, sample_count, created_at, updated_at
		FROM charge_rules
		ORDER BY priority ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query charge rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.ChargeRule
	for rows.Next() {
		var (
			rule        model.ChargeRule
			isWildcard  int
			vendor      sql.NullString
			serviceType sql.NullString
		)
		if err := rows.Scan(&rule.ID, &isWildcard, &vendor, &rule.Pattern,
			&rule.ChargeType, &serviceType, &rule.Priority, &rule.SampleCount,
			&rule.CreatedAt, &rule.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan charge rule: %w", err)
		}
		if isWildcard != 0 {
			rule.Scope = model.AnyVendor()
		} else {
			rule.Scope = model.VendorOnly(vendor.String)
		}
		rule.ServiceType = serviceType.String
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate charge rules: %w", err)
	}
	return rules, nil
}

// DeleteChargeRule removes a pattern rule by id.
func (s *SQLiteStorage) DeleteChargeRule(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM charge_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete charge rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("charge rule %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// IncrementChargeRuleSampleCount adds delta to a rule's provenance counter.
func (s *SQLiteStorage) IncrementChargeRuleSampleCount(ctx context.Context, id int64, delta int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE charge_rules
		SET sample_count = sample_count + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, delta, id)
	if err != nil {
		return fmt.Errorf("failed to update sample count: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("charge rule %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// nullable converts an empty string to a SQL NULL.
func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// isUniqueViolation reports whether err is a SQLite unique constraint error.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
