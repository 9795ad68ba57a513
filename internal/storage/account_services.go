package storage

import (
	"context"
	"fmt"

	"github.com/wasteworks/chargemap/internal/common"
	"github.com/wasteworks/chargemap/internal/model"
)

// CreateAccountService inserts one service map entry. The composite key
// (account, equipment, material) is unique; a duplicate is a data problem in
// the billing export, not something to silently merge.
func (s *SQLiteStorage) CreateAccountService(ctx context.Context, entry *model.AccountService) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccountService(entry); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO account_services (account_id, equipment, material, service_id)
		VALUES (?, ?, ?, ?)`,
		entry.AccountID, entry.Equipment, entry.Material, entry.ServiceID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("service map entry (%s, %s, %s): %w",
				entry.AccountID, entry.Equipment, entry.Material, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create account service: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get account service id: %w", err)
	}
	entry.ID = id
	return nil
}

// GetAccountServices returns every service map entry.
func (s *SQLiteStorage) GetAccountServices(ctx context.Context) ([]model.AccountService, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, equipment, material, service_id
		FROM account_services
		ORDER BY account_id, equipment, material`)
	if err != nil {
		return nil, fmt.Errorf("failed to query account services: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.AccountService
	for rows.Next() {
		var entry model.AccountService
		if err := rows.Scan(&entry.ID, &entry.AccountID, &entry.Equipment,
			&entry.Material, &entry.ServiceID); err != nil {
			return nil, fmt.Errorf("failed to scan account service: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account services: %w", err)
	}
	return entries, nil
}
