package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wasteworks/chargemap/internal/model"
)

// SaveInvoice persists an invoice header and its line items in one
// transaction. Re-importing the same document is safe: the header upserts on
// md5 and line items dedupe on their content hash.
func (s *SQLiteStorage) SaveInvoice(ctx context.Context, invoice *model.Invoice) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateInvoice(invoice); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var total sql.NullString
	if invoice.Total != nil {
		total = sql.NullString{String: invoice.Total.StringFixed(2), Valid: true}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO invoices (md5, vendor_name, account_number, invoice_number,
			invoice_date, location_code, service_address, total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(md5) DO UPDATE SET
			vendor_name = excluded.vendor_name,
			account_number = excluded.account_number,
			invoice_number = excluded.invoice_number,
			invoice_date = excluded.invoice_date,
			location_code = excluded.location_code,
			service_address = excluded.service_address,
			total = excluded.total`,
		invoice.MD5, invoice.VendorName, invoice.AccountNumber,
		invoice.InvoiceNumber, invoice.InvoiceDate, invoice.LocationCode,
		invoice.ServiceAddress, total); err != nil {
		return fmt.Errorf("failed to save invoice %s: %w", invoice.MD5, err)
	}

	for _, item := range invoice.Items() {
		id := item.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO line_items (id, hash, invoice_md5, vendor_name, account_id,
				description, full_text, amount, quantity, unit_price, service_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(hash) DO NOTHING`,
			id, item.Hash, item.InvoiceMD5, item.VendorName, item.AccountID,
			item.Description, item.FullText, item.Amount.StringFixed(2),
			item.Quantity, item.UnitPrice.StringFixed(2), item.ServiceDate); err != nil {
			return fmt.Errorf("failed to save line item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit invoice %s: %w", invoice.MD5, err)
	}
	return nil
}

// GetLineItems returns stored line items, optionally filtered by vendor.
// An empty vendor returns everything.
func (s *SQLiteStorage) GetLineItems(ctx context.Context, vendor string) ([]model.LineItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, hash, invoice_md5, vendor_name, account_id, description,
		       full_text, amount, quantity, unit_price, service_date
		FROM line_items`
	args := []any{}
	if vendor != "" {
		query += ` WHERE vendor_name = ? COLLATE NOCASE`
		args = append(args, vendor)
	}
	query += ` ORDER BY invoice_md5, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.LineItem
	for rows.Next() {
		var (
			item      model.LineItem
			amount    string
			unitPrice string
		)
		if err := rows.Scan(&item.ID, &item.Hash, &item.InvoiceMD5,
			&item.VendorName, &item.AccountID, &item.Description, &item.FullText,
			&amount, &item.Quantity, &unitPrice, &item.ServiceDate); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		item.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount %q: %w", amount, err)
		}
		item.UnitPrice, err = decimal.NewFromString(unitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to parse unit price %q: %w", unitPrice, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate line items: %w", err)
	}
	return items, nil
}
