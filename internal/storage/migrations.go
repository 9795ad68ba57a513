package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/wasteworks/chargemap/internal/extract"
	"github.com/wasteworks/chargemap/internal/rules"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a fatal
// error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: rule tables, service map, invoices",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS charge_rules (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					is_wildcard INTEGER NOT NULL DEFAULT 0,
					vendor TEXT,
					pattern TEXT NOT NULL,
					charge_type TEXT NOT NULL,
					service_type TEXT,
					priority INTEGER NOT NULL,
					sample_count INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_charge_rules_order ON charge_rules(priority, id)`,

				`CREATE TABLE IF NOT EXISTS alias_rules (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					kind TEXT NOT NULL CHECK (kind IN ('equipment', 'material')),
					position INTEGER NOT NULL,
					label TEXT NOT NULL,
					patterns TEXT NOT NULL,
					UNIQUE(kind, label)
				)`,
				`CREATE INDEX idx_alias_rules_order ON alias_rules(kind, position)`,

				`CREATE TABLE IF NOT EXISTS account_services (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					account_id TEXT NOT NULL,
					equipment TEXT NOT NULL,
					material TEXT NOT NULL,
					service_id TEXT NOT NULL,
					UNIQUE(account_id, equipment, material)
				)`,
				`CREATE INDEX idx_account_services_account ON account_services(account_id)`,

				`CREATE TABLE IF NOT EXISTS invoices (
					md5 TEXT PRIMARY KEY,
					vendor_name TEXT,
					account_number TEXT,
					invoice_number TEXT,
					invoice_date TEXT,
					location_code TEXT,
					service_address TEXT,
					total TEXT,
					imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS line_items (
					id TEXT PRIMARY KEY,
					hash TEXT UNIQUE NOT NULL,
					invoice_md5 TEXT NOT NULL,
					vendor_name TEXT,
					account_id TEXT,
					description TEXT,
					full_text TEXT,
					amount TEXT,
					quantity REAL,
					unit_price TEXT,
					service_date TEXT,
					FOREIGN KEY (invoice_md5) REFERENCES invoices(md5)
				)`,
				`CREATE INDEX idx_line_items_vendor ON line_items(vendor_name)`,
				`CREATE INDEX idx_line_items_invoice ON line_items(invoice_md5)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Classification runs and results",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS runs (
					id TEXT PRIMARY KEY,
					started_at DATETIME NOT NULL,
					finished_at DATETIME NOT NULL,
					total INTEGER NOT NULL,
					vendor_matched INTEGER NOT NULL,
					default_matched INTEGER NOT NULL,
					unclassified INTEGER NOT NULL,
					resolved INTEGER NOT NULL,
					ambiguous INTEGER NOT NULL,
					not_found INTEGER NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS classifications (
					run_id TEXT NOT NULL,
					line_item_id TEXT NOT NULL,
					equipment TEXT NOT NULL,
					material TEXT NOT NULL,
					charge_type TEXT NOT NULL,
					service_type TEXT,
					match_tier TEXT NOT NULL,
					rule_id INTEGER,
					resolution_status TEXT NOT NULL,
					service_id TEXT,
					classified_at DATETIME NOT NULL,
					PRIMARY KEY (run_id, line_item_id),
					FOREIGN KEY (run_id) REFERENCES runs(id)
				)`,
				`CREATE INDEX idx_classifications_tier ON classifications(match_tier)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Seed default alias tables and wildcard charge rules",
		Up: func(tx *sql.Tx) error {
			seedAliases := func(kind string, aliases []aliasSeed) error {
				for i, alias := range aliases {
					patterns, err := json.Marshal(alias.patterns)
					if err != nil {
						return fmt.Errorf("failed to marshal patterns for %q: %w", alias.label, err)
					}
					_, err = tx.Exec(
						`INSERT INTO alias_rules (kind, position, label, patterns) VALUES (?, ?, ?, ?)`,
						kind, i, alias.label, string(patterns))
					if err != nil {
						return fmt.Errorf("failed to seed %s alias %q: %w", kind, alias.label, err)
					}
				}
				return nil
			}

			equipment := make([]aliasSeed, 0)
			for _, r := range extract.DefaultEquipmentRules() {
				equipment = append(equipment, aliasSeed{label: r.Label, patterns: r.Patterns})
			}
			materials := make([]aliasSeed, 0)
			for _, r := range extract.DefaultMaterialRules() {
				materials = append(materials, aliasSeed{label: r.Label, patterns: r.Patterns})
			}

			if err := seedAliases("equipment", equipment); err != nil {
				return err
			}
			if err := seedAliases("material", materials); err != nil {
				return err
			}

			for _, rule := range rules.DefaultChargeRules() {
				_, err := tx.Exec(
					`INSERT INTO charge_rules (is_wildcard, vendor, pattern, charge_type, service_type, priority)
					 VALUES (1, NULL, ?, ?, ?, ?)`,
					rule.Pattern, rule.ChargeType, rule.ServiceType, rule.Priority)
				if err != nil {
					return fmt.Errorf("failed to seed charge rule %q: %w", rule.ChargeType, err)
				}
			}

			return nil
		},
	},
}

type aliasSeed struct {
	label    string
	patterns []string
}

// Migrate applies all pending migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var current int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Description, err)
		}

		if _, err := tx.Exec(
			`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`,
			migration.Version, migration.Description); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		slog.Info("applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
