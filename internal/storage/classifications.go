package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/wasteworks/chargemap/internal/model"
	"github.com/wasteworks/chargemap/internal/service"
)

// SaveRun persists the summary of one classification run.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run *service.RunRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if err := validateString(run.ID, "run id"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, total, vendor_matched,
			default_matched, unclassified, resolved, ambiguous, not_found)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.FinishedAt, run.Total, run.VendorMatched,
		run.DefaultMatched, run.Unclassified, run.Resolved, run.Ambiguous,
		run.NotFound)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

// SaveClassifications persists per-line results for a run. Ambiguous
// candidates collapse to a comma-joined service_id so reviewers can still see
// the collision set.
func (s *SQLiteStorage) SaveClassifications(ctx context.Context, runID string, results []model.ClassifiedLineItem) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(runID, "run id"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO classifications (run_id, line_item_id, equipment, material,
			charge_type, service_type, match_tier, rule_id, resolution_status,
			service_id, classified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare classification insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, result := range results {
		var ruleID sql.NullInt64
		if result.RuleID != 0 {
			ruleID = sql.NullInt64{Int64: result.RuleID, Valid: true}
		}

		serviceID := result.Service.ServiceID
		if result.Service.Status == model.ResolutionAmbiguous {
			serviceID = strings.Join(result.Service.Candidates, ",")
		}

		if _, err := stmt.ExecContext(ctx,
			runID, result.LineItem.ID, result.Equipment, result.Material,
			result.ChargeType, nullable(result.ServiceType), string(result.Tier),
			ruleID, string(result.Service.Status), nullable(serviceID),
			result.ClassifiedAt); err != nil {
			return fmt.Errorf("failed to save classification for %s: %w", result.LineItem.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit classifications: %w", err)
	}
	return nil
}

// GetRunSummaries returns the most recent run summaries, newest first.
func (s *SQLiteStorage) GetRunSummaries(ctx context.Context, limit int) ([]service.RunRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, total, vendor_matched,
		       default_matched, unclassified, resolved, ambiguous, not_found
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []service.RunRecord
	for rows.Next() {
		var run service.RunRecord
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Total,
			&run.VendorMatched, &run.DefaultMatched, &run.Unclassified,
			&run.Resolved, &run.Ambiguous, &run.NotFound); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}
