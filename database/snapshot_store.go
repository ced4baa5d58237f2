// backend/database/snapshot_store.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/gewnthar/presupuesto/backend/models"
)

// SaveSnapshot upserts the snapshot header and replaces the lines of its year
// in a single transaction.
func (s *Store) SaveSnapshot(ctx context.Context, snapshot *models.BudgetSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("cannot archive a nil snapshot")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for snapshot %d: %w", snapshot.Year, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO budget_snapshots (
			year, source, source_url, last_updated, is_real_data,
			total_approved, total_modifications, total_current, total_executed,
			execution_percentage, lines_count, archived_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			source = VALUES(source),
			source_url = VALUES(source_url),
			last_updated = VALUES(last_updated),
			is_real_data = VALUES(is_real_data),
			total_approved = VALUES(total_approved),
			total_modifications = VALUES(total_modifications),
			total_current = VALUES(total_current),
			total_executed = VALUES(total_executed),
			execution_percentage = VALUES(execution_percentage),
			lines_count = VALUES(lines_count),
			archived_at = NOW()
	`,
		snapshot.Year, snapshot.Source, snapshot.SourceURL, snapshot.LastUpdated, snapshot.IsRealData,
		snapshot.Totals.Approved, snapshot.Totals.Modifications, snapshot.Totals.Current, snapshot.Totals.Executed,
		snapshot.Totals.ExecutionPercentage, snapshot.LinesCount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot for year %d: %w", snapshot.Year, err)
	}

	if err := replaceLines(ctx, tx, snapshot.Year, snapshot.Lines); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot for year %d: %w", snapshot.Year, err)
	}

	log.Printf("Database: Archived snapshot for year %d with %d lines\n", snapshot.Year, len(snapshot.Lines))
	return nil
}

// GetSnapshot loads the archived snapshot of a year. Not found is not an
// error: it returns nil, nil.
func (s *Store) GetSnapshot(ctx context.Context, year int) (*models.BudgetSnapshot, error) {
	var snapshot models.BudgetSnapshot
	row := s.db.QueryRowContext(ctx, `
		SELECT year, source, source_url, last_updated, is_real_data,
		       total_approved, total_modifications, total_current, total_executed,
		       execution_percentage, lines_count
		FROM budget_snapshots
		WHERE year = ?
	`, year)

	err := row.Scan(
		&snapshot.Year, &snapshot.Source, &snapshot.SourceURL, &snapshot.LastUpdated, &snapshot.IsRealData,
		&snapshot.Totals.Approved, &snapshot.Totals.Modifications, &snapshot.Totals.Current, &snapshot.Totals.Executed,
		&snapshot.Totals.ExecutionPercentage, &snapshot.LinesCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query snapshot for year %d: %w", year, err)
	}

	lines, err := s.GetLines(ctx, year)
	if err != nil {
		return nil, err
	}
	snapshot.Lines = lines
	return &snapshot, nil
}
