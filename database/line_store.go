// backend/database/line_store.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/gewnthar/presupuesto/backend/models"
)

// replaceLines clears and reloads the lines of a year inside tx. Line order
// is kept in the position column.
func replaceLines(ctx context.Context, tx *sql.Tx, year int, lines []models.BudgetLine) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM budget_lines WHERE year = ?", year); err != nil {
		return fmt.Errorf("failed to delete old budget lines for year %d: %w", year, err)
	}
	if len(lines) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO budget_lines (
			year, position, number, name, approved, modifications,
			current, executed, execution_percentage
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare budget line insert statement: %w", err)
	}
	defer stmt.Close()

	for i, line := range lines {
		_, err := stmt.ExecContext(ctx,
			year, i, line.Number, line.Name, line.Approved, line.Modifications,
			line.Current, line.Executed, line.ExecutionPercentage,
		)
		if err != nil {
			log.Printf("ERROR Database: Failed to save budget line %q for year %d: %v", line.Number, year, err)
			return fmt.Errorf("failed to insert budget line %d for year %d: %w", i, year, err)
		}
	}
	return nil
}

// GetLines returns the archived lines of a year in document order.
func (s *Store) GetLines(ctx context.Context, year int) ([]models.BudgetLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT number, name, approved, modifications, current, executed, execution_percentage
		FROM budget_lines
		WHERE year = ?
		ORDER BY position
	`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget lines for year %d: %w", year, err)
	}
	defer rows.Close()

	lines := make([]models.BudgetLine, 0)
	for rows.Next() {
		var l models.BudgetLine
		if err := rows.Scan(&l.Number, &l.Name, &l.Approved, &l.Modifications, &l.Current, &l.Executed, &l.ExecutionPercentage); err != nil {
			return nil, fmt.Errorf("failed to scan budget line for year %d: %w", year, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget lines for year %d: %w", year, err)
	}
	return lines, nil
}
