// backend/database/schema.go
package database

import (
	"context"
	"fmt"
	"log"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS budget_snapshots (
		year INT NOT NULL PRIMARY KEY,
		source VARCHAR(255) NOT NULL,
		source_url VARCHAR(512) NOT NULL,
		last_updated DATETIME(3) NOT NULL,
		is_real_data BOOLEAN NOT NULL,
		total_approved DOUBLE NOT NULL,
		total_modifications DOUBLE NOT NULL,
		total_current DOUBLE NOT NULL,
		total_executed DOUBLE NOT NULL,
		execution_percentage DOUBLE NOT NULL,
		lines_count INT NOT NULL,
		archived_at DATETIME NOT NULL
	) CHARACTER SET utf8mb4`,
	`CREATE TABLE IF NOT EXISTS budget_lines (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		year INT NOT NULL,
		position INT NOT NULL,
		number VARCHAR(32) NOT NULL,
		name VARCHAR(512) NOT NULL,
		approved DOUBLE NOT NULL,
		modifications DOUBLE NOT NULL,
		current DOUBLE NOT NULL,
		executed DOUBLE NOT NULL,
		execution_percentage DOUBLE NOT NULL,
		UNIQUE KEY uq_budget_lines_year_position (year, position)
	) CHARACTER SET utf8mb4`,
	`CREATE TABLE IF NOT EXISTS source_versions (
		year INT NOT NULL PRIMARY KEY,
		source_url VARCHAR(512) NOT NULL,
		last_run_id CHAR(36) NOT NULL,
		last_outcome VARCHAR(16) NOT NULL,
		last_error TEXT NULL,
		lines_count INT NOT NULL,
		data_hash CHAR(64) NULL,
		last_checked_at DATETIME NOT NULL,
		last_successful_fetch_at DATETIME NULL,
		updated_at DATETIME NOT NULL
	) CHARACTER SET utf8mb4`,
}

// EnsureSchema creates the tables used by the store when they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	log.Printf("Database: Schema ready (%d tables)\n", len(schemaStatements))
	return nil
}
