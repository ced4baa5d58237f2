// backend/database/source_version_store.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/gewnthar/presupuesto/backend/models"
)

// LogSourceVersion records the outcome of a fetch attempt for a year. The
// hash and the last successful fetch time survive failed attempts.
func (s *Store) LogSourceVersion(ctx context.Context, v models.SourceVersion) error {
	var lastError, dataHash sql.NullString
	if v.LastError != "" {
		lastError = sql.NullString{String: v.LastError, Valid: true}
	}
	if v.DataHash != "" {
		dataHash = sql.NullString{String: v.DataHash, Valid: true}
	}
	var lastSuccess sql.NullTime
	if v.LastSuccessfulFetchAt != nil {
		lastSuccess = sql.NullTime{Time: *v.LastSuccessfulFetchAt, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO source_versions (
			year, source_url, last_run_id, last_outcome, last_error,
			lines_count, data_hash, last_checked_at, last_successful_fetch_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			source_url = VALUES(source_url),
			last_run_id = VALUES(last_run_id),
			last_outcome = VALUES(last_outcome),
			last_error = VALUES(last_error),
			lines_count = IF(VALUES(last_successful_fetch_at) IS NULL, lines_count, VALUES(lines_count)),
			data_hash = COALESCE(VALUES(data_hash), data_hash),
			last_checked_at = VALUES(last_checked_at),
			last_successful_fetch_at = COALESCE(VALUES(last_successful_fetch_at), last_successful_fetch_at),
			updated_at = NOW()
	`,
		v.Year, v.SourceURL, v.LastRunID, v.LastOutcome, lastError,
		v.LinesCount, dataHash, v.LastCheckedAt, lastSuccess,
	)
	if err != nil {
		log.Printf("ERROR Database: Failed to log source version for year %d: %v", v.Year, err)
		return fmt.Errorf("failed to log source version for year %d: %w", v.Year, err)
	}

	log.Printf("Database: Logged %s fetch for year %d (run %s)\n", v.LastOutcome, v.Year, v.LastRunID)
	return nil
}

// ListSourceVersions retrieves the fetch history of every year.
func (s *Store) ListSourceVersions(ctx context.Context) ([]models.SourceVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT year, source_url, last_run_id, last_outcome, last_error,
		       lines_count, data_hash, last_checked_at, last_successful_fetch_at, updated_at
		FROM source_versions
		ORDER BY year
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query source_versions: %w", err)
	}
	defer rows.Close()

	versions := make([]models.SourceVersion, 0)
	for rows.Next() {
		var v models.SourceVersion
		var lastError, dataHash sql.NullString
		var lastSuccess sql.NullTime

		err := rows.Scan(
			&v.Year, &v.SourceURL, &v.LastRunID, &v.LastOutcome, &lastError,
			&v.LinesCount, &dataHash, &v.LastCheckedAt, &lastSuccess, &v.UpdatedAt,
		)
		if err != nil {
			log.Printf("ERROR Database: Failed to scan source_versions row: %v", err)
			continue
		}
		v.LastError = lastError.String
		v.DataHash = dataHash.String
		if lastSuccess.Valid {
			v.LastSuccessfulFetchAt = &lastSuccess.Time
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source_versions rows: %w", err)
	}
	return versions, nil
}
