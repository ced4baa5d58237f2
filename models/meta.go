// backend/models/meta.go
package models

import "time"

// Outcome values recorded for each fetch attempt.
const (
	FetchOutcomeSuccess  = "success"
	FetchOutcomeStale    = "stale"
	FetchOutcomeFallback = "fallback"
	FetchOutcomeManual   = "manual"
)

// SourceVersion tracks, per fiscal year, when the BCN page was last checked and
// when it last produced usable data.
type SourceVersion struct {
	Year                  int        `db:"year" json:"year"`
	SourceURL             string     `db:"source_url" json:"source_url"`
	LastRunID             string     `db:"last_run_id" json:"last_run_id"`
	LastOutcome           string     `db:"last_outcome" json:"last_outcome"`
	LastError             string     `db:"last_error" json:"last_error,omitempty"`
	LinesCount            int        `db:"lines_count" json:"lines_count"`
	DataHash              string     `db:"data_hash" json:"data_hash,omitempty"` // SHA-256 of the snapshot JSON
	LastCheckedAt         time.Time  `db:"last_checked_at" json:"last_checked_at"`
	LastSuccessfulFetchAt *time.Time `db:"last_successful_fetch_at" json:"last_successful_fetch_at,omitempty"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}
