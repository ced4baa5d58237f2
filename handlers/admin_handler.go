// backend/handlers/admin_handler.go
package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gewnthar/presupuesto/backend/models"
	"github.com/gewnthar/presupuesto/backend/scraper"
	"github.com/gewnthar/presupuesto/backend/services"
)

const maxImportBytes = 10 << 20

// SourceVersionLister is implemented by the database store.
type SourceVersionLister interface {
	ListSourceVersions(ctx context.Context) ([]models.SourceVersion, error)
}

// RefreshYear forces a fetch from BCN, ignoring the cache.
// Expects POST requests to /api/admin/bcn/{year}/refresh.
func RefreshYear(svc *services.BcnService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, ok := yearParam(w, r)
		if !ok {
			return
		}
		log.Printf("Handler: Admin request to refresh BCN data for year %d\n", year)
		snapshot, err := svc.RefreshYear(r.Context(), year)
		if err != nil {
			respondWithServiceError(w, year, err)
			return
		}
		respondWithData(w, http.StatusOK, snapshot, fmt.Sprintf("Refreshed %d budget lines for %d", snapshot.LinesCount, year))
	}
}

// ImportLines stores a CSV of manually verified budget lines as the data of a year.
// Expects POST requests to /api/admin/bcn/{year}/import with a CSV body.
func ImportLines(svc *services.BcnService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, ok := yearParam(w, r)
		if !ok {
			return
		}
		lines, err := scraper.ParseLinesCSV(http.MaxBytesReader(w, r.Body, maxImportBytes))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid CSV: %v", err))
			return
		}
		snapshot, err := svc.ImportLines(r.Context(), year, lines)
		if err != nil {
			if services.IsKind(err, services.KindExtraction) {
				respondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
			respondWithServiceError(w, year, err)
			return
		}
		respondWithData(w, http.StatusCreated, snapshot, fmt.Sprintf("Imported %d budget lines for %d", snapshot.LinesCount, year))
	}
}

// FlushCache drops every cached snapshot.
func FlushCache(svc *services.BcnService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.FlushCache(r.Context())
		respondWithData(w, http.StatusOK, nil, "Cache flushed")
	}
}

// ListSourceVersions returns the fetch history recorded in the database.
func ListSourceVersions(versions SourceVersionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if versions == nil {
			respondWithError(w, http.StatusServiceUnavailable, "database is not configured")
			return
		}
		list, err := versions.ListSourceVersions(r.Context())
		if err != nil {
			log.Printf("ERROR Handler: Failed to list source versions: %v", err)
			respondWithError(w, http.StatusInternalServerError, "failed to list source versions")
			return
		}
		respondWithData(w, http.StatusOK, list, "")
	}
}
