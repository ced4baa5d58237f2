// backend/handlers/bcn_handler.go
package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gewnthar/presupuesto/backend/services"
)

// GetYears lists the fiscal years served by BCN.
func GetYears(svc *services.BcnService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithData(w, http.StatusOK, svc.GetAvailableYears(), "")
	}
}

// GetAvailability probes the BCN site.
func GetAvailability(svc *services.BcnService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithData(w, http.StatusOK, svc.CheckAvailability(r.Context()), "")
	}
}

// GetBudget returns the snapshot of a year. Fallback snapshots are still a 200;
// their note is repeated in the message.
func GetBudget(svc *services.BcnService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, ok := yearParam(w, r)
		if !ok {
			return
		}
		snapshot, err := svc.GetBudgetData(r.Context(), year)
		if err != nil {
			log.Printf("ERROR Handler: Failed to get BCN data for year %d: %v", year, err)
			respondWithError(w, http.StatusInternalServerError, "failed to get budget data")
			return
		}
		respondWithData(w, http.StatusOK, snapshot, snapshot.Note)
	}
}

// GetStandardBudget returns the standard format of a year, or null data when
// only fallback data exists.
func GetStandardBudget(svc *services.BcnService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, ok := yearParam(w, r)
		if !ok {
			return
		}
		standard, err := svc.GetStandardBudget(r.Context(), year)
		if err != nil {
			log.Printf("ERROR Handler: Failed to build standard budget for year %d: %v", year, err)
			respondWithError(w, http.StatusInternalServerError, "failed to get budget data")
			return
		}
		if standard == nil {
			respondWithData(w, http.StatusOK, nil, fmt.Sprintf("No hay datos reales de BCN para el año %d", year))
			return
		}
		respondWithData(w, http.StatusOK, standard, "")
	}
}

// ListMinistries returns the ministry rollups of a year.
func ListMinistries(svc *services.BcnService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, ok := yearParam(w, r)
		if !ok {
			return
		}
		ministries, err := svc.ListMinistries(r.Context(), year)
		if err != nil {
			respondWithServiceError(w, year, err)
			return
		}
		respondWithData(w, http.StatusOK, ministries, "")
	}
}

// GetMinistry returns one ministry rollup by code.
func GetMinistry(svc *services.BcnService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, ok := yearParam(w, r)
		if !ok {
			return
		}
		ministry, err := svc.GetMinistry(r.Context(), year, chi.URLParam(r, "code"))
		if err != nil {
			respondWithServiceError(w, year, err)
			return
		}
		respondWithData(w, http.StatusOK, ministry, "")
	}
}

func respondWithServiceError(w http.ResponseWriter, year int, err error) {
	switch {
	case errors.Is(err, services.ErrMinistryNotFound), errors.Is(err, services.ErrNoRealData):
		respondWithError(w, http.StatusNotFound, err.Error())
	case services.IsKind(err, services.KindUnsupportedYear):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case services.IsKind(err, services.KindTransport), services.IsKind(err, services.KindExtraction):
		respondWithError(w, http.StatusBadGateway, err.Error())
	default:
		log.Printf("ERROR Handler: Request for year %d failed: %v", year, err)
		respondWithError(w, http.StatusInternalServerError, "internal error")
	}
}
