// backend/handlers/respond.go
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gewnthar/presupuesto/backend/models"
	"github.com/gewnthar/presupuesto/backend/utils"
)

// Helper to respond with JSON
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR Handler: Error marshalling JSON response: %v", err)
		http.Error(w, `{"success":false,"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithData wraps data in the success envelope.
func respondWithData(w http.ResponseWriter, code int, data interface{}, message string) {
	respondWithJSON(w, code, models.APIResponse{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// Helper to respond with an error
func respondWithError(w http.ResponseWriter, code int, message string) {
	log.Printf("Handler: API Error %d: %s", code, message)
	respondWithJSON(w, code, models.APIResponse{
		Success:   false,
		Error:     message,
		Timestamp: time.Now().UTC(),
	})
}

// yearParam reads the {year} route parameter, answering 400 when it is not a number.
func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := utils.ParseYear(chi.URLParam(r, "year"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return year, true
}
