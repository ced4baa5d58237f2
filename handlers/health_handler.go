// backend/handlers/health_handler.go
package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gewnthar/presupuesto/backend/models"
)

// Pinger is implemented by the database store.
type Pinger interface {
	Ping() error
}

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health reports service status. A nil db means the service runs without a database.
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := healthStatus{Status: "ok", Database: "disabled"}
		if db != nil {
			if err := db.Ping(); err != nil {
				log.Printf("Handler: Health check failed: DB ping error: %v", err)
				status.Status = "error"
				status.Database = "unreachable"
				respondWithJSON(w, http.StatusServiceUnavailable, models.APIResponse{
					Success:   false,
					Data:      status,
					Error:     "database unreachable",
					Timestamp: time.Now().UTC(),
				})
				return
			}
			status.Database = "ok"
		}
		respondWithData(w, http.StatusOK, status, "")
	}
}
