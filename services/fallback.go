// backend/services/fallback.go
package services

import (
	"log"
	"time"

	"github.com/gewnthar/presupuesto/backend/models"
)

const (
	SourceBCN      = "BCN - Biblioteca del Congreso Nacional"
	SourceFallback = "BCN - Biblioteca del Congreso Nacional (Fallback)"
	SourceManual   = "Carga manual"

	fallbackNote = "Datos no disponibles desde BCN. Se requiere verificación manual."
)

// FallbackSnapshot builds the placeholder returned when neither BCN nor any
// cached copy can provide data for the year.
func FallbackSnapshot(year int, sourceURL string, now time.Time) *models.BudgetSnapshot {
	log.Printf("Service: Using fallback data for BCN year %d\n", year)
	return &models.BudgetSnapshot{
		Year:        year,
		Source:      SourceFallback,
		SourceURL:   sourceURL,
		LastUpdated: now,
		IsRealData:  false,
		IsFallback:  true,
		Note:        fallbackNote,
		Lines:       []models.BudgetLine{},
	}
}
