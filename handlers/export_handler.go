// backend/handlers/export_handler.go
package handlers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"

	"github.com/xuri/excelize/v2"

	"github.com/gewnthar/presupuesto/backend/models"
	"github.com/gewnthar/presupuesto/backend/scraper"
	"github.com/gewnthar/presupuesto/backend/services"
)

const ministriesSheet = "Ministerios"

var ministryHeaders = []string{
	"Código", "Ministerio", "Presupuesto", "Aprobado", "Modificaciones",
	"Vigente", "Devengado", "% Ejecución", "% del Total", "Partidas",
}

// ExportLinesCSV streams the budget lines of a year as CSV.
func ExportLinesCSV(svc *services.BcnService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, ok := yearParam(w, r)
		if !ok {
			return
		}
		snapshot, err := svc.GetBudgetData(r.Context(), year)
		if err != nil {
			respondWithServiceError(w, year, err)
			return
		}

		var buf bytes.Buffer
		if err := scraper.WriteLinesCSV(&buf, snapshot.Lines); err != nil {
			log.Printf("ERROR Handler: Failed to write CSV for year %d: %v", year, err)
			respondWithError(w, http.StatusInternalServerError, "failed to write CSV")
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=presupuesto_%d.csv", year))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}

// ExportMinistriesXLSX returns the ministry rollups of a year as a spreadsheet.
func ExportMinistriesXLSX(svc *services.BcnService) http.HandlerFunc {
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

		buf, err := ministriesWorkbook(ministries)
		if err != nil {
			log.Printf("ERROR Handler: Failed to build workbook for year %d: %v", year, err)
			respondWithError(w, http.StatusInternalServerError, "failed to write Excel file")
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=ministerios_%d.xlsx", year))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}

func ministriesWorkbook(ministries []models.MinistryRollup) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ministriesSheet); err != nil {
		return nil, err
	}
	for i, header := range ministryHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(ministriesSheet, cell, header)
	}
	for i, m := range ministries {
		row := i + 2
		values := []interface{}{
			m.Code, m.Name, m.Budget, m.Approved, m.Modifications,
			m.Current, m.Executed, m.ExecutionPercentage, m.Percentage, len(m.Lines),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(ministriesSheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}
	return f.WriteToBuffer()
}
