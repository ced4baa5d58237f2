// backend/models/budget.go
package models

import "time"

// BudgetLine is one "partida" row extracted from the BCN budget table.
// Amounts are in pesos: the table publishes thousands of pesos and the
// parser scales them by 1000.
type BudgetLine struct {
	Number              string  `json:"number"`
	Name                string  `json:"name"`
	Approved            float64 `json:"approved"`
	Modifications       float64 `json:"modifications"`
	Current             float64 `json:"current"`
	Executed            float64 `json:"executed"`
	ExecutionPercentage float64 `json:"executionPercentage"`
}

// IsRetained reports whether the line carries enough data to enter a snapshot.
func (l BudgetLine) IsRetained() bool {
	return l.Name != "" && (l.Approved > 0 || l.Current > 0)
}

// BudgetTotals holds the sums of every retained line.
type BudgetTotals struct {
	Approved            float64 `json:"approved"`
	Modifications       float64 `json:"modifications"`
	Current             float64 `json:"current"`
	Executed            float64 `json:"executed"`
	ExecutionPercentage float64 `json:"executionPercentage"`
}

// BudgetSnapshot is the parsed-and-aggregated budget of one fiscal year.
// It is built once per fetch and never mutated afterwards.
type BudgetSnapshot struct {
	Year        int          `json:"year"`
	Source      string       `json:"source"`
	SourceURL   string       `json:"sourceUrl"`
	LastUpdated time.Time    `json:"lastUpdated"`
	IsRealData  bool         `json:"isRealData"`
	IsFallback  bool         `json:"isFallback,omitempty"`
	Note        string       `json:"note,omitempty"`
	Totals      BudgetTotals `json:"totals"`
	Lines       []BudgetLine `json:"lines"`
	LinesCount  int          `json:"linesCount"`
}

// ComputeTotals sums the line fields and derives the execution percentage.
func ComputeTotals(lines []BudgetLine) BudgetTotals {
	var t BudgetTotals
	for _, l := range lines {
		t.Approved += l.Approved
		t.Modifications += l.Modifications
		t.Current += l.Current
		t.Executed += l.Executed
	}
	t.ExecutionPercentage = Percentage(t.Executed, t.Current)
	return t
}

// Percentage returns part/whole*100, or 0 when whole is 0.
func Percentage(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
