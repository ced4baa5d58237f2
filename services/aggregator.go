// backend/services/aggregator.go
package services

import (
	"sort"

	"github.com/gewnthar/presupuesto/backend/models"
)

const currencyCLP = "CLP"

// AggregateMinistries groups the snapshot lines by ministry code, in document
// order, and sorts the groups by budget descending. Ties keep the order in
// which their first line appeared.
func AggregateMinistries(snapshot *models.BudgetSnapshot) []models.MinistryRollup {
	if snapshot == nil {
		return nil
	}

	index := make(map[string]int)
	rollups := make([]models.MinistryRollup, 0)
	for _, line := range snapshot.Lines {
		code, name := ClassifyMinistry(line.Name)
		i, ok := index[code]
		if !ok {
			i = len(rollups)
			index[code] = i
			rollups = append(rollups, models.MinistryRollup{Code: code, Name: name})
		}
		r := &rollups[i]
		r.Budget += line.Current
		r.Approved += line.Approved
		r.Modifications += line.Modifications
		r.Current += line.Current
		r.Executed += line.Executed
		r.Lines = append(r.Lines, line)
	}

	for i := range rollups {
		r := &rollups[i]
		r.ExecutionPercentage = models.Percentage(r.Executed, r.Current)
		r.Percentage = models.Percentage(r.Budget, snapshot.Totals.Current)
	}

	sort.SliceStable(rollups, func(a, b int) bool {
		return rollups[a].Budget > rollups[b].Budget
	})
	return rollups
}

// TransformToStandardFormat converts a snapshot into the application-wide
// budget shape. It returns nil for fallback snapshots, which carry nothing to show.
func TransformToStandardFormat(snapshot *models.BudgetSnapshot) *models.StandardBudget {
	if snapshot == nil || !snapshot.IsRealData || snapshot.IsFallback {
		return nil
	}

	ministries := AggregateMinistries(snapshot)
	return &models.StandardBudget{
		Year:                snapshot.Year,
		TotalBudget:         snapshot.Totals.Current,
		TotalApproved:       snapshot.Totals.Approved,
		TotalModifications:  snapshot.Totals.Modifications,
		TotalExecuted:       snapshot.Totals.Executed,
		ExecutionPercentage: snapshot.Totals.ExecutionPercentage,
		Currency:            currencyCLP,
		LastUpdated:         snapshot.LastUpdated,
		Source:              snapshot.Source,
		SourceURL:           snapshot.SourceURL,
		IsRealData:          snapshot.IsRealData,
		Ministries:          ministries,
		MinistriesCount:     len(ministries),
		LinesCount:          snapshot.LinesCount,
	}
}
