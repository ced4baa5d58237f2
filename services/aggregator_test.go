package services

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/presupuesto/backend/models"
)

func snapshotOf(lines ...models.BudgetLine) *models.BudgetSnapshot {
	return &models.BudgetSnapshot{
		Year:        2024,
		Source:      SourceBCN,
		SourceURL:   "https://www.bcn.cl/presupuesto/periodo/2024",
		LastUpdated: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		IsRealData:  true,
		Totals:      models.ComputeTotals(lines),
		Lines:       lines,
		LinesCount:  len(lines),
	}
}

func TestAggregateMinistries_SingleLine(t *testing.T) {
	snapshot := snapshotOf(models.BudgetLine{
		Number:   "01",
		Name:     "Ministerio de Educación",
		Approved: 1000000000,
		Current:  1200000000,
		Executed: 900000000,
	})

	rollups := AggregateMinistries(snapshot)

	require.Len(t, rollups, 1)
	assert.Equal(t, "MINEDUC", rollups[0].Code)
	assert.Equal(t, "Ministerio de Educación", rollups[0].Name)
	assert.Equal(t, 1200000000.0, rollups[0].Budget)
	assert.Equal(t, 75.0, rollups[0].ExecutionPercentage)
	assert.Equal(t, 100.0, rollups[0].Percentage)
	assert.Len(t, rollups[0].Lines, 1)
}

func TestAggregateMinistries_GroupsAndSorts(t *testing.T) {
	snapshot := snapshotOf(
		models.BudgetLine{Number: "01", Name: "Ministerio de Salud - Subsecretaría", Approved: 100, Current: 100, Executed: 50},
		models.BudgetLine{Number: "02", Name: "Ministerio de Educación", Approved: 300, Current: 400, Executed: 100},
		models.BudgetLine{Number: "03", Name: "Ministerio de Salud - FONASA", Approved: 200, Current: 200, Executed: 150},
		models.BudgetLine{Number: "04", Name: "Congreso Nacional", Approved: 50, Current: 50},
	)

	rollups := AggregateMinistries(snapshot)

	require.Len(t, rollups, 3)
	assert.Equal(t, "MINEDUC", rollups[0].Code)
	assert.Equal(t, "MINSAL", rollups[1].Code)
	assert.Equal(t, "OTROS", rollups[2].Code)

	salud := rollups[1]
	assert.Equal(t, "Ministerio de Salud", salud.Name)
	assert.Equal(t, 300.0, salud.Budget)
	assert.Equal(t, 300.0, salud.Approved)
	assert.Equal(t, 200.0, salud.Executed)
	assert.InDelta(t, 66.666, salud.ExecutionPercentage, 0.001)
	assert.InDelta(t, 40.0, salud.Percentage, 1e-9)
	assert.Len(t, salud.Lines, 2)

	for i := 1; i < len(rollups); i++ {
		assert.GreaterOrEqual(t, rollups[i-1].Budget, rollups[i].Budget)
	}

	var sum float64
	for _, r := range rollups {
		sum += r.Budget
	}
	assert.True(t, math.Abs(sum-snapshot.Totals.Current) < 1e-6)
}

func TestAggregateMinistries_StableTies(t *testing.T) {
	snapshot := snapshotOf(
		models.BudgetLine{Name: "Ministerio de Defensa Nacional", Current: 100},
		models.BudgetLine{Name: "Ministerio de Justicia", Current: 100},
		models.BudgetLine{Name: "Ministerio de Hacienda", Current: 100},
	)

	rollups := AggregateMinistries(snapshot)

	require.Len(t, rollups, 3)
	assert.Equal(t, []string{"DEFENSA", "JUSTICIA", "HACIENDA"},
		[]string{rollups[0].Code, rollups[1].Code, rollups[2].Code})
}

func TestAggregateMinistries_ZeroTotals(t *testing.T) {
	snapshot := snapshotOf(models.BudgetLine{Name: "Ministerio de Salud", Approved: 10})

	rollups := AggregateMinistries(snapshot)

	require.Len(t, rollups, 1)
	assert.Equal(t, 0.0, rollups[0].ExecutionPercentage)
	assert.Equal(t, 0.0, rollups[0].Percentage)
}

func TestTransformToStandardFormat(t *testing.T) {
	snapshot := snapshotOf(
		models.BudgetLine{Name: "Ministerio de Salud", Approved: 100, Modifications: 10, Current: 110, Executed: 55},
		models.BudgetLine{Name: "Ministerio de Educación", Approved: 200, Current: 200, Executed: 100},
	)

	standard := TransformToStandardFormat(snapshot)

	require.NotNil(t, standard)
	assert.Equal(t, 2024, standard.Year)
	assert.Equal(t, "CLP", standard.Currency)
	assert.Equal(t, 310.0, standard.TotalBudget)
	assert.Equal(t, 300.0, standard.TotalApproved)
	assert.Equal(t, 10.0, standard.TotalModifications)
	assert.Equal(t, 155.0, standard.TotalExecuted)
	assert.InDelta(t, 50.0, standard.ExecutionPercentage, 1e-9)
	assert.Equal(t, 2, standard.MinistriesCount)
	assert.Equal(t, 2, standard.LinesCount)
	assert.Equal(t, "MINEDUC", standard.Ministries[0].Code)
	assert.Equal(t, snapshot.SourceURL, standard.SourceURL)
	assert.True(t, standard.IsRealData)
}

func TestTransformToStandardFormat_Fallback(t *testing.T) {
	fallback := FallbackSnapshot(2024, "https://www.bcn.cl/presupuesto/periodo/2024", time.Now())

	assert.Nil(t, TransformToStandardFormat(fallback))
	assert.Nil(t, TransformToStandardFormat(nil))

	notReal := snapshotOf(models.BudgetLine{Name: "Ministerio de Salud", Current: 1})
	notReal.IsRealData = false
	assert.Nil(t, TransformToStandardFormat(notReal))
}

func TestFallbackSnapshot(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	snapshot := FallbackSnapshot(2030, "https://example.test/periodo/2030", now)

	assert.Equal(t, 2030, snapshot.Year)
	assert.False(t, snapshot.IsRealData)
	assert.True(t, snapshot.IsFallback)
	assert.Equal(t, SourceFallback, snapshot.Source)
	assert.Equal(t, "https://example.test/periodo/2030", snapshot.SourceURL)
	assert.NotEmpty(t, snapshot.Note)
	assert.Equal(t, models.BudgetTotals{}, snapshot.Totals)
	assert.NotNil(t, snapshot.Lines)
	assert.Empty(t, snapshot.Lines)
	assert.Equal(t, now, snapshot.LastUpdated)
}
