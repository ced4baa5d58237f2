// backend/services/ministry_service.go
package services

import (
	"context"
	"fmt"
	"log"

	"github.com/gewnthar/presupuesto/backend/models"
	"github.com/gewnthar/presupuesto/backend/utils"
)

// FindMinistry returns the rollup with the given code from the snapshot.
func FindMinistry(snapshot *models.BudgetSnapshot, code string) (*models.MinistryRollup, error) {
	code = utils.NormalizeMinistryCode(code)
	for _, rollup := range AggregateMinistries(snapshot) {
		if rollup.Code == code {
			r := rollup
			return &r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMinistryNotFound, code)
}

// GetMinistry looks up one ministry in the budget of a year. Fallback
// snapshots have no ministries and yield ErrNoRealData.
func (s *BcnService) GetMinistry(ctx context.Context, year int, code string) (*models.MinistryRollup, error) {
	log.Printf("Service: Looking up ministry %s for year %d\n", code, year)
	snapshot, err := s.GetBudgetData(ctx, year)
	if err != nil {
		return nil, err
	}
	if !snapshot.IsRealData || snapshot.IsFallback {
		return nil, fmt.Errorf("%w: %d", ErrNoRealData, year)
	}
	return FindMinistry(snapshot, code)
}

// ListMinistries returns the rollups of a year sorted by budget, or
// ErrNoRealData when only fallback data is available.
func (s *BcnService) ListMinistries(ctx context.Context, year int) ([]models.MinistryRollup, error) {
	standard, err := s.GetStandardBudget(ctx, year)
	if err != nil {
		return nil, err
	}
	if standard == nil {
		return nil, fmt.Errorf("%w: %d", ErrNoRealData, year)
	}
	return standard.Ministries, nil
}
