// backend/services/prefetch.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"
)

const defaultPrefetchConcurrency = 4

// PrefetchResult summarizes what GetBudgetData produced for one year.
type PrefetchResult struct {
	Year       int    `json:"year"`
	Source     string `json:"source"`
	IsRealData bool   `json:"isRealData"`
	LinesCount int    `json:"linesCount"`
}

// SeedStaleFromArchive copies archived snapshots into the stale cache for
// every available year that has no stale entry yet. It returns how many
// years were seeded.
func (s *BcnService) SeedStaleFromArchive(ctx context.Context) (int, error) {
	if s.archive == nil {
		log.Println("Service: No snapshot archive configured, skipping stale cache seeding")
		return 0, nil
	}

	seeded := 0
	for _, year := range s.GetAvailableYears() {
		if err := ctx.Err(); err != nil {
			return seeded, err
		}
		if _, ok := s.cache.Get(ctx, StaleKey(year)); ok {
			continue
		}
		snapshot, err := s.archive.GetSnapshot(ctx, year)
		if err != nil {
			return seeded, fmt.Errorf("failed to read archived snapshot for year %d: %w", year, err)
		}
		if snapshot == nil {
			continue
		}
		data, err := json.Marshal(snapshot)
		if err != nil {
			return seeded, fmt.Errorf("failed to serialize archived snapshot for year %d: %w", year, err)
		}
		s.cache.Set(ctx, StaleKey(year), data, 0)
		seeded++
	}

	log.Printf("Service: Seeded stale cache for %d years from the archive\n", seeded)
	return seeded, nil
}

// Prefetch loads the given years concurrently, at most concurrency at a time,
// so later requests are served from the cache.
func (s *BcnService) Prefetch(ctx context.Context, years []int, concurrency int) ([]PrefetchResult, error) {
	if concurrency <= 0 {
		concurrency = defaultPrefetchConcurrency
	}

	results := make([]PrefetchResult, len(years))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, year := range years {
		i, year := i, year
		g.Go(func() error {
			snapshot, err := s.GetBudgetData(ctx, year)
			if err != nil {
				return fmt.Errorf("prefetch year %d: %w", year, err)
			}
			results[i] = PrefetchResult{
				Year:       snapshot.Year,
				Source:     snapshot.Source,
				IsRealData: snapshot.IsRealData,
				LinesCount: snapshot.LinesCount,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Printf("Service: Prefetched %d years\n", len(years))
	return results, nil
}
