// backend/services/bcn_service.go
package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/gewnthar/presupuesto/backend/cache"
	"github.com/gewnthar/presupuesto/backend/models"
	"github.com/gewnthar/presupuesto/backend/scraper"
)

const (
	DefaultBaseURL             = "https://www.bcn.cl/presupuesto"
	DefaultFirstYear           = 2010
	DefaultCacheTTL            = 24 * time.Hour
	DefaultAvailabilityTimeout = 5 * time.Second

	availableMessage = "BCN service is available"
)

// SnapshotArchive persists successful snapshots beyond the cache lifetime.
type SnapshotArchive interface {
	SaveSnapshot(ctx context.Context, snapshot *models.BudgetSnapshot) error
	// GetSnapshot returns nil, nil when the year was never archived.
	GetSnapshot(ctx context.Context, year int) (*models.BudgetSnapshot, error)
}

// FetchLog records the outcome of every fetch attempt.
type FetchLog interface {
	LogSourceVersion(ctx context.Context, version models.SourceVersion) error
}

// BcnOptions configures a BcnService. Zero values take the defaults above;
// Archive and FetchLog are optional.
type BcnOptions struct {
	BaseURL             string
	FirstYear           int
	CacheTTL            time.Duration
	AvailabilityTimeout time.Duration
	Archive             SnapshotArchive
	FetchLog            FetchLog
	Now                 func() time.Time
}

// BcnService fetches, parses and caches the BCN budget of each fiscal year.
type BcnService struct {
	cache               cache.Cache
	fetcher             scraper.DocumentFetcher
	archive             SnapshotArchive
	fetchLog            FetchLog
	baseURL             string
	firstYear           int
	cacheTTL            time.Duration
	availabilityTimeout time.Duration
	now                 func() time.Time
	inflight            singleflight.Group
}

func NewBcnService(c cache.Cache, fetcher scraper.DocumentFetcher, opts BcnOptions) *BcnService {
	s := &BcnService{
		cache:               c,
		fetcher:             fetcher,
		archive:             opts.Archive,
		fetchLog:            opts.FetchLog,
		baseURL:             strings.TrimRight(opts.BaseURL, "/"),
		firstYear:           opts.FirstYear,
		cacheTTL:            opts.CacheTTL,
		availabilityTimeout: opts.AvailabilityTimeout,
		now:                 opts.Now,
	}
	if s.baseURL == "" {
		s.baseURL = DefaultBaseURL
	}
	if s.firstYear == 0 {
		s.firstYear = DefaultFirstYear
	}
	if s.cacheTTL == 0 {
		s.cacheTTL = DefaultCacheTTL
	}
	if s.availabilityTimeout == 0 {
		s.availabilityTimeout = DefaultAvailabilityTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// CacheKey is the primary cache key of a year.
func CacheKey(year int) string {
	return fmt.Sprintf("bcn_budget_%d", year)
}

// StaleKey is the key of the last good copy of a year, kept without expiry.
func StaleKey(year int) string {
	return "stale_" + CacheKey(year)
}

// SourceURL is the BCN page of a fiscal year.
func (s *BcnService) SourceURL(year int) string {
	return fmt.Sprintf("%s/periodo/%d", s.baseURL, year)
}

// GetAvailableYears returns every year from the first published one up to next year.
func (s *BcnService) GetAvailableYears() []int {
	last := s.now().Year() + 1
	if s.firstYear > last {
		return []int{}
	}
	years := make([]int, 0, last-s.firstYear+1)
	for y := s.firstYear; y <= last; y++ {
		years = append(years, y)
	}
	return years
}

func (s *BcnService) IsSupportedYear(year int) bool {
	return year >= s.firstYear && year <= s.now().Year()+1
}

// GetBudgetData returns the snapshot of a year. A cached copy is returned
// without touching the network. Fetch failures are answered with the stale
// copy, the archived copy or a fallback snapshot, in that order, so the
// returned error is only set for failures outside the fetch pipeline.
func (s *BcnService) GetBudgetData(ctx context.Context, year int) (*models.BudgetSnapshot, error) {
	if snapshot, ok := s.cached(ctx, CacheKey(year)); ok {
		log.Printf("Service: BCN cache hit for year %d\n", year)
		return snapshot, nil
	}

	// The shared fetch outlives any single caller; each caller stops waiting
	// when its own context ends.
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.inflight.DoChan(strconv.Itoa(year), func() (interface{}, error) {
		return s.loadYear(fetchCtx, year)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			log.Printf("Service: Shared in-flight BCN fetch for year %d\n", year)
		}
		return res.Val.(*models.BudgetSnapshot), nil
	}
}

// GetStandardBudget returns the standard format of a year, or nil when only
// fallback data is available.
func (s *BcnService) GetStandardBudget(ctx context.Context, year int) (*models.StandardBudget, error) {
	snapshot, err := s.GetBudgetData(ctx, year)
	if err != nil {
		return nil, err
	}
	return TransformToStandardFormat(snapshot), nil
}

// RefreshYear fetches a year from BCN ignoring the primary cache. Failures are
// returned to the caller instead of being replaced by stale or fallback data.
func (s *BcnService) RefreshYear(ctx context.Context, year int) (*models.BudgetSnapshot, error) {
	snapshot, err := s.fetchFresh(ctx, year)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) && fe.Kind != KindUnsupportedYear {
			s.recordVersion(ctx, year, models.FetchOutcomeFallback, nil, nil, err)
		}
		return nil, err
	}
	data := s.store(ctx, snapshot)
	s.recordVersion(ctx, year, models.FetchOutcomeSuccess, snapshot, data, nil)
	return snapshot, nil
}

// ImportLines stores manually verified lines as the snapshot of a year.
// Lines without a name or amounts are dropped.
func (s *BcnService) ImportLines(ctx context.Context, year int, lines []models.BudgetLine) (*models.BudgetSnapshot, error) {
	if !s.IsSupportedYear(year) {
		return nil, &FetchError{Kind: KindUnsupportedYear, Year: year, Stage: "import", Err: fmt.Errorf("year %d not available", year)}
	}

	retained := make([]models.BudgetLine, 0, len(lines))
	for _, l := range lines {
		if l.IsRetained() {
			retained = append(retained, l)
		}
	}
	if len(retained) == 0 {
		return nil, &FetchError{Kind: KindExtraction, Year: year, Stage: "import", Err: errors.New("no valid budget lines in import")}
	}

	snapshot := s.buildSnapshot(year, SourceManual, retained)
	data := s.store(ctx, snapshot)
	s.recordVersion(ctx, year, models.FetchOutcomeManual, snapshot, data, nil)
	log.Printf("Service: Imported %d budget lines for year %d (%d dropped)\n", len(retained), year, len(lines)-len(retained))
	return snapshot, nil
}

// CheckAvailability probes the BCN site. It never fails: problems are
// reported in the result.
func (s *BcnService) CheckAvailability(ctx context.Context) models.Availability {
	status, err := s.fetcher.Probe(ctx, s.baseURL, s.availabilityTimeout)
	if err != nil {
		log.Printf("WARN Service: BCN availability probe failed: %v\n", err)
		return models.Availability{Available: false, Status: status, Message: err.Error()}
	}
	if status != 200 {
		return models.Availability{Available: false, Status: status, Message: fmt.Sprintf("BCN returned status %d", status)}
	}
	return models.Availability{Available: true, Status: status, Message: availableMessage}
}

// FlushCache drops every cached snapshot, stale copies included.
func (s *BcnService) FlushCache(ctx context.Context) {
	log.Println("Service: Flushing BCN cache")
	s.cache.Flush(ctx)
}

func (s *BcnService) loadYear(ctx context.Context, year int) (*models.BudgetSnapshot, error) {
	snapshot, err := s.fetchFresh(ctx, year)
	if err == nil {
		data := s.store(ctx, snapshot)
		s.recordVersion(ctx, year, models.FetchOutcomeSuccess, snapshot, data, nil)
		return snapshot, nil
	}

	var fe *FetchError
	if !errors.As(err, &fe) {
		return nil, err
	}
	log.Printf("ERROR Service: %v\n", fe)
	return s.recoverFrom(ctx, fe), nil
}

func (s *BcnService) fetchFresh(ctx context.Context, year int) (*models.BudgetSnapshot, error) {
	if !s.IsSupportedYear(year) {
		return nil, &FetchError{Kind: KindUnsupportedYear, Year: year, Stage: "validate", Err: fmt.Errorf("year %d not available in BCN database", year)}
	}

	url := s.SourceURL(year)
	log.Printf("Service: Fetching BCN data for year %d...\n", year)
	body, err := s.fetcher.FetchDocument(ctx, url)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, Year: year, Stage: "fetch", Err: err}
	}

	lines, err := scraper.ParseBudgetDocument(bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{Kind: KindExtraction, Year: year, Stage: "parse", Err: err}
	}
	if len(lines) == 0 {
		return nil, &FetchError{Kind: KindExtraction, Year: year, Stage: "extract", Err: errors.New("no budget data found in BCN page")}
	}

	log.Printf("Service: Parsed %d budget lines from BCN for year %d\n", len(lines), year)
	return s.buildSnapshot(year, SourceBCN, lines), nil
}

func (s *BcnService) buildSnapshot(year int, source string, lines []models.BudgetLine) *models.BudgetSnapshot {
	return &models.BudgetSnapshot{
		Year:        year,
		Source:      source,
		SourceURL:   s.SourceURL(year),
		LastUpdated: s.now(),
		IsRealData:  true,
		Totals:      models.ComputeTotals(lines),
		Lines:       lines,
		LinesCount:  len(lines),
	}
}

// recoverFrom walks the stale cache, the archive and finally the fallback
// snapshot. Unsupported years go straight to the fallback.
func (s *BcnService) recoverFrom(ctx context.Context, fe *FetchError) *models.BudgetSnapshot {
	year := fe.Year
	if fe.Kind == KindUnsupportedYear {
		return FallbackSnapshot(year, s.SourceURL(year), s.now())
	}

	if stale, ok := s.cached(ctx, StaleKey(year)); ok {
		log.Printf("Service: Returning stale BCN data for year %d\n", year)
		s.recordVersion(ctx, year, models.FetchOutcomeStale, nil, nil, fe)
		return stale
	}

	if archived := s.archived(ctx, year); archived != nil {
		log.Printf("Service: Returning archived BCN data for year %d\n", year)
		s.recordVersion(ctx, year, models.FetchOutcomeStale, nil, nil, fe)
		return archived
	}

	s.recordVersion(ctx, year, models.FetchOutcomeFallback, nil, nil, fe)
	return FallbackSnapshot(year, s.SourceURL(year), s.now())
}

func (s *BcnService) cached(ctx context.Context, key string) (*models.BudgetSnapshot, bool) {
	data, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var snapshot models.BudgetSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		log.Printf("WARN Service: Discarding unreadable cache entry %s: %v\n", key, err)
		return nil, false
	}
	return &snapshot, true
}

func (s *BcnService) archived(ctx context.Context, year int) *models.BudgetSnapshot {
	if s.archive == nil {
		return nil
	}
	snapshot, err := s.archive.GetSnapshot(ctx, year)
	if err != nil {
		log.Printf("WARN Service: Could not read archived snapshot for year %d: %v\n", year, err)
		return nil
	}
	return snapshot
}

// store writes the snapshot to the primary and stale cache and to the archive.
// It returns the serialized snapshot.
func (s *BcnService) store(ctx context.Context, snapshot *models.BudgetSnapshot) []byte {
	data, err := json.Marshal(snapshot)
	if err != nil {
		log.Printf("ERROR Service: Could not serialize snapshot for year %d: %v\n", snapshot.Year, err)
		return nil
	}
	s.cache.Set(ctx, CacheKey(snapshot.Year), data, s.cacheTTL)
	s.cache.Set(ctx, StaleKey(snapshot.Year), data, 0)

	if s.archive != nil {
		if err := s.archive.SaveSnapshot(ctx, snapshot); err != nil {
			log.Printf("WARN Service: Could not archive snapshot for year %d: %v\n", snapshot.Year, err)
		}
	}
	return data
}

func (s *BcnService) recordVersion(ctx context.Context, year int, outcome string, snapshot *models.BudgetSnapshot, data []byte, cause error) {
	if s.fetchLog == nil {
		return
	}
	now := s.now()
	version := models.SourceVersion{
		Year:          year,
		SourceURL:     s.SourceURL(year),
		LastRunID:     uuid.NewString(),
		LastOutcome:   outcome,
		LastCheckedAt: now,
	}
	if snapshot != nil {
		version.LinesCount = snapshot.LinesCount
		version.LastSuccessfulFetchAt = &now
		if data != nil {
			sum := sha256.Sum256(data)
			version.DataHash = hex.EncodeToString(sum[:])
		}
	}
	if cause != nil {
		version.LastError = cause.Error()
	}
	if err := s.fetchLog.LogSourceVersion(ctx, version); err != nil {
		log.Printf("WARN Service: Could not record fetch of year %d: %v\n", year, err)
	}
}
