// Package quotes retrieves the latest daily closes for tracked tickers.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/carteira-dashboard/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrNoHistory is returned when the provider has no closes for a code
	ErrNoHistory = errors.New("no closing prices returned")
	// ErrNoRecentTrading is returned by Validate for codes without a recent session
	ErrNoRecentTrading = errors.New("code has no recent trading session")
)

const (
	defaultConcurrency = 4
	firstWindowMonths  = 1
	widerWindowMonths  = 2
)

// HistoryProvider returns non-empty daily closes, oldest first
type HistoryProvider interface {
	DailyCloses(ctx context.Context, code string, months int) ([]decimal.Decimal, error)
}

// Cache persists the last snapshot per code
type Cache interface {
	LoadQuotes(ctx context.Context) (map[string]*models.QuoteSnapshot, error)
	SaveQuote(ctx context.Context, q *models.QuoteSnapshot) error
}

// Result is the outcome of fetching one code. Snapshot may be set together
// with Err when a stale cached value is being served.
type Result struct {
	Code     string
	Snapshot *models.QuoteSnapshot
	Err      error
}

// OK reports whether the fetch itself succeeded
func (r Result) OK() bool {
	return r.Err == nil && r.Snapshot != nil
}

// Options tune a Fetcher
type Options struct {
	Concurrency   int
	CacheFallback bool
	Now           func() time.Time
}

// Fetcher fans out quote lookups, one isolated slot per code
type Fetcher struct {
	provider    HistoryProvider
	cache       Cache
	logger      *zap.Logger
	concurrency int
	fallback    bool
	now         func() time.Time
}

// NewFetcher creates a Fetcher. cache may be nil.
func NewFetcher(provider HistoryProvider, cache Cache, logger *zap.Logger, opts Options) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Fetcher{
		provider:    provider,
		cache:       cache,
		logger:      logger,
		concurrency: opts.Concurrency,
		fallback:    opts.CacheFallback,
		now:         opts.Now,
	}
}

// Fetch retrieves one snapshot without touching the cache
func (f *Fetcher) Fetch(ctx context.Context, code string) (*models.QuoteSnapshot, error) {
	closes, err := f.provider.DailyCloses(ctx, code, firstWindowMonths)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", code, err)
	}

	if len(closes) < 2 {
		closes, err = f.provider.DailyCloses(ctx, code, widerWindowMonths)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch wider history for %s: %w", code, err)
		}
	}

	snap := &models.QuoteSnapshot{Code: code, FetchedAt: f.now()}
	switch n := len(closes); n {
	case 0:
		return nil, fmt.Errorf("%w for %s", ErrNoHistory, code)
	case 1:
		current := closes[0]
		snap.CurrentPrice = &current
	default:
		current, previous := closes[n-1], closes[n-2]
		snap.CurrentPrice = &current
		snap.PreviousPrice = &previous
	}
	return snap, nil
}

// Validate checks that code had at least one close in the last month
func (f *Fetcher) Validate(ctx context.Context, code string) error {
	closes, err := f.provider.DailyCloses(ctx, code, firstWindowMonths)
	if err != nil {
		return fmt.Errorf("failed to validate %s: %w", code, err)
	}
	if len(closes) == 0 {
		return fmt.Errorf("%w: %s", ErrNoRecentTrading, code)
	}
	return nil
}

// FetchAll returns one result per code in input order. A failure for one
// code never prevents results for the others.
func (f *Fetcher) FetchAll(ctx context.Context, codes []string) []Result {
	results := make([]Result, len(codes))
	sem := make(chan struct{}, f.concurrency)

	var wg sync.WaitGroup
	for i, code := range codes {
		results[i].Code = code
		wg.Add(1)
		go func(slot *Result) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				slot.Err = ctx.Err()
				return
			}
			defer func() { <-sem }()
			slot.Snapshot, slot.Err = f.fetchIsolated(ctx, slot.Code)
		}(&results[i])
	}
	wg.Wait()

	f.syncCache(ctx, results)
	return results
}

func (f *Fetcher) fetchIsolated(ctx context.Context, code string) (snap *models.QuoteSnapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			snap, err = nil, fmt.Errorf("quote provider panicked for %s: %v", code, r)
		}
	}()
	return f.Fetch(ctx, code)
}

// syncCache runs after fan-in so read-then-write cache backends see one writer
func (f *Fetcher) syncCache(ctx context.Context, results []Result) {
	if f.cache == nil {
		return
	}

	var cached map[string]*models.QuoteSnapshot
	cacheLoaded := false

	for i := range results {
		r := &results[i]
		if r.OK() {
			if err := f.cache.SaveQuote(ctx, r.Snapshot); err != nil {
				f.logger.Warn("failed to cache quote", zap.String("code", r.Code), zap.Error(err))
			}
			continue
		}

		f.logger.Warn("quote fetch failed", zap.String("code", r.Code), zap.Error(r.Err))
		if !f.fallback {
			continue
		}
		if !cacheLoaded {
			var err error
			cached, err = f.cache.LoadQuotes(ctx)
			if err != nil {
				f.logger.Warn("failed to load quote cache", zap.Error(err))
			}
			cacheLoaded = true
		}
		if prev, ok := cached[r.Code]; ok && prev.CurrentPrice != nil {
			stale := *prev
			stale.Stale = true
			r.Snapshot = &stale
		}
	}
}

// ByCode indexes results by their code
func ByCode(results []Result) map[string]Result {
	out := make(map[string]Result, len(results))
	for _, r := range results {
		out[r.Code] = r
	}
	return out
}
