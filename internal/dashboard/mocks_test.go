package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/carteira-dashboard/internal/models"
	"github.com/trogers1052/carteira-dashboard/internal/quotes"
	"github.com/trogers1052/carteira-dashboard/internal/storage/memory"
	"go.uber.org/zap"
)

var testNow = time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC)

type stubProvider struct {
	mu     sync.Mutex
	closes map[string][]decimal.Decimal
	errs   map[string]error
}

func newStubProvider() *stubProvider {
	return &stubProvider{closes: map[string][]decimal.Decimal{}, errs: map[string]error{}}
}

func (p *stubProvider) set(code string, closes ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]decimal.Decimal, len(closes))
	for i, c := range closes {
		out[i] = decimal.RequireFromString(c)
	}
	p.closes[code] = out
	delete(p.errs, code)
}

func (p *stubProvider) fail(code string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[code] = err
}

func (p *stubProvider) DailyCloses(ctx context.Context, code string, months int) ([]decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.errs[code]; ok {
		return nil, err
	}
	return p.closes[code], nil
}

type mockPublisher struct {
	mu sync.Mutex

	SavedCalls         int
	DeletedCalls       int
	OptionSavedCalls   int
	OptionDeletedCalls int
	QuoteCalls         int
	AlertCalls         int
	LastAlert          string
	err                error
}

func (m *mockPublisher) PublishPositionSaved(ctx context.Context, p *models.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SavedCalls++
	return m.err
}

func (m *mockPublisher) PublishPositionDeleted(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeletedCalls++
	return m.err
}

func (m *mockPublisher) PublishOptionSaved(ctx context.Context, o *models.OptionPosition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OptionSavedCalls++
	return m.err
}

func (m *mockPublisher) PublishOptionDeleted(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OptionDeletedCalls++
	return m.err
}

func (m *mockPublisher) PublishQuoteUpdated(ctx context.Context, q *models.QuoteSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuoteCalls++
	return m.err
}

func (m *mockPublisher) PublishAlertChanged(ctx context.Context, code, classification string, q *models.QuoteSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AlertCalls++
	m.LastAlert = code + ":" + classification
	return m.err
}

type failingStore struct {
	*memory.Store
}

func (failingStore) ListPositions(ctx context.Context) ([]models.Position, error) {
	return nil, errors.New("spreadsheet unavailable")
}

type fixture struct {
	svc      *Service
	store    *memory.Store
	provider *stubProvider
	events   *mockPublisher
}

func newFixture() *fixture {
	store := memory.New()
	provider := newStubProvider()
	events := &mockPublisher{}
	fetcher := quotes.NewFetcher(provider, store, nil, quotes.Options{
		Concurrency:   2,
		CacheFallback: true,
		Now:           func() time.Time { return testNow },
	})
	svc := NewService(Deps{
		Positions: store,
		Options:   store,
		Alerts:    store,
		Quotes:    fetcher,
		Events:    events,
		Logger:    zap.NewNop(),
		Now:       func() time.Time { return testNow },
	})
	return &fixture{svc: svc, store: store, provider: provider, events: events}
}

func (f *fixture) seed(code, avg, target string) {
	f.store.SavePosition(context.Background(), &models.Position{
		Code:        code,
		AvgPrice:    decimal.RequireFromString(avg),
		TargetPrice: decimal.RequireFromString(target),
	})
}
