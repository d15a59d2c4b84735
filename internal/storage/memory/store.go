// Package memory holds positions, options, quotes and alert history in
// process memory. It backs tests and the STORE_BACKEND=memory mode.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/trogers1052/carteira-dashboard/internal/models"
	"github.com/trogers1052/carteira-dashboard/internal/ticker"
)

// Store is a mutex guarded in-memory backend
type Store struct {
	mu        sync.RWMutex
	positions map[string]models.Position
	options   map[string]models.OptionPosition
	quotes    map[string]models.QuoteSnapshot
	alerts    []models.AlertHistory
	nextID    int
	now       func() time.Time
}

// New creates an empty Store
func New() *Store {
	return &Store{
		positions: make(map[string]models.Position),
		options:   make(map[string]models.OptionPosition),
		quotes:    make(map[string]models.QuoteSnapshot),
		nextID:    1,
		now:       time.Now,
	}
}

// ListPositions returns all positions sorted by code
func (s *Store) ListPositions(ctx context.Context) ([]models.Position, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Position, 0, len(s.positions))
	for _, p := range s.positions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// GetPosition returns the position for code
func (s *Store) GetPosition(ctx context.Context, code string) (*models.Position, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.positions[ticker.Normalize(code)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrPositionNotFound, code)
	}
	return &p, nil
}

// SavePosition inserts or replaces the position with the same code
func (s *Store) SavePosition(ctx context.Context, p *models.Position) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *p
	saved.Code = ticker.Normalize(p.Code)
	saved.UpdatedAt = s.now()
	s.positions[saved.Code] = saved
	p.UpdatedAt = saved.UpdatedAt
	return nil
}

// DeletePosition removes the position for code
func (s *Store) DeletePosition(ctx context.Context, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	code = ticker.Normalize(code)
	if _, ok := s.positions[code]; !ok {
		return fmt.Errorf("%w: %s", models.ErrPositionNotFound, code)
	}
	delete(s.positions, code)
	return nil
}

// ReplaceAllPositions discards every stored position and stores the given set
func (s *Store) ReplaceAllPositions(ctx context.Context, positions []models.Position) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.positions = make(map[string]models.Position, len(positions))
	for _, p := range positions {
		p.Code = ticker.Normalize(p.Code)
		p.UpdatedAt = now
		s.positions[p.Code] = p
	}
	return nil
}

// ListOptions returns all option positions sorted by code
func (s *Store) ListOptions(ctx context.Context) ([]models.OptionPosition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.OptionPosition, 0, len(s.options))
	for _, o := range s.options {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// SaveOption inserts or replaces the option with the same code
func (s *Store) SaveOption(ctx context.Context, o *models.OptionPosition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.options[o.Code] = *o
	return nil
}

// DeleteOption removes the option for code
func (s *Store) DeleteOption(ctx context.Context, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	code = ticker.Normalize(code)
	if _, ok := s.options[code]; !ok {
		return fmt.Errorf("%w: %s", models.ErrOptionNotFound, code)
	}
	delete(s.options, code)
	return nil
}

// LoadQuotes returns copies of every cached snapshot keyed by code
func (s *Store) LoadQuotes(ctx context.Context) (map[string]*models.QuoteSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*models.QuoteSnapshot, len(s.quotes))
	for code, q := range s.quotes {
		q := q
		out[code] = &q
	}
	return out, nil
}

// SaveQuote upserts the snapshot for its code
func (s *Store) SaveQuote(ctx context.Context, q *models.QuoteSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *q
	saved.Stale = false
	s.quotes[q.Code] = saved
	return nil
}

// LatestAlert returns the most recent alert for code, or nil when none exists
func (s *Store) LatestAlert(ctx context.Context, code string) (*models.AlertHistory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.alerts) - 1; i >= 0; i-- {
		if s.alerts[i].Code == code {
			a := s.alerts[i]
			return &a, nil
		}
	}
	return nil, nil
}

// RecordAlert appends an alert and assigns its ID
func (s *Store) RecordAlert(ctx context.Context, a *models.AlertHistory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.nextID
	s.nextID++
	if a.TriggeredAt.IsZero() {
		a.TriggeredAt = s.now()
	}
	s.alerts = append(s.alerts, *a)
	return nil
}

// AlertHistory returns up to limit alerts for code, newest first.
// An empty code returns alerts for every code.
func (s *Store) AlertHistory(ctx context.Context, code string, limit int) ([]models.AlertHistory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.AlertHistory
	for i := len(s.alerts) - 1; i >= 0; i-- {
		if code != "" && s.alerts[i].Code != code {
			continue
		}
		out = append(out, s.alerts[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
