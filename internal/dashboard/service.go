// Package dashboard joins stored positions with fresh quotes and turns them
// into classified cards.
package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/trogers1052/carteira-dashboard/internal/models"
	"github.com/trogers1052/carteira-dashboard/internal/quotes"
	"go.uber.org/zap"
)

// ErrInvalidInput marks user input that was rejected before reaching a store
var ErrInvalidInput = errors.New("invalid input")

// ErrOptionsDisabled is returned by option operations when no option store is configured
var ErrOptionsDisabled = errors.New("option positions are not enabled")

// PositionStore persists equity positions
type PositionStore interface {
	ListPositions(ctx context.Context) ([]models.Position, error)
	GetPosition(ctx context.Context, code string) (*models.Position, error)
	SavePosition(ctx context.Context, p *models.Position) error
	DeletePosition(ctx context.Context, code string) error
}

// OptionStore persists option positions
type OptionStore interface {
	ListOptions(ctx context.Context) ([]models.OptionPosition, error)
	SaveOption(ctx context.Context, o *models.OptionPosition) error
	DeleteOption(ctx context.Context, code string) error
}

// AlertStore keeps the classification history per code
type AlertStore interface {
	LatestAlert(ctx context.Context, code string) (*models.AlertHistory, error)
	RecordAlert(ctx context.Context, a *models.AlertHistory) error
	AlertHistory(ctx context.Context, code string, limit int) ([]models.AlertHistory, error)
}

// QuoteSource fetches snapshots and validates codes
type QuoteSource interface {
	FetchAll(ctx context.Context, codes []string) []quotes.Result
	Validate(ctx context.Context, code string) error
}

// EventPublisher announces changes to other services
type EventPublisher interface {
	PublishPositionSaved(ctx context.Context, p *models.Position) error
	PublishPositionDeleted(ctx context.Context, code string) error
	PublishOptionSaved(ctx context.Context, o *models.OptionPosition) error
	PublishOptionDeleted(ctx context.Context, code string) error
	PublishQuoteUpdated(ctx context.Context, q *models.QuoteSnapshot) error
	PublishAlertChanged(ctx context.Context, code, classification string, q *models.QuoteSnapshot) error
}

// Deps are the collaborators of a Service. Options, Alerts and Events may be nil.
type Deps struct {
	Positions PositionStore
	Options   OptionStore
	Alerts    AlertStore
	Quotes    QuoteSource
	Events    EventPublisher
	Logger    *zap.Logger
	Now       func() time.Time
}

// Service implements the dashboard operations
type Service struct {
	positions PositionStore
	options   OptionStore
	alerts    AlertStore
	quotes    QuoteSource
	events    EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a Service
func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Service{
		positions: d.Positions,
		options:   d.Options,
		alerts:    d.Alerts,
		quotes:    d.Quotes,
		events:    d.Events,
		logger:    d.Logger,
		now:       d.Now,
	}
}

// OptionsEnabled reports whether option operations are available
func (s *Service) OptionsEnabled() bool {
	return s.options != nil
}

// publish runs fn when events are enabled; failures never fail the caller
func (s *Service) publish(event, code string, fn func(EventPublisher) error) {
	if s.events == nil {
		return
	}
	if err := fn(s.events); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("event", event), zap.String("code", code), zap.Error(err))
	}
}
