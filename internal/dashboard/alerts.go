package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/trogers1052/carteira-dashboard/internal/models"
	"github.com/trogers1052/carteira-dashboard/internal/ticker"
	"go.uber.org/zap"
)

// RecordTransitions appends an alert history row for every available card
// whose classification differs from the last one recorded for its code.
// It returns the number of rows written.
func (s *Service) RecordTransitions(ctx context.Context, cards []Card) (int, error) {
	if s.alerts == nil {
		return 0, nil
	}

	var errs []error
	recorded := 0
	for i := range cards {
		c := &cards[i]
		if !c.Available || c.Stale {
			continue
		}

		latest, err := s.alerts.LatestAlert(ctx, c.Ticker)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to read alert history for %s: %w", c.Ticker, err))
			continue
		}
		if latest != nil && latest.Classification == string(c.Classification) {
			continue
		}

		a := &models.AlertHistory{
			Code:           c.Ticker,
			Classification: string(c.Classification),
			TargetPrice:    c.Position.TargetPrice,
			TriggeredAt:    s.now(),
		}
		if c.Quote != nil {
			a.Price = c.Quote.CurrentPrice
		}
		if err := s.alerts.RecordAlert(ctx, a); err != nil {
			errs = append(errs, fmt.Errorf("failed to record alert for %s: %w", c.Ticker, err))
			continue
		}
		recorded++

		previous := ""
		if latest != nil {
			previous = latest.Classification
		}
		s.logger.Info("classification changed",
			zap.String("code", c.Ticker),
			zap.String("from", previous),
			zap.String("to", a.Classification))

		s.publish(models.EventAlertChanged, c.Ticker, func(e EventPublisher) error {
			return e.PublishAlertChanged(ctx, c.Ticker, a.Classification, c.Quote)
		})
	}
	return recorded, errors.Join(errs...)
}

// Refresh fetches every position, which updates the quote cache, announces
// fresh quotes and records classification changes.
func (s *Service) Refresh(ctx context.Context) error {
	cards, err := s.Cards(ctx)
	if err != nil {
		return err
	}

	failed := 0
	for i := range cards {
		q := cards[i].Quote
		if q == nil || q.Stale || cards[i].Error != "" {
			failed++
			continue
		}
		s.publish(models.EventQuoteUpdated, q.Code, func(e EventPublisher) error {
			return e.PublishQuoteUpdated(ctx, q)
		})
	}

	recorded, err := s.RecordTransitions(ctx, cards)
	s.logger.Info("quotes refreshed",
		zap.Int("positions", len(cards)),
		zap.Int("failed", failed),
		zap.Int("alerts", recorded))
	return err
}

// AlertHistory returns recorded transitions, newest first. An empty code
// returns the history of every position.
func (s *Service) AlertHistory(ctx context.Context, code string, limit int) ([]models.AlertHistory, error) {
	if s.alerts == nil {
		return []models.AlertHistory{}, nil
	}
	history, err := s.alerts.AlertHistory(ctx, ticker.Normalize(code), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert history: %w", err)
	}
	if history == nil {
		history = []models.AlertHistory{}
	}
	return history, nil
}
