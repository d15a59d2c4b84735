package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/carteira-dashboard/internal/locale"
	"github.com/trogers1052/carteira-dashboard/internal/models"
	"github.com/trogers1052/carteira-dashboard/internal/ticker"
	"go.uber.org/zap"
)

// ListPositions returns the stored positions
func (s *Service) ListPositions(ctx context.Context) ([]models.Position, error) {
	positions, err := s.positions.ListPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	return positions, nil
}

// AddPosition validates code against the quote source and stores it with the
// given locale formatted prices, replacing any position with the same code.
func (s *Service) AddPosition(ctx context.Context, code, avgPrice, targetPrice string) (*models.Position, error) {
	code = ticker.Normalize(code)
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidInput)
	}
	avg, err := parsePrice("preco_medio", avgPrice)
	if err != nil {
		return nil, err
	}
	target, err := parsePrice("preco_teto", targetPrice)
	if err != nil {
		return nil, err
	}

	if err := s.quotes.Validate(ctx, code); err != nil {
		return nil, err
	}

	p := &models.Position{Code: code, AvgPrice: avg, TargetPrice: target}
	if err := s.positions.SavePosition(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save position: %w", err)
	}
	s.logger.Info("position saved", zap.String("code", code))

	s.publish(models.EventPositionSaved, code, func(e EventPublisher) error {
		return e.PublishPositionSaved(ctx, p)
	})
	return p, nil
}

// UpdatePosition changes the prices of an existing position. A blank price
// keeps the stored value.
func (s *Service) UpdatePosition(ctx context.Context, code, avgPrice, targetPrice string) (*models.Position, error) {
	code = ticker.Normalize(code)
	p, err := s.positions.GetPosition(ctx, code)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(avgPrice) != "" {
		if p.AvgPrice, err = parsePrice("preco_medio", avgPrice); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(targetPrice) != "" {
		if p.TargetPrice, err = parsePrice("preco_teto", targetPrice); err != nil {
			return nil, err
		}
	}

	if err := s.positions.SavePosition(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update position: %w", err)
	}
	s.logger.Info("position updated", zap.String("code", code))

	s.publish(models.EventPositionSaved, code, func(e EventPublisher) error {
		return e.PublishPositionSaved(ctx, p)
	})
	return p, nil
}

// RemovePosition deletes the position for code
func (s *Service) RemovePosition(ctx context.Context, code string) error {
	code = ticker.Normalize(code)
	if err := s.positions.DeletePosition(ctx, code); err != nil {
		return err
	}
	s.logger.Info("position removed", zap.String("code", code))

	s.publish(models.EventPositionDeleted, code, func(e EventPublisher) error {
		return e.PublishPositionDeleted(ctx, code)
	})
	return nil
}

// parsePrice reads a user typed price strictly
func parsePrice(field, raw string) (decimal.Decimal, error) {
	d, err := locale.Parse(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %w", ErrInvalidInput, field, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s must not be negative", ErrInvalidInput, field)
	}
	return d, nil
}
