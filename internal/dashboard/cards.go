package dashboard

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/carteira-dashboard/internal/alert"
	"github.com/trogers1052/carteira-dashboard/internal/locale"
	"github.com/trogers1052/carteira-dashboard/internal/models"
	"github.com/trogers1052/carteira-dashboard/internal/quotes"
	"github.com/trogers1052/carteira-dashboard/internal/ticker"
)

// Card is the rendered view of one position
type Card struct {
	Code           string               `json:"codigo"`
	Ticker         string               `json:"ticker"`
	CurrentPrice   string               `json:"preco_atual"`
	AvgPrice       string               `json:"preco_medio"`
	TargetPrice    string               `json:"preco_teto"`
	Change         string               `json:"variacao"`
	ChangeColor    string               `json:"cor_variacao"`
	Classification alert.Classification `json:"classificacao"`
	Label          string               `json:"alerta"`
	Color          string               `json:"cor"`
	Available      bool                 `json:"disponivel"`
	Stale          bool                 `json:"desatualizado,omitempty"`
	Error          string               `json:"erro,omitempty"`

	Position models.Position       `json:"-"`
	Quote    *models.QuoteSnapshot `json:"-"`
}

// Cards fetches quotes for every stored position and classifies them.
// A store failure is returned; per-ticker failures only mark their card.
func (s *Service) Cards(ctx context.Context) ([]Card, error) {
	positions, err := s.positions.ListPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	if len(positions) == 0 {
		return []Card{}, nil
	}

	codes := make([]string, len(positions))
	for i, p := range positions {
		codes[i] = p.Code
	}
	results := s.quotes.FetchAll(ctx, codes)

	cards := make([]Card, len(positions))
	for i, p := range positions {
		cards[i] = NewCard(p, results[i])
	}
	return cards, nil
}

// NewCard builds the card for a position from its fetch result
func NewCard(p models.Position, r quotes.Result) Card {
	target := p.TargetPrice
	c := Card{
		Code:        ticker.Display(p.Code),
		Ticker:      p.Code,
		AvgPrice:    locale.Format(p.AvgPrice),
		TargetPrice: locale.Format(target),
		Position:    p,
		Quote:       r.Snapshot,
	}

	var current, change *decimal.Decimal
	if r.Snapshot != nil {
		current = r.Snapshot.CurrentPrice
		change = r.Snapshot.ChangePct()
		c.Stale = r.Snapshot.Stale
	}
	if r.Err != nil {
		c.Error = r.Err.Error()
	}
	c.Available = current != nil

	c.Classification = alert.Classify(current, &target)
	c.Label = c.Classification.Label()
	c.Color = c.Classification.Color()
	c.CurrentPrice = locale.FormatOptional(current)
	c.Change = locale.FormatChange(change)
	c.ChangeColor = changeColor(change)
	return c
}

func changeColor(pct *decimal.Decimal) string {
	if pct == nil || pct.IsNegative() {
		return alert.ColorRed
	}
	return alert.ColorGreen
}
