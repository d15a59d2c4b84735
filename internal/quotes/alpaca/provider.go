// Package alpaca reads daily closes from the Alpaca market data API.
package alpaca

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/carteira-dashboard/internal/ticker"
)

type barsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// Provider implements quotes.HistoryProvider for Alpaca
type Provider struct {
	client barsClient
	now    func() time.Time
}

// NewProvider returns a new Alpaca provider. Empty credentials fall back to
// the APCA_* environment variables read by the SDK.
func NewProvider(apiKey, apiSecret, baseURL string) *Provider {
	return &Provider{
		client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
		now: time.Now,
	}
}

// DailyCloses returns daily bar closes for the last months, oldest first.
// The local exchange suffix is dropped since Alpaca lists plain symbols.
func (p *Provider) DailyCloses(ctx context.Context, code string, months int) ([]decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbol := strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(code)), ticker.ExchangeSuffix)
	if symbol == "" {
		return nil, fmt.Errorf("alpaca: empty code")
	}
	if months <= 0 {
		months = 1
	}

	bars, err := p.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     p.now().AddDate(0, -months, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca: failed to get bars for %s: %w", symbol, err)
	}

	closes := make([]decimal.Decimal, 0, len(bars))
	for _, b := range bars {
		closes = append(closes, decimal.NewFromFloat(b.Close))
	}
	return closes, nil
}
