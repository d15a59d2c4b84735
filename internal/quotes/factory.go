package quotes

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/carteira-dashboard/internal/config"
	"github.com/trogers1052/carteira-dashboard/internal/quotes/alpaca"
	"github.com/trogers1052/carteira-dashboard/internal/quotes/yahoo"
)

// NewProviderFromConfig builds the history provider named by QUOTE_PROVIDER
func NewProviderFromConfig(cfg config.QuoteConfig) HistoryProvider {
	switch strings.TrimSpace(strings.ToLower(cfg.Provider)) {
	case config.ProviderYahoo, "":
		return yahoo.NewProvider(cfg.YahooBaseURL)
	case config.ProviderAlpaca:
		return alpaca.NewProvider(cfg.AlpacaKeyID, cfg.AlpacaSecretKey, cfg.AlpacaBaseURL)
	default:
		return MissingProvider{Name: cfg.Provider}
	}
}

// MissingProvider fails every lookup
type MissingProvider struct {
	Name string
}

// DailyCloses always returns an error
func (p MissingProvider) DailyCloses(ctx context.Context, code string, months int) ([]decimal.Decimal, error) {
	return nil, fmt.Errorf("quote provider %q not configured", p.Name)
}
