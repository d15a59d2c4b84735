package quotes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trogers1052/carteira-dashboard/internal/config"
	"github.com/trogers1052/carteira-dashboard/internal/quotes/alpaca"
	"github.com/trogers1052/carteira-dashboard/internal/quotes/yahoo"
)

func TestNewProviderFromConfig(t *testing.T) {
	assert.IsType(t, &yahoo.Provider{}, NewProviderFromConfig(config.QuoteConfig{Provider: "yahoo"}))
	assert.IsType(t, &yahoo.Provider{}, NewProviderFromConfig(config.QuoteConfig{}))
	assert.IsType(t, &alpaca.Provider{}, NewProviderFromConfig(config.QuoteConfig{Provider: "Alpaca", AlpacaKeyID: "k", AlpacaSecretKey: "s"}))

	p := NewProviderFromConfig(config.QuoteConfig{Provider: "bloomberg"})
	_, err := p.DailyCloses(context.Background(), "PETR4.SA", 1)
	assert.ErrorContains(t, err, "bloomberg")
}
