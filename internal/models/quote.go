package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteTimeLayout is the timestamp format used in quote cache rows
const QuoteTimeLayout = "2006-01-02 15:04:05"

// MarketLocation is the exchange time zone used for cache timestamps
var MarketLocation = loadMarketLocation()

func loadMarketLocation() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}

// FormatQuoteTime renders t as a cache row timestamp in market time
func FormatQuoteTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(MarketLocation).Format(QuoteTimeLayout)
}

// ParseQuoteTime reads a cache row timestamp written by FormatQuoteTime
func ParseQuoteTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(QuoteTimeLayout, s, MarketLocation)
}

var hundred = decimal.NewFromInt(100)

// QuoteSnapshot holds the last known closes for a ticker
type QuoteSnapshot struct {
	Code          string           `json:"codigo"`
	CurrentPrice  *decimal.Decimal `json:"ultima_cotacao,omitempty"`
	PreviousPrice *decimal.Decimal `json:"preco_anterior,omitempty"`
	FetchedAt     time.Time        `json:"data_hora"`
	Stale         bool             `json:"stale,omitempty"`
}

// ChangePct returns the day-over-day change in percent, or nil when it is undefined
func (q *QuoteSnapshot) ChangePct() *decimal.Decimal {
	if q == nil || q.CurrentPrice == nil || q.PreviousPrice == nil || q.PreviousPrice.IsZero() {
		return nil
	}
	pct := q.CurrentPrice.Sub(*q.PreviousPrice).Div(*q.PreviousPrice).Mul(hundred)
	return &pct
}
