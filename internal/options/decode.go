// Package options decodes exchange option codes such as PETRF25 into the
// underlying root, option type, expiry and strike.
package options

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/carteira-dashboard/internal/models"
	"github.com/trogers1052/carteira-dashboard/internal/ticker"
)

// ErrInvalidOptionCode is returned for codes that do not follow the encoding
var ErrInvalidOptionCode = errors.New("invalid option code")

var codePattern = regexp.MustCompile(`^([A-Z]{4})([A-Z])([0-9]+)$`)

var (
	strikeCutoff = decimal.NewFromInt(1000)
	ten          = decimal.NewFromInt(10)
	oneHundred   = decimal.NewFromInt(100)
)

// Contract is the information carried by an option code
type Contract struct {
	Code       string
	Root       string
	OptionType string
	Month      time.Month
	Year       int
	Expiry     time.Time
	Strike     decimal.Decimal
}

// Decode parses code relative to now. No partial result is returned on error.
func Decode(code string, now time.Time) (*Contract, error) {
	c := strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(code)), ticker.ExchangeSuffix)
	m := codePattern.FindStringSubmatch(c)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOptionCode, code)
	}

	optionType, month, err := SeriesLetter(m[2][0])
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidOptionCode, code, err)
	}

	strikeCode, err := decimal.NewFromString(m[3])
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidOptionCode, code, err)
	}

	year := ExpiryYear(month, now)
	return &Contract{
		Code:       c,
		Root:       m[1],
		OptionType: optionType,
		Month:      month,
		Year:       year,
		Expiry:     ThirdFriday(year, month),
		Strike:     ScaleStrike(strikeCode),
	}, nil
}

// SeriesLetter maps A-L to calls and M-X to puts for months 1-12
func SeriesLetter(l byte) (string, time.Month, error) {
	switch {
	case l >= 'A' && l <= 'L':
		return models.OptionTypeCall, time.Month(l-'A') + 1, nil
	case l >= 'M' && l <= 'X':
		return models.OptionTypePut, time.Month(l-'M') + 1, nil
	default:
		return "", 0, fmt.Errorf("series letter %q is outside A-X", l)
	}
}

// ExpiryYear is the current year, or the next one if month is already past
func ExpiryYear(month time.Month, now time.Time) int {
	if month < now.Month() {
		return now.Year() + 1
	}
	return now.Year()
}

// ScaleStrike turns the numeric suffix of a code into a strike price.
// Codes below 1000 carry one implied decimal, larger ones carry two.
// This is a heuristic and does not hold for every listed series.
func ScaleStrike(n decimal.Decimal) decimal.Decimal {
	if n.LessThan(strikeCutoff) {
		return n.Div(ten)
	}
	return n.Div(oneHundred)
}

// ThirdFriday returns the monthly expiry date of the exchange
func ThirdFriday(year int, month time.Month) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(time.Friday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+14)
}

// Position builds an option record from a decoded contract. An empty base
// falls back to the contract root.
func (c *Contract) Position(base string, premium, target decimal.Decimal) *models.OptionPosition {
	if strings.TrimSpace(base) == "" {
		base = c.Root
	}
	return &models.OptionPosition{
		Code:           ticker.Normalize(c.Code),
		UnderlyingCode: ticker.Normalize(base),
		OptionType:     c.OptionType,
		Strike:         c.Strike,
		ExpiryDate:     c.Expiry,
		PremiumPaid:    premium,
		TargetPrice:    target,
	}
}
