package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Option type constants
const (
	OptionTypeCall = "call"
	OptionTypePut  = "put"
)

// DateLayout is the layout for expiry dates in option records
const DateLayout = "2006-01-02"

// ErrOptionNotFound is returned by stores when no option has the requested code
var ErrOptionNotFound = errors.New("option not found")

// OptionPosition represents a tracked option contract
type OptionPosition struct {
	Code           string           `json:"codigo"`
	UnderlyingCode string           `json:"base"`
	OptionType     string           `json:"tipo"`
	Strike         decimal.Decimal  `json:"strike"`
	ExpiryDate     time.Time        `json:"vencimento"`
	PremiumPaid    decimal.Decimal  `json:"preco_medio"`
	TargetPrice    decimal.Decimal  `json:"preco_objetivo"`
	LastClose      *decimal.Decimal `json:"ultimo_fechamento,omitempty"`
}

// IntrinsicValue returns the exercise value of the contract at the given spot price
func (o *OptionPosition) IntrinsicValue(spot decimal.Decimal) decimal.Decimal {
	var v decimal.Decimal
	switch o.OptionType {
	case OptionTypeCall:
		v = spot.Sub(o.Strike)
	case OptionTypePut:
		v = o.Strike.Sub(spot)
	default:
		return decimal.Zero
	}
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
