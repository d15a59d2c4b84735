// Package alert classifies a current price against a user-defined ceiling.
package alert

import "github.com/shopspring/decimal"

// Classification is the outcome of comparing a price with its ceiling
type Classification string

// Classification constants
const (
	Unknown      Classification = "unknown"
	Opportunity  Classification = "opportunity"
	AboveCeiling Classification = "above_ceiling"
	Hold         Classification = "hold"
)

// Card colour constants
const (
	ColorGray  = "gray"
	ColorGreen = "green"
	ColorRed   = "red"
)

// CeilingTolerance is the factor over the target above which a price is flagged
var CeilingTolerance = decimal.RequireFromString("1.1")

// Classify compares current with target. A missing current price is unknown
// and a missing target is hold.
func Classify(current, target *decimal.Decimal) Classification {
	if current == nil {
		return Unknown
	}
	if target == nil {
		return Hold
	}
	if current.LessThan(*target) {
		return Opportunity
	}
	if current.GreaterThan(target.Mul(CeilingTolerance)) {
		return AboveCeiling
	}
	return Hold
}

// Label returns the message shown on the position card
func (c Classification) Label() string {
	switch c {
	case Opportunity:
		return "🟢 Oportunidade"
	case AboveCeiling:
		return "🔴 Acima do Teto"
	case Hold:
		return "Manter Posição"
	default:
		return "N/D"
	}
}

// Color returns the card border colour
func (c Classification) Color() string {
	switch c {
	case Opportunity:
		return ColorGreen
	case AboveCeiling:
		return ColorRed
	default:
		return ColorGray
	}
}
