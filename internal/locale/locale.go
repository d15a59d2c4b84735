// Package locale parses and formats numbers written with the Brazilian
// convention: dot for thousands and comma for decimals.
package locale

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Unavailable is rendered in place of missing values
const Unavailable = "N/D"

// ErrInvalidNumber is returned when a string cannot be read as a number
var ErrInvalidNumber = errors.New("invalid number")

// Parse converts "32,50", "3.200,00" or "32.50" to a decimal.
// An empty string parses as zero.
func Parse(s string) (decimal.Decimal, error) {
	v := strings.ReplaceAll(s, "\u00a0", "")
	v = strings.ReplaceAll(v, " ", "")
	v = strings.TrimSpace(v)
	if v == "" {
		return decimal.Zero, nil
	}

	if strings.Contains(v, ".") && strings.Contains(v, ",") {
		v = strings.ReplaceAll(v, ".", "")
	}
	v = strings.ReplaceAll(v, ",", ".")

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return d, nil
}

// ParseValue accepts a cell value that may already be numeric
func ParseValue(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return x, nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case json.Number:
		return Parse(x.String())
	case string:
		return Parse(x)
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported type %T", ErrInvalidNumber, v)
	}
}

// Format renders d with two fraction digits, e.g. 3200 -> "3.200,00"
func Format(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

// FormatOptional renders a missing value as N/D
func FormatOptional(d *decimal.Decimal) string {
	if d == nil {
		return Unavailable
	}
	return Format(*d)
}

// FormatChange renders a percentage change with a direction arrow
func FormatChange(pct *decimal.Decimal) string {
	if pct == nil {
		return Unavailable
	}
	if pct.IsNegative() {
		return "▼ " + pct.StringFixed(2) + "%"
	}
	return "▲ " + pct.StringFixed(2) + "%"
}
