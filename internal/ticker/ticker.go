// Package ticker normalizes user-typed ticker codes to the local exchange form.
package ticker

import "strings"

// ExchangeSuffix is appended to codes that are not already exchange qualified
const ExchangeSuffix = ".SA"

// Normalize trims and uppercases a code and appends the exchange suffix.
// An empty code stays empty.
func Normalize(raw string) string {
	c := strings.ToUpper(strings.TrimSpace(raw))
	if c != "" && !strings.HasSuffix(c, ExchangeSuffix) {
		c += ExchangeSuffix
	}
	return c
}

// Display returns the code without the exchange suffix
func Display(code string) string {
	return strings.TrimSuffix(Normalize(code), ExchangeSuffix)
}
