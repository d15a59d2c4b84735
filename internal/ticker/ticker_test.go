package ticker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"petr4":      "PETR4.SA",
		"  vale3 ":   "VALE3.SA",
		"ITUB4.SA":   "ITUB4.SA",
		"itub4.sa":   "ITUB4.SA",
		"":           "",
		"   ":        "",
		"PETRF25":    "PETRF25.SA",
		"bbas3.SA  ": "BBAS3.SA",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"petr4", "PETR4.SA", " wege3 ", "", "x", "abc.sa"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "Normalize not idempotent for %q", in)
	}
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "PETR4", Display("PETR4.SA"))
	assert.Equal(t, "PETR4", Display("petr4"))
	assert.Equal(t, "", Display(""))
}
