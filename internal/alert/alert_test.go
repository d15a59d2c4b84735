package alert

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		current *decimal.Decimal
		target  *decimal.Decimal
		want    Classification
	}{
		{"below target", dec("30"), dec("33"), Opportunity},
		{"above ceiling", dec("37"), dec("33"), AboveCeiling},
		{"within tolerance", dec("34"), dec("33"), Hold},
		{"exactly at target", dec("33"), dec("33"), Hold},
		{"exactly at tolerance edge", dec("36.3"), dec("33"), Hold},
		{"just over tolerance edge", dec("36.31"), dec("33"), AboveCeiling},
		{"missing current", nil, dec("33"), Unknown},
		{"missing target", dec("30"), nil, Hold},
		{"missing both", nil, nil, Unknown},
		{"zero target", dec("1"), dec("0"), AboveCeiling},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.current, tc.target))
		})
	}
}

func TestLabelAndColor(t *testing.T) {
	assert.Equal(t, "N/D", Unknown.Label())
	assert.Equal(t, ColorGray, Unknown.Color())
	assert.Equal(t, ColorGreen, Opportunity.Color())
	assert.Equal(t, ColorRed, AboveCeiling.Color())
	assert.Equal(t, ColorGray, Hold.Color())
	assert.Equal(t, "Manter Posição", Hold.Label())
	assert.Contains(t, Opportunity.Label(), "Oportunidade")
	assert.Contains(t, AboveCeiling.Label(), "Acima do Teto")
}
