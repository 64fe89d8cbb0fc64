package core

import (
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestRoundPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		expected float64
	}{
		{name: "already rounded", price: 4.0, expected: 4.0},
		{name: "accumulated step error", price: 99.99999999999986, expected: 100.0},
		{name: "rounds half up", price: 1.23455, expected: 1.2346},
		{name: "truncates below precision", price: 0.30000000000000004, expected: 0.3},
		{name: "zero", price: 0.0, expected: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check.Equal(t, tt.expected, RoundPrice(tt.price))
		})
	}
}

func TestRoundPrices(t *testing.T) {
	prices := map[string]float64{"A": 3.9999999999999996, "B": 0.1 + 0.2}

	rounded := RoundPrices(prices)

	check.Equal(t, map[string]float64{"A": 4.0, "B": 0.3}, rounded)
	// Input untouched
	check.Equal(t, 3.9999999999999996, prices["A"])
}

func TestAmountsMatch(t *testing.T) {
	check.True(t, AmountsMatch(9.0, 9.00001))
	check.True(t, AmountsMatch(0.1+0.2, 0.3))
	check.False(t, AmountsMatch(9.0, 9.001))
	check.False(t, AmountsMatch(9.0, -9.0))
}
