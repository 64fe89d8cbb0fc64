package core

import (
	"github.com/shopspring/decimal"
)

const monetaryPrecision int32 = 4 // 4 decimal places for reported prices (0.0001 precision)

// RoundPrice rounds a price to monetaryPrecision using decimal arithmetic.
// Only used when reporting; the solver itself works on float64.
func RoundPrice(price float64) float64 {
	rounded, _ := decimal.NewFromFloat(price).Round(monetaryPrecision).Float64()
	return rounded
}

// RoundPrices returns a copy of prices with every entry rounded to monetaryPrecision.
func RoundPrices(prices map[string]float64) map[string]float64 {
	result := make(map[string]float64, len(prices))
	for id, price := range prices {
		result[id] = RoundPrice(price)
	}
	return result
}

// AmountsMatch returns true if two amounts are equal at monetaryPrecision.
// Uses decimal arithmetic to avoid floating-point errors.
func AmountsMatch(a, b float64) bool {
	aDecimal := decimal.NewFromFloat(a).Round(monetaryPrecision)
	bDecimal := decimal.NewFromFloat(b).Round(monetaryPrecision)

	return aDecimal.Equal(bDecimal)
}
