// Package core provides the domain types of the tracker: canonical days, journeys,
// summaries and the money helpers used to aggregate them.
package core

import (
	"github.com/shopspring/decimal"
)

// PriceDecimals is the precision of every stored sum.
const PriceDecimals = 2

// RoundPrice rounds a monetary float to two decimals, half away from zero.
//
// Examples:
//
//	RoundPrice(2.5)      -> 2.5
//	RoundPrice(3.005)    -> 3.01
//	RoundPrice(0.1+0.2)  -> 0.3
func RoundPrice(v float64) float64 {
	return decimal.NewFromFloat(v).Round(PriceDecimals).InexactFloat64()
}

// SumPrices adds prices in decimal arithmetic and rounds the total to two decimals.
// An empty input sums to 0.
func SumPrices(prices ...float64) float64 {
	total := decimal.Zero
	for _, p := range prices {
		total = total.Add(decimal.NewFromFloat(p))
	}
	return total.Round(PriceDecimals).InexactFloat64()
}

// FormatPrice renders an amount with exactly two decimals, e.g. "12.50".
func FormatPrice(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(PriceDecimals)
}
