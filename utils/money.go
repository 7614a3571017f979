package utils

import "github.com/shopspring/decimal"

// SumPrices adds monetary amounts without accumulating float rounding error.
func SumPrices(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	f, _ := total.Float64()
	return f
}
