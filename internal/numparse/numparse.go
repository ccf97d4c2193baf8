// Package numparse is the one place report amounts are turned into numbers.
package numparse

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse reads an amount as printed in a bureau report. Only digits, commas
// and periods survive; a comma is a decimal point; when several periods
// remain only the last one is kept as the decimal separator. Anything that
// does not yield a non-negative real reads as 0.
func Parse(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == ',':
			b.WriteRune('.')
		}
	}
	clean := b.String()
	if n := strings.Count(clean, "."); n > 1 {
		last := strings.LastIndex(clean, ".")
		clean = strings.ReplaceAll(clean[:last], ".", "") + clean[last:]
	}
	if clean == "" || clean == "." {
		return 0
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// ParseInt reads a count such as overdue days; fractions are truncated.
func ParseInt(s string) int {
	return int(Parse(s))
}

// Round2 rounds a money amount half away from zero to two decimals.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Sum adds amounts in decimal arithmetic and rounds the result to two decimals.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.Round(2).InexactFloat64()
}
