// Package money holds the decimal conventions shared by every amount the
// terminal computes or sends: two fractional digits, JSON numbers on the wire.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept for currency amounts.
const Scale = 2

func init() {
	// The backend expects plain JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Zero is the zero amount.
var Zero = decimal.Zero

// Round rounds an amount half away from zero to Scale digits.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Parse reads a decimal amount from user input such as "12.5".
func Parse(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

// Format renders an amount for display, e.g. Format(d, "KES") == "KES 98.00".
func Format(d decimal.Decimal, currency string) string {
	if currency == "" {
		return d.StringFixed(Scale)
	}
	return currency + " " + d.StringFixed(Scale)
}
