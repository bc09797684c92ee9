package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/utafrali/posterminal/internal/money"
)

// LowStock returns the items at or below their low-stock threshold,
// including those that are out of stock.
func LowStock(items []Item) []Item {
	var out []Item
	for _, it := range items {
		if it.Quantity <= it.Threshold() {
			out = append(out, it)
		}
	}
	return out
}

// OutOfStock returns the items with nothing left.
func OutOfStock(items []Item) []Item {
	var out []Item
	for _, it := range items {
		if it.Quantity <= 0 {
			out = append(out, it)
		}
	}
	return out
}

// TotalValue is the sum of quantity * cost over all items.
func TotalValue(items []Item) decimal.Decimal {
	total := money.Zero
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		total = total.Add(it.Cost.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Sellable returns the items that can be added to a cart.
func Sellable(items []Item) []Item {
	var out []Item
	for _, it := range items {
		if it.Sellable() {
			out = append(out, it)
		}
	}
	return out
}
