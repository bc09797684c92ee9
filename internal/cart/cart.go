package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/utafrali/posterminal/internal/money"
)

// Product is what the sales screen knows about a selectable inventory item
// at the moment it is added to the cart.
type Product struct {
	ID             string          `json:"product_id"`
	Name           string          `json:"name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	AvailableStock int             `json:"available_stock"`
}

// Line is one product's presence in the in-progress sale.
type Line struct {
	ProductID      string          `json:"product_id"`
	Name           string          `json:"name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	AvailableStock int             `json:"available_stock"`
}

// Total returns quantity * unit price for the line.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the in-progress sale: lines keyed by product id, kept in insertion
// order for display. Quantities are clamped to the stock known at the last
// mutation, never rejected.
//
// A Cart is a plain value owned by one caller and is not safe for
// concurrent use.
type Cart struct {
	lines []Line
	index map[string]int
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{index: make(map[string]int)}
}

// AddItem adds quantity units of p. An existing line for the same product is
// merged: its quantity becomes min(existing+quantity, p.AvailableStock) and
// its name, price and stock snapshot are refreshed from p. A new line starts
// at min(quantity, p.AvailableStock). A product with no stock is silently not
// added, and a quantity below 1 adds nothing. It returns the line's resulting
// quantity (0 when the product is not in the cart afterwards).
func (c *Cart) AddItem(p Product, quantity int) int {
	c.init()
	if quantity < 1 {
		if i, ok := c.index[p.ID]; ok {
			return c.lines[i].Quantity
		}
		return 0
	}
	stock := max(p.AvailableStock, 0)

	if i, ok := c.index[p.ID]; ok {
		line := &c.lines[i]
		line.Name = p.Name
		line.UnitPrice = p.UnitPrice
		line.AvailableStock = stock
		line.Quantity = min(line.Quantity+quantity, stock)
		if line.Quantity <= 0 {
			c.remove(i)
			return 0
		}
		return line.Quantity
	}

	qty := min(quantity, stock)
	if qty <= 0 {
		return 0
	}
	c.index[p.ID] = len(c.lines)
	c.lines = append(c.lines, Line{
		ProductID:      p.ID,
		Name:           p.Name,
		UnitPrice:      p.UnitPrice,
		Quantity:       qty,
		AvailableStock: stock,
	})
	return qty
}

// SetQuantity overwrites a line's quantity, clamped to its stock snapshot.
// A quantity of zero or less removes the line. Unknown products are ignored.
// It returns the line's resulting quantity.
func (c *Cart) SetQuantity(productID string, quantity int) int {
	c.init()
	i, ok := c.index[productID]
	if !ok {
		return 0
	}
	if quantity <= 0 {
		c.remove(i)
		return 0
	}
	line := &c.lines[i]
	line.Quantity = min(quantity, line.AvailableStock)
	if line.Quantity <= 0 {
		c.remove(i)
		return 0
	}
	return line.Quantity
}

// RemoveItem deletes the line for productID if present.
func (c *Cart) RemoveItem(productID string) {
	c.init()
	if i, ok := c.index[productID]; ok {
		c.remove(i)
	}
}

// Deduct takes quantity sold units off a line and lowers its stock snapshot
// by the same amount. The line is dropped once nothing is left to sell.
func (c *Cart) Deduct(productID string, quantity int) {
	c.init()
	i, ok := c.index[productID]
	if !ok || quantity <= 0 {
		return
	}
	line := &c.lines[i]
	line.Quantity -= quantity
	line.AvailableStock = max(line.AvailableStock-quantity, 0)
	line.Quantity = min(line.Quantity, line.AvailableStock)
	if line.Quantity <= 0 {
		c.remove(i)
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
	c.index = make(map[string]int)
}

// Line returns the line for productID.
func (c *Cart) Line(productID string) (Line, bool) {
	if c.index == nil {
		return Line{}, false
	}
	i, ok := c.index[productID]
	if !ok {
		return Line{}, false
	}
	return c.lines[i], true
}

// Lines returns a copy of the lines in display order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of distinct products in the cart.
func (c *Cart) Len() int { return len(c.lines) }

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// ItemCount returns the sum of quantities over all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, l := range c.lines {
		count += l.Quantity
	}
	return count
}

// Subtotal returns the sum of quantity * unit price over all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	total := money.Zero
	for _, l := range c.lines {
		total = total.Add(l.Total())
	}
	return total
}

// Clone returns an independent copy of the cart.
func (c *Cart) Clone() *Cart {
	cp := New()
	for _, l := range c.lines {
		cp.index[l.ProductID] = len(cp.lines)
		cp.lines = append(cp.lines, l)
	}
	return cp
}

// MarshalJSON renders the cart with its derived values.
func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Lines     []Line          `json:"lines"`
		ItemCount int             `json:"item_count"`
		Subtotal  decimal.Decimal `json:"subtotal"`
	}{
		Lines:     c.Lines(),
		ItemCount: c.ItemCount(),
		Subtotal:  c.Subtotal(),
	})
}

func (c *Cart) init() {
	if c.index == nil {
		c.index = make(map[string]int, len(c.lines))
		for i, l := range c.lines {
			c.index[l.ProductID] = i
		}
	}
}

// remove deletes lines[i] and reindexes the lines after it.
func (c *Cart) remove(i int) {
	delete(c.index, c.lines[i].ProductID)
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].ProductID] = j
	}
}
