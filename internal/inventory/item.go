package inventory

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/posterminal/internal/cart"
	"github.com/utafrali/posterminal/internal/ident"
)

// Status is the stock level bucket of an item.
type Status string

// Stock statuses.
const (
	StatusInStock    Status = "in-stock"
	StatusLowStock   Status = "low-stock"
	StatusOutOfStock Status = "out-of-stock"
)

// Item is an inventory record as the backend returns it.
type Item struct {
	ID                ident.ID        `json:"id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	Category          Category        `json:"category"`
	Quantity          int             `json:"quantity"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	Supplier          string          `json:"supplier"`
	Location          string          `json:"location"`
	MinStock          int             `json:"minStock"`
	MaxStock          int             `json:"maxStock"`
	ReorderLevel      int             `json:"reorderLevel,omitempty"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	LastUpdated       *time.Time      `json:"lastUpdated,omitempty"`
	Status            Status          `json:"status"`
}

// UnmarshalJSON decodes an item, accepting "stock" as an older spelling of
// "quantity" and deriving Status when the backend leaves it out.
func (i *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var aux struct {
		plain
		Stock *int `json:"stock"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*i = Item(aux.plain)
	if aux.Stock != nil && !hasKey(data, "quantity") {
		i.Quantity = *aux.Stock
	}
	if i.Status == "" {
		i.Status = i.DeriveStatus()
	}
	return nil
}

// Threshold is the quantity at or below which the item counts as low stock.
func (i Item) Threshold() int {
	if i.MinStock > 0 {
		return i.MinStock
	}
	return i.LowStockThreshold
}

// DeriveStatus computes the stock bucket from the quantity and threshold.
func (i Item) DeriveStatus() Status {
	switch {
	case i.Quantity <= 0:
		return StatusOutOfStock
	case i.Quantity <= i.Threshold():
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// Sellable reports whether the item can be put in a cart.
func (i Item) Sellable() bool {
	return i.Quantity > 0
}

// Product is the cart's view of the item at this moment.
func (i Item) Product() cart.Product {
	return cart.Product{
		ID:             i.ID.String(),
		Name:           i.Name,
		UnitPrice:      i.Price,
		AvailableStock: max(i.Quantity, 0),
	}
}

// NewItem is the payload for creating an item.
type NewItem struct {
	Name              string           `json:"name" validate:"required,max=200"`
	Quantity          int              `json:"quantity" validate:"gte=0"`
	SKU               string           `json:"sku,omitempty"`
	Category          *Category        `json:"category,omitempty"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	Cost              *decimal.Decimal `json:"cost,omitempty"`
	Supplier          string           `json:"supplier,omitempty"`
	Location          string           `json:"location,omitempty"`
	MinStock          *int             `json:"minStock,omitempty" validate:"omitempty,gte=0"`
	MaxStock          *int             `json:"maxStock,omitempty" validate:"omitempty,gte=0"`
	ReorderLevel      *int             `json:"reorderLevel,omitempty" validate:"omitempty,gte=0"`
	LowStockThreshold *int             `json:"low_stock_threshold,omitempty" validate:"omitempty,gte=0"`
}

// ItemPatch is a partial update; nil fields are left unchanged.
type ItemPatch struct {
	Name     *string          `json:"name,omitempty"`
	SKU      *string          `json:"sku,omitempty"`
	Category *Category        `json:"category,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Cost     *decimal.Decimal `json:"cost,omitempty"`
	Supplier *string          `json:"supplier,omitempty"`
	Location *string          `json:"location,omitempty"`
	MinStock *int             `json:"minStock,omitempty"`
	MaxStock *int             `json:"maxStock,omitempty"`
}

func hasKey(data []byte, key string) bool {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return false
	}
	_, ok := keys[key]
	return ok
}
