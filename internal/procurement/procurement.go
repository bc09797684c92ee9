// Package procurement reads suppliers and places purchase orders with the
// backend.
package procurement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/utafrali/posterminal/internal/gateway"
	"github.com/utafrali/posterminal/internal/ident"
	"github.com/utafrali/posterminal/pkg/validator"
)

// Supplier is a vendor stock is ordered from.
type Supplier struct {
	ID   ident.ID `json:"id"`
	Name string   `json:"name"`
}

// Ref points at a related resource. The backend sends either the bare id or
// the embedded object.
type Ref struct {
	ID   ident.ID `json:"id"`
	Name string   `json:"name,omitempty"`
}

// UnmarshalJSON accepts an id, an object with id and name, or null.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		type plain Ref
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("decode reference: %w", err)
		}
		*r = Ref(p)
		return nil
	}
	var id ident.ID
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("decode reference: %w", err)
	}
	*r = Ref{ID: id}
	return nil
}

// Label is the name when known, otherwise "#id".
func (r Ref) Label() string {
	if r.Name != "" {
		return r.Name
	}
	if r.ID.IsZero() {
		return ""
	}
	return "#" + r.ID.String()
}

// PurchaseOrder is a stock order placed with a supplier.
type PurchaseOrder struct {
	ID          ident.ID   `json:"id"`
	Supplier    Ref        `json:"supplier"`
	Item        Ref        `json:"item"`
	Quantity    int        `json:"quantity"`
	DateOrdered *time.Time `json:"date_ordered,omitempty"`
	Received    bool       `json:"received"`
}

// OrderRequest is the payload for placing a purchase order.
type OrderRequest struct {
	Supplier ident.ID `json:"supplier" validate:"required"`
	Item     ident.ID `json:"item" validate:"required"`
	Quantity int      `json:"quantity" validate:"required,min=1"`
}

// Client talks to the procurement endpoints.
type Client struct {
	gw *gateway.Gateway
}

// NewClient creates a procurement client on top of the gateway.
func NewClient(gw *gateway.Gateway) *Client {
	return &Client{gw: gw}
}

// Suppliers lists known suppliers.
func (c *Client) Suppliers(ctx context.Context) ([]Supplier, error) {
	out, err := gateway.Call[[]Supplier](ctx, c.gw, http.MethodGet, "/suppliers/", nil)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return out, nil
}

// Orders lists purchase orders.
func (c *Client) Orders(ctx context.Context) ([]PurchaseOrder, error) {
	out, err := gateway.Call[[]PurchaseOrder](ctx, c.gw, http.MethodGet, "/purchase-orders/", nil)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	return out, nil
}

// PlaceOrder creates a purchase order.
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (*PurchaseOrder, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	out, err := gateway.Call[*PurchaseOrder](ctx, c.gw, http.MethodPost, "/purchase-orders/", req)
	if err != nil {
		return nil, fmt.Errorf("place purchase order: %w", err)
	}
	return out, nil
}

// Pending returns the orders not yet received.
func Pending(orders []PurchaseOrder) []PurchaseOrder {
	var out []PurchaseOrder
	for _, o := range orders {
		if !o.Received {
			out = append(out, o)
		}
	}
	return out
}
