package inventory

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/utafrali/posterminal/internal/gateway"
	apperrors "github.com/utafrali/posterminal/pkg/errors"
	"github.com/utafrali/posterminal/pkg/validator"
)

// Client reads and writes inventory on the backend.
type Client struct {
	gw *gateway.Gateway
}

// NewClient creates an inventory client on top of the gateway.
func NewClient(gw *gateway.Gateway) *Client {
	return &Client{gw: gw}
}

// List returns every inventory item.
func (c *Client) List(ctx context.Context) ([]Item, error) {
	items, err := gateway.Call[[]Item](ctx, c.gw, http.MethodGet, "/inventory", nil)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	return items, nil
}

// Get returns one item.
func (c *Client) Get(ctx context.Context, id string) (*Item, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	item, err := gateway.Call[*Item](ctx, c.gw, http.MethodGet, itemPath(id), nil)
	if err != nil {
		return nil, fmt.Errorf("get inventory item %s: %w", id, err)
	}
	if item == nil {
		return nil, apperrors.NotFound("inventory item", id)
	}
	return item, nil
}

// Create adds a new item.
func (c *Client) Create(ctx context.Context, in NewItem) (*Item, error) {
	if err := validator.Check(in); err != nil {
		return nil, err
	}
	item, err := gateway.Call[*Item](ctx, c.gw, http.MethodPost, "/inventory", in)
	if err != nil {
		return nil, fmt.Errorf("create inventory item: %w", err)
	}
	return item, nil
}

// Update applies a partial update.
func (c *Client) Update(ctx context.Context, id string, patch ItemPatch) (*Item, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	item, err := gateway.Call[*Item](ctx, c.gw, http.MethodPatch, itemPath(id), patch)
	if err != nil {
		return nil, fmt.Errorf("update inventory item %s: %w", id, err)
	}
	return item, nil
}

// Delete removes an item.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	if _, err := c.gw.Execute(ctx, http.MethodDelete, itemPath(id), nil); err != nil {
		return fmt.Errorf("delete inventory item %s: %w", id, err)
	}
	return nil
}

// UpdateStock sets the on-hand quantity of an item.
func (c *Client) UpdateStock(ctx context.Context, id string, quantity int) (*Item, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, apperrors.ValidationFields("invalid stock update", map[string]string{"quantity": "must be greater than or equal to 0"})
	}
	body := struct {
		Quantity int `json:"quantity"`
	}{quantity}
	item, err := gateway.Call[*Item](ctx, c.gw, http.MethodPatch, itemPath(id)+"/stock", body)
	if err != nil {
		return nil, fmt.Errorf("update stock of %s: %w", id, err)
	}
	return item, nil
}

// LowStock asks the backend for its low-stock list.
func (c *Client) LowStock(ctx context.Context) ([]Item, error) {
	items, err := gateway.Call[[]Item](ctx, c.gw, http.MethodGet, "/inventory/low-stock", nil)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return items, nil
}

// Search finds items matching query.
func (c *Client) Search(ctx context.Context, query string) ([]Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.List(ctx)
	}
	items, err := gateway.Call[[]Item](ctx, c.gw, http.MethodGet, "/inventory/search?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("search inventory: %w", err)
	}
	return items, nil
}

// Categories lists the known categories. The backend may answer with names,
// ids or objects; all are normalized.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	cats, err := gateway.Call[[]Category](ctx, c.gw, http.MethodGet, "/inventory/categories", nil)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// Suppliers lists supplier names referenced by inventory.
func (c *Client) Suppliers(ctx context.Context) ([]string, error) {
	names, err := gateway.Call[[]string](ctx, c.gw, http.MethodGet, "/inventory/suppliers", nil)
	if err != nil {
		return nil, fmt.Errorf("list inventory suppliers: %w", err)
	}
	return names, nil
}

func itemPath(id string) string {
	return "/inventory/" + url.PathEscape(id)
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.ValidationFields("missing item id", map[string]string{"id": "is required"})
	}
	return nil
}
