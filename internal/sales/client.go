package sales

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/utafrali/posterminal/internal/cart"
	"github.com/utafrali/posterminal/internal/gateway"
	apperrors "github.com/utafrali/posterminal/pkg/errors"
	"github.com/utafrali/posterminal/pkg/validator"
)

// Client reads and writes sales and customers on the backend.
type Client struct {
	gw *gateway.Gateway
}

// NewClient creates a sales client on top of the gateway.
func NewClient(gw *gateway.Gateway) *Client {
	return &Client{gw: gw}
}

// List returns every sale the backend exposes to the operator.
func (c *Client) List(ctx context.Context) ([]Sale, error) {
	sales, err := gateway.Call[[]Sale](ctx, c.gw, http.MethodGet, "/sales", nil)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

// Get returns one sale.
func (c *Client) Get(ctx context.Context, id string) (*Sale, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	sale, err := gateway.Call[*Sale](ctx, c.gw, http.MethodGet, salePath(id), nil)
	if err != nil {
		return nil, fmt.Errorf("get sale %s: %w", id, err)
	}
	if sale == nil {
		return nil, apperrors.NotFound("sale", id)
	}
	return sale, nil
}

// Create submits a checkout draft. The draft reference travels as the
// Idempotency-Key so a resubmitted draft is recorded once.
func (c *Client) Create(ctx context.Context, draft *cart.CheckoutDraft) (*Sale, error) {
	if draft == nil {
		return nil, apperrors.Validation("checkout draft is required")
	}
	if draft.Reference != "" {
		ctx = gateway.WithIdempotencyKey(ctx, draft.Reference)
	}
	sale, err := gateway.Call[*Sale](ctx, c.gw, http.MethodPost, "/sales", draft)
	if err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}
	return sale, nil
}

// Update applies a partial update to a sale.
func (c *Client) Update(ctx context.Context, id string, patch Patch) (*Sale, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if err := validator.Check(patch); err != nil {
		return nil, err
	}
	sale, err := gateway.Call[*Sale](ctx, c.gw, http.MethodPatch, salePath(id), patch)
	if err != nil {
		return nil, fmt.Errorf("update sale %s: %w", id, err)
	}
	return sale, nil
}

// Cancel marks a sale cancelled. Restocking is the backend's concern.
func (c *Client) Cancel(ctx context.Context, id string) (*Sale, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	sale, err := gateway.Call[*Sale](ctx, c.gw, http.MethodPatch, salePath(id)+"/cancel", struct{}{})
	if err != nil {
		return nil, fmt.Errorf("cancel sale %s: %w", id, err)
	}
	return sale, nil
}

// ByDate returns the sales recorded on day's calendar date.
func (c *Client) ByDate(ctx context.Context, day time.Time) ([]Sale, error) {
	date := day.Format(time.DateOnly)
	sales, err := gateway.Call[[]Sale](ctx, c.gw, http.MethodGet, "/sales/date/"+date, nil)
	if err != nil {
		return nil, fmt.Errorf("list sales for %s: %w", date, err)
	}
	return sales, nil
}

// Range returns the sales between start and end inclusive.
func (c *Client) Range(ctx context.Context, start, end time.Time) ([]Sale, error) {
	if end.Before(start) {
		return nil, apperrors.Validation("range end must not be before start")
	}
	q := url.Values{}
	q.Set("start", start.Format(time.DateOnly))
	q.Set("end", end.Format(time.DateOnly))
	sales, err := gateway.Call[[]Sale](ctx, c.gw, http.MethodGet, "/sales/range?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("list sales in range: %w", err)
	}
	return sales, nil
}

// Analytics returns the backend's summary for a period.
func (c *Client) Analytics(ctx context.Context, period Period) (*Analytics, error) {
	if !period.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("unknown analytics period %q", period))
	}
	out, err := gateway.Call[*Analytics](ctx, c.gw, http.MethodGet, "/sales/analytics/"+string(period), nil)
	if err != nil {
		return nil, fmt.Errorf("sales analytics for %s: %w", period, err)
	}
	if out == nil {
		out = &Analytics{}
	}
	return out, nil
}

// Customers lists known customers.
func (c *Client) Customers(ctx context.Context) ([]Customer, error) {
	customers, err := gateway.Call[[]Customer](ctx, c.gw, http.MethodGet, "/customers", nil)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// CreateCustomer registers a customer.
func (c *Client) CreateCustomer(ctx context.Context, in NewCustomer) (*Customer, error) {
	if err := validator.Check(in); err != nil {
		return nil, err
	}
	customer, err := gateway.Call[*Customer](ctx, c.gw, http.MethodPost, "/customers", in)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}

func salePath(id string) string {
	return "/sales/" + url.PathEscape(id)
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.Validation("sale id is required")
	}
	return nil
}
