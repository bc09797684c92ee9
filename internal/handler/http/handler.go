package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/posterminal/internal/checkout"
	"github.com/utafrali/posterminal/internal/gateway"
	"github.com/utafrali/posterminal/internal/inventory"
	"github.com/utafrali/posterminal/internal/procurement"
	"github.com/utafrali/posterminal/internal/sales"
	"github.com/utafrali/posterminal/internal/session"
	"github.com/utafrali/posterminal/internal/terminal"
	"github.com/utafrali/posterminal/pkg/health"
	"github.com/utafrali/posterminal/pkg/middleware"
)

// Authenticator signs operators in and out of the till.
type Authenticator interface {
	Login(ctx context.Context, creds gateway.Credentials) (*session.User, error)
	Register(ctx context.Context, reg gateway.Registration) (*session.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*session.User, error)
	CurrentUser(ctx context.Context) (*session.User, error)
}

// Inventory is the backend stock list.
type Inventory interface {
	List(ctx context.Context) ([]inventory.Item, error)
	Get(ctx context.Context, id string) (*inventory.Item, error)
	LowStock(ctx context.Context) ([]inventory.Item, error)
	Search(ctx context.Context, query string) ([]inventory.Item, error)
	Categories(ctx context.Context) ([]inventory.Category, error)
	Create(ctx context.Context, in inventory.NewItem) (*inventory.Item, error)
	Update(ctx context.Context, id string, patch inventory.ItemPatch) (*inventory.Item, error)
	Delete(ctx context.Context, id string) error
	UpdateStock(ctx context.Context, id string, quantity int) (*inventory.Item, error)
}

// Sales reads, amends and cancels recorded sales, and keeps the customer list.
type Sales interface {
	List(ctx context.Context) ([]sales.Sale, error)
	ByDate(ctx context.Context, day time.Time) ([]sales.Sale, error)
	Range(ctx context.Context, start, end time.Time) ([]sales.Sale, error)
	Analytics(ctx context.Context, period sales.Period) (*sales.Analytics, error)
	Update(ctx context.Context, id string, patch sales.Patch) (*sales.Sale, error)
	Cancel(ctx context.Context, id string) (*sales.Sale, error)
	Customers(ctx context.Context) ([]sales.Customer, error)
	CreateCustomer(ctx context.Context, in sales.NewCustomer) (*sales.Customer, error)
}

// Procurement lists suppliers and purchase orders.
type Procurement interface {
	Suppliers(ctx context.Context) ([]procurement.Supplier, error)
	Orders(ctx context.Context) ([]procurement.PurchaseOrder, error)
	PlaceOrder(ctx context.Context, req procurement.OrderRequest) (*procurement.PurchaseOrder, error)
}

// Checkouter turns the till's cart into a sale.
type Checkouter interface {
	Checkout(ctx context.Context, c checkout.Cart, req checkout.Request) (*checkout.Receipt, error)
	TaxRate() decimal.Decimal
}

// Deps is everything the local API needs.
type Deps struct {
	Auth        Authenticator
	Till        *terminal.Till
	Checkout    Checkouter
	Inventory   Inventory
	Sales       Sales
	Procurement Procurement
	Health      *health.Handler
	Logger      *slog.Logger
	CORS        middleware.CORSConfig
	// LoginLimiter throttles sign-in and registration. Optional.
	LoginLimiter *middleware.Limiter
	// Touch records operator activity for idle logout. Optional.
	Touch func()
	// Now is the clock for "today" reports. Defaults to time.Now.
	Now func() time.Time
}

func operatorFrom(auth Authenticator) middleware.OperatorResolver {
	return func(ctx context.Context) (*middleware.Operator, error) {
		user, err := auth.CurrentUser(ctx)
		if err != nil || user == nil {
			return nil, err
		}
		return &middleware.Operator{ID: user.ID.String(), Role: string(user.Role)}, nil
	}
}
