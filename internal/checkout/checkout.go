// Package checkout turns the till's cart into a recorded sale.
package checkout

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/utafrali/posterminal/internal/cart"
	"github.com/utafrali/posterminal/internal/event"
	"github.com/utafrali/posterminal/internal/ident"
	"github.com/utafrali/posterminal/internal/sales"
	"github.com/utafrali/posterminal/pkg/logger"
)

var checkoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "checkout_total",
		Help: "Checkout attempts by result.",
	},
	[]string{"result"},
)

// Cart is the till state a checkout reads from. Snapshot reports the cart
// version the draft was taken at; CommitCheckout removes the sold draft.
type Cart interface {
	Snapshot(in cart.CheckoutInput) (*cart.CheckoutDraft, uint64, error)
	CommitCheckout(version uint64, draft *cart.CheckoutDraft)
}

// Recorder persists a draft as a sale on the backend.
type Recorder interface {
	Create(ctx context.Context, draft *cart.CheckoutDraft) (*sales.Sale, error)
}

// Config holds the till-wide checkout settings.
type Config struct {
	TerminalID string
	TaxRate    decimal.Decimal
	Currency   string
}

// Request is what the operator submits at the payment step.
type Request struct {
	Customer      cart.Customer      `json:"customer"`
	PaymentMethod cart.PaymentMethod `json:"payment_method"`
	Discount      decimal.Decimal    `json:"discount"`
}

// Receipt is the outcome of a successful checkout.
type Receipt struct {
	Sale  *sales.Sale         `json:"sale"`
	Draft *cart.CheckoutDraft `json:"draft"`
}

// Service orchestrates snapshot, submit, commit and publish.
type Service struct {
	cfg       Config
	recorder  Recorder
	publisher event.Publisher
	logger    *slog.Logger
}

// NewService creates a checkout service. A nil publisher publishes nothing.
func NewService(cfg Config, recorder Recorder, publisher event.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = event.Nop{}
	}
	return &Service{cfg: cfg, recorder: recorder, publisher: publisher, logger: logger}
}

// TaxRate returns the configured flat tax rate.
func (s *Service) TaxRate() decimal.Decimal { return s.cfg.TaxRate }

// Checkout snapshots c, records the sale and takes the sold lines off c.
// Nothing is removed until the backend accepted the sale; on any failure the
// cart is left as it was. Lines added while the sale was in flight are kept.
// A failure to publish the sale event is logged and does not fail the
// checkout.
func (s *Service) Checkout(ctx context.Context, c Cart, req Request) (*Receipt, error) {
	draft, version, err := c.Snapshot(cart.CheckoutInput{
		Customer:      req.Customer,
		PaymentMethod: req.PaymentMethod,
		Discount:      req.Discount,
		TaxRate:       s.cfg.TaxRate,
		Currency:      s.cfg.Currency,
	})
	if err != nil {
		checkoutsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	sale, err := s.recorder.Create(ctx, draft)
	if err != nil {
		checkoutsTotal.WithLabelValues("failed").Inc()
		s.logger.WarnContext(ctx, "checkout failed, cart kept",
			slog.String("reference", draft.Reference),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	if sale == nil {
		// Accepted without a body; the draft is what was recorded.
		sale = saleFromDraft(draft)
	}

	c.CommitCheckout(version, draft)
	checkoutsTotal.WithLabelValues("completed").Inc()
	s.logger.InfoContext(ctx, "sale completed",
		slog.String("sale_id", sale.ID.String()),
		slog.String("reference", draft.Reference),
		slog.String("total", draft.Total.String()),
		slog.String("payment_method", string(draft.PaymentMethod)),
	)

	s.publish(ctx, sale, draft)
	return &Receipt{Sale: sale, Draft: draft}, nil
}

func (s *Service) publish(ctx context.Context, sale *sales.Sale, draft *cart.CheckoutDraft) {
	itemCount := 0
	for _, it := range draft.Items {
		itemCount += it.Quantity
	}
	completedAt := sale.CreatedAt
	if completedAt.IsZero() {
		completedAt = time.Now().UTC()
	}
	e := event.SaleCompleted{
		SaleID:        sale.ID.String(),
		Reference:     draft.Reference,
		TerminalID:    s.cfg.TerminalID,
		CashierID:     logger.UserIDFromContext(ctx),
		ItemCount:     itemCount,
		Subtotal:      draft.Subtotal,
		Tax:           draft.Tax,
		Discount:      draft.Discount,
		Total:         draft.Total,
		Currency:      draft.Currency,
		PaymentMethod: string(draft.PaymentMethod),
		CompletedAt:   completedAt,
	}
	if err := s.publisher.SaleCompleted(ctx, e); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish sale event",
			slog.String("sale_id", e.SaleID),
			slog.String("error", err.Error()),
		)
	}
}

func saleFromDraft(d *cart.CheckoutDraft) *sales.Sale {
	items := make([]sales.Item, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, sales.Item{
			ProductID: ident.ID(it.ProductID),
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Total:     it.Total,
		})
	}
	return &sales.Sale{
		Reference:     d.Reference,
		CustomerName:  d.CustomerName,
		CustomerEmail: d.CustomerEmail,
		Items:         items,
		Subtotal:      d.Subtotal,
		Tax:           d.Tax,
		Discount:      d.Discount,
		Total:         d.Total,
		PaymentMethod: string(d.PaymentMethod),
		Status:        sales.StatusCompleted,
		CreatedAt:     d.CreatedAt,
	}
}
