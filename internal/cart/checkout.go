package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/utafrali/posterminal/internal/money"
	apperrors "github.com/utafrali/posterminal/pkg/errors"
	"github.com/utafrali/posterminal/pkg/validator"
)

// PaymentMethod is how the customer settles the sale.
type PaymentMethod string

// Supported payment methods.
const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank-transfer"
	PaymentMobileMoney  PaymentMethod = "mobile-money"
)

// WalkInCustomer is the name recorded when the cashier leaves it blank.
const WalkInCustomer = "Walk-in Customer"

// Customer is the optional buyer information collected at checkout.
type Customer struct {
	Name  string `json:"name" validate:"max=200"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

// CheckoutInput carries the UI-collected fields needed to build a draft.
type CheckoutInput struct {
	Customer      Customer        `json:"customer"`
	PaymentMethod PaymentMethod   `json:"payment_method" validate:"required,oneof=cash card bank-transfer mobile-money"`
	Discount      decimal.Decimal `json:"discount"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	Currency      string          `json:"currency,omitempty"`
}

// DraftItem is one line of a checkout draft.
type DraftItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
}

// CheckoutDraft is the sale handed to the backend at submit time.
// It satisfies Total = Subtotal - Discount + Tax with Tax = Subtotal * TaxRate.
type CheckoutDraft struct {
	Reference     string          `json:"reference"`
	CustomerID    string          `json:"customerId"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail,omitempty"`
	Items         []DraftItem     `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxRate       decimal.Decimal `json:"taxRate"`
	Tax           decimal.Decimal `json:"tax"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency,omitempty"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Totals are the derived checkout amounts for a cart.
type Totals struct {
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

// ComputeTotals derives tax and total from a subtotal in the fixed order
// tax = subtotal * taxRate, total = subtotal - discount + tax. Nothing is
// rounded. It does not validate discount; Snapshot does.
func ComputeTotals(subtotal, discount, taxRate decimal.Decimal) (tax, total decimal.Decimal) {
	tax = subtotal.Mul(taxRate)
	total = subtotal.Sub(discount).Add(tax)
	return tax, total
}

// Totals returns the cart's amounts for display: tax and total are rounded
// to cents.
func (c *Cart) Totals(discount, taxRate decimal.Decimal) Totals {
	subtotal := c.Subtotal()
	tax, total := ComputeTotals(subtotal, discount, taxRate)
	return Totals{
		ItemCount: c.ItemCount(),
		Subtotal:  subtotal,
		Discount:  discount,
		Tax:       money.Round(tax),
		Total:     money.Round(total),
	}
}

// Snapshot builds a CheckoutDraft from the current lines. It fails with a
// validation error when the cart is empty, when the discount is negative or
// exceeds the subtotal, when the tax rate is negative, or when the payment
// method or customer email is invalid. The cart itself is not modified.
func (c *Cart) Snapshot(in CheckoutInput) (*CheckoutDraft, error) {
	if c.IsEmpty() {
		return nil, apperrors.Validation("cart is empty")
	}
	if err := validator.Check(in); err != nil {
		return nil, err
	}

	subtotal := c.Subtotal()
	if in.Discount.IsNegative() {
		return nil, apperrors.Validation("discount must not be negative")
	}
	if in.Discount.GreaterThan(subtotal) {
		return nil, apperrors.Validation("discount must not exceed subtotal")
	}
	if in.TaxRate.IsNegative() {
		return nil, apperrors.Validation("tax rate must not be negative")
	}

	items := make([]DraftItem, 0, len(c.lines))
	for _, l := range c.lines {
		items = append(items, DraftItem{
			ID:        l.ProductID,
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			Price:     l.UnitPrice,
			Total:     l.Total(),
		})
	}

	name := in.Customer.Name
	if name == "" {
		name = WalkInCustomer
	}

	tax, total := ComputeTotals(subtotal, in.Discount, in.TaxRate)
	return &CheckoutDraft{
		Reference:     uuid.New().String(),
		CustomerID:    "guest",
		CustomerName:  name,
		CustomerEmail: in.Customer.Email,
		Items:         items,
		Subtotal:      subtotal,
		TaxRate:       in.TaxRate,
		Tax:           tax,
		Discount:      in.Discount,
		Total:         total,
		Currency:      in.Currency,
		PaymentMethod: in.PaymentMethod,
		Status:        "completed",
		CreatedAt:     time.Now().UTC(),
	}, nil
}
