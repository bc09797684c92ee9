package sales

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/posterminal/internal/ident"
)

// Status is the lifecycle state of a recorded sale.
type Status string

// Sale statuses.
const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
)

// Item is one line of a recorded sale.
type Item struct {
	ID        ident.ID        `json:"id,omitempty"`
	ProductID ident.ID        `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
}

// UnmarshalJSON also accepts the "item" and "unit_price" spellings and fills
// Total when the backend omits it.
func (i *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var aux struct {
		plain
		Item      *ident.ID        `json:"item"`
		UnitPrice *decimal.Decimal `json:"unit_price"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*i = Item(aux.plain)
	if i.ProductID.IsZero() && aux.Item != nil {
		i.ProductID = *aux.Item
	}
	if i.Price.IsZero() && aux.UnitPrice != nil {
		i.Price = *aux.UnitPrice
	}
	if i.Total.IsZero() {
		i.Total = i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
	}
	return nil
}

// Sale is a persisted sale record.
type Sale struct {
	ID            ident.ID        `json:"id"`
	Reference     string          `json:"reference,omitempty"`
	CustomerID    ident.ID        `json:"customerId,omitempty"`
	CustomerName  string          `json:"customerName,omitempty"`
	CustomerEmail string          `json:"customerEmail,omitempty"`
	Items         []Item          `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"paymentMethod"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     *time.Time      `json:"updatedAt,omitempty"`
}

// UnmarshalJSON also accepts the older "date", "customer" and
// "payment_method" spellings. A sale without a status counts as completed.
func (s *Sale) UnmarshalJSON(data []byte) error {
	type plain Sale
	var aux struct {
		plain
		Date          *time.Time `json:"date"`
		Customer      *ident.ID  `json:"customer"`
		PaymentMethod string     `json:"payment_method"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = Sale(aux.plain)
	if s.CreatedAt.IsZero() && aux.Date != nil {
		s.CreatedAt = *aux.Date
	}
	if s.CustomerID.IsZero() && aux.Customer != nil {
		s.CustomerID = *aux.Customer
	}
	if s.PaymentMethod == "" {
		s.PaymentMethod = aux.PaymentMethod
	}
	if s.Status == "" {
		s.Status = StatusCompleted
	}
	return nil
}

// Completed reports whether the sale counts toward revenue.
func (s Sale) Completed() bool {
	return s.Status == StatusCompleted
}

// Patch is a partial sale update; nil fields are left unchanged.
type Patch struct {
	CustomerName  *string          `json:"customerName,omitempty"`
	CustomerEmail *string          `json:"customerEmail,omitempty" validate:"omitempty,email"`
	PaymentMethod *string          `json:"paymentMethod,omitempty" validate:"omitempty,oneof=cash card bank-transfer mobile-money"`
	Discount      *decimal.Decimal `json:"discount,omitempty"`
	Status        *Status          `json:"status,omitempty" validate:"omitempty,oneof=completed pending cancelled"`
}

// Customer is a known buyer.
type Customer struct {
	ID    ident.ID `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Phone string   `json:"phone"`
}

// NewCustomer is the payload for creating a customer.
type NewCustomer struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,max=32"`
}

// Period is an analytics reporting window.
type Period string

// Analytics periods.
const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	switch p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// TopProduct is one row of the best sellers in an analytics report.
type TopProduct struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// Analytics summarizes sales over a period.
type Analytics struct {
	TotalSales        int             `json:"totalSales"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	TopProducts       []TopProduct    `json:"topProducts"`
}
