// Package terminal holds the till's single in-progress cart.
package terminal

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/utafrali/posterminal/internal/cart"
)

// View is a consistent read of the cart and its totals.
type View struct {
	Lines  []cart.Line `json:"lines"`
	Totals cart.Totals `json:"totals"`
}

// Till serializes every cart operation behind one mutex. It also remembers
// the reference of the last snapshot so a checkout retried on an unchanged
// cart with the same checkout input reuses it as the idempotency key.
type Till struct {
	mu      sync.Mutex
	cart    *cart.Cart
	version uint64
	pending *pendingDraft
}

type pendingDraft struct {
	version   uint64
	input     cart.CheckoutInput
	reference string
}

// sameInput compares the fields that end up in the submitted sale.
func sameInput(a, b cart.CheckoutInput) bool {
	return a.Customer == b.Customer &&
		a.PaymentMethod == b.PaymentMethod &&
		a.Discount.Equal(b.Discount) &&
		a.TaxRate.Equal(b.TaxRate) &&
		a.Currency == b.Currency
}

// New returns a till with an empty cart.
func New() *Till {
	return &Till{cart: cart.New()}
}

// AddItem adds quantity units of p and returns the line's quantity.
func (t *Till) AddItem(p cart.Product, quantity int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.version++
	return t.cart.AddItem(p, quantity)
}

// SetQuantity overwrites a line's quantity and returns the result.
func (t *Till) SetQuantity(productID string, quantity int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.version++
	return t.cart.SetQuantity(productID, quantity)
}

// RemoveItem drops a line.
func (t *Till) RemoveItem(productID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.version++
	t.cart.RemoveItem(productID)
}

// Clear empties the cart.
func (t *Till) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.version++
	t.pending = nil
	t.cart.Clear()
}

// Line returns the line for productID.
func (t *Till) Line(productID string) (cart.Line, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cart.Line(productID)
}

// View returns the lines and totals computed under one lock.
func (t *Till) View(discount, taxRate decimal.Decimal) View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return View{
		Lines:  t.cart.Lines(),
		Totals: t.cart.Totals(discount, taxRate),
	}
}

// Snapshot builds a checkout draft from the current cart and returns the
// cart version it was taken at. If neither the cart nor the input changed
// since the previous snapshot, the draft keeps that snapshot's reference.
func (t *Till) Snapshot(in cart.CheckoutInput) (*cart.CheckoutDraft, uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	draft, err := t.cart.Snapshot(in)
	if err != nil {
		return nil, 0, err
	}
	if p := t.pending; p != nil && p.version == t.version && sameInput(p.input, in) {
		draft.Reference = p.reference
	}
	t.pending = &pendingDraft{version: t.version, input: in, reference: draft.Reference}
	return draft, t.version, nil
}

// CommitCheckout removes a sold draft from the till. When the cart is still
// at version the whole cart is cleared. Otherwise only the submitted
// quantities are taken off, so lines added or raised while the sale was in
// flight stay.
func (t *Till) CommitCheckout(version uint64, draft *cart.CheckoutDraft) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = nil
	if version == t.version {
		t.version++
		t.cart.Clear()
		return
	}
	t.version++
	for _, item := range draft.Items {
		t.cart.Deduct(item.ProductID, item.Quantity)
	}
}
