package terminal

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/posterminal/internal/cart"
)

var (
	tea  = cart.Product{ID: "tea", Name: "Tea", UnitPrice: decimal.NewFromInt(50), AvailableStock: 10}
	milk = cart.Product{ID: "milk", Name: "Milk", UnitPrice: decimal.RequireFromString("60.50"), AvailableStock: 3}
	cash = cart.CheckoutInput{PaymentMethod: cart.PaymentCash, TaxRate: decimal.RequireFromString("0.08")}
)

func TestTill_Mutations(t *testing.T) {
	till := New()

	assert.Equal(t, 2, till.AddItem(tea, 2))
	assert.Equal(t, 3, till.AddItem(milk, 5))
	assert.Equal(t, 4, till.SetQuantity("tea", 4))
	till.RemoveItem("milk")

	line, ok := till.Line("tea")
	require.True(t, ok)
	assert.Equal(t, 4, line.Quantity)
	_, ok = till.Line("milk")
	assert.False(t, ok)

	till.Clear()
	assert.Empty(t, till.View(decimal.Zero, decimal.Zero).Lines)
}

func TestTill_View(t *testing.T) {
	till := New()
	till.AddItem(tea, 2)

	v := till.View(decimal.NewFromInt(10), decimal.RequireFromString("0.08"))

	require.Len(t, v.Lines, 1)
	assert.Equal(t, 2, v.Totals.ItemCount)
	assert.Equal(t, "100", v.Totals.Subtotal.String())
	assert.Equal(t, "8", v.Totals.Tax.String())
	assert.Equal(t, "98", v.Totals.Total.String())
}

func TestTill_Snapshot_ReusesReferenceForUnchangedCart(t *testing.T) {
	till := New()
	till.AddItem(tea, 1)

	first, v1, err := till.Snapshot(cash)
	require.NoError(t, err)
	second, v2, err := till.Snapshot(cash)
	require.NoError(t, err)
	assert.Equal(t, first.Reference, second.Reference)
	assert.Equal(t, v1, v2)

	till.AddItem(tea, 1)
	third, _, err := till.Snapshot(cash)
	require.NoError(t, err)
	assert.NotEqual(t, first.Reference, third.Reference)
}

func TestTill_Snapshot_FreshReferenceAfterClear(t *testing.T) {
	till := New()
	till.AddItem(tea, 1)
	first, _, err := till.Snapshot(cash)
	require.NoError(t, err)

	till.Clear()
	till.AddItem(tea, 1)
	second, _, err := till.Snapshot(cash)
	require.NoError(t, err)

	assert.NotEqual(t, first.Reference, second.Reference)
}

func TestTill_Snapshot_EmptyCart(t *testing.T) {
	_, _, err := New().Snapshot(cash)
	assert.Error(t, err)
}

func TestTill_Snapshot_FreshReferenceWhenInputChanges(t *testing.T) {
	till := New()
	till.AddItem(tea, 1)

	card := cash
	card.PaymentMethod = cart.PaymentCard
	declined, _, err := till.Snapshot(card)
	require.NoError(t, err)

	discounted := cash
	discounted.Discount = decimal.NewFromInt(10)
	retry, _, err := till.Snapshot(discounted)
	require.NoError(t, err)
	assert.NotEqual(t, declined.Reference, retry.Reference)
	assert.False(t, declined.Total.Equal(retry.Total))

	again, _, err := till.Snapshot(discounted)
	require.NoError(t, err)
	assert.Equal(t, retry.Reference, again.Reference, "same cart and input reuse the key")

	named := discounted
	named.Customer = cart.Customer{Name: "Ada"}
	renamed, _, err := till.Snapshot(named)
	require.NoError(t, err)
	assert.NotEqual(t, again.Reference, renamed.Reference)
}

func TestTill_CommitCheckout_ClearsUnchangedCart(t *testing.T) {
	till := New()
	till.AddItem(tea, 2)
	till.AddItem(milk, 1)
	draft, version, err := till.Snapshot(cash)
	require.NoError(t, err)

	till.CommitCheckout(version, draft)

	assert.Empty(t, till.View(decimal.Zero, decimal.Zero).Lines)

	till.AddItem(tea, 2)
	till.AddItem(milk, 1)
	next, _, err := till.Snapshot(cash)
	require.NoError(t, err)
	assert.NotEqual(t, draft.Reference, next.Reference, "the next sale gets a new key")
}

func TestTill_CommitCheckout_KeepsLinesChangedInFlight(t *testing.T) {
	coffee := cart.Product{ID: "coffee", Name: "Coffee", UnitPrice: decimal.NewFromInt(4), AvailableStock: 20}
	till := New()
	till.AddItem(tea, 1)
	till.AddItem(milk, 2)
	draft, version, err := till.Snapshot(cash)
	require.NoError(t, err)

	// The cashier keeps ringing while the sale is being submitted.
	till.AddItem(coffee, 2)
	till.AddItem(tea, 2)
	till.CommitCheckout(version, draft)

	line, ok := till.Line("coffee")
	require.True(t, ok, "coffee was never sold")
	assert.Equal(t, 2, line.Quantity)
	line, ok = till.Line("tea")
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity, "only the submitted tea is taken off")
	assert.Equal(t, 9, line.AvailableStock)
	_, ok = till.Line("milk")
	assert.False(t, ok)
}

func TestTill_ConcurrentAdds(t *testing.T) {
	till := New()
	big := cart.Product{ID: "bulk", Name: "Bulk", UnitPrice: decimal.NewFromInt(1), AvailableStock: 1000}

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			till.AddItem(big, 1)
		}()
	}
	wg.Wait()

	line, ok := till.Line("bulk")
	require.True(t, ok)
	assert.Equal(t, 100, line.Quantity)
}
