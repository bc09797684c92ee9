package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/posterminal/internal/money"
	"github.com/utafrali/posterminal/internal/terminal"
	apperrors "github.com/utafrali/posterminal/pkg/errors"
	"github.com/utafrali/posterminal/pkg/httputil"
	"github.com/utafrali/posterminal/pkg/validator"
)

// CartHandler exposes the till's cart.
type CartHandler struct {
	till      *terminal.Till
	inventory Inventory
	taxRate   decimal.Decimal
	logger    *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(till *terminal.Till, inv Inventory, taxRate decimal.Decimal, logger *slog.Logger) *CartHandler {
	return &CartHandler{till: till, inventory: inv, taxRate: taxRate, logger: logger}
}

// AddItemRequest is the JSON request body for adding a product to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// SetQuantityRequest is the JSON request body for changing a line.
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

// CartResponse is the cart view plus the quantity of the line just changed.
type CartResponse struct {
	terminal.View
	Quantity *int `json:"quantity,omitempty"`
}

// Get handles GET /api/v1/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.till.View(money.Zero, h.taxRate))
}

// Clear handles DELETE /api/v1/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.till.Clear()
	httputil.WriteData(w, http.StatusOK, h.till.View(money.Zero, h.taxRate))
}

// Totals handles GET /api/v1/cart/totals?discount=
func (h *CartHandler) Totals(w http.ResponseWriter, r *http.Request) {
	discount := money.Zero
	if raw := r.URL.Query().Get("discount"); raw != "" {
		d, err := money.Parse(raw)
		if err != nil {
			httputil.WriteError(w, r, apperrors.ValidationFields("invalid discount",
				map[string]string{"discount": "must be a decimal amount"}), h.logger)
			return
		}
		discount = d
	}
	if discount.IsNegative() {
		httputil.WriteError(w, r, apperrors.ValidationFields("invalid discount",
			map[string]string{"discount": "must not be negative"}), h.logger)
		return
	}

	view := h.till.View(discount, h.taxRate)
	if discount.GreaterThan(view.Totals.Subtotal) {
		httputil.WriteError(w, r, apperrors.ValidationFields("invalid discount",
			map[string]string{"discount": "must not exceed subtotal"}), h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view.Totals)
}

// AddItem handles POST /api/v1/cart/items. The product is looked up on the
// backend so the line carries the current price and stock.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	item, err := h.inventory.Get(r.Context(), req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if !item.Sellable() {
		httputil.WriteError(w, r, apperrors.Validation(item.Name+" is out of stock"), h.logger)
		return
	}

	qty := h.till.AddItem(item.Product(), req.Quantity)
	h.respond(w, qty)
}

// SetQuantity handles PUT /api/v1/cart/items/{productId}. Zero removes the line.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	var req SetQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if _, ok := h.till.Line(productID); !ok {
		httputil.WriteError(w, r, apperrors.NotFound("cart item", productID), h.logger)
		return
	}

	qty := h.till.SetQuantity(productID, *req.Quantity)
	h.respond(w, qty)
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if _, ok := h.till.Line(productID); !ok {
		httputil.WriteError(w, r, apperrors.NotFound("cart item", productID), h.logger)
		return
	}
	h.till.RemoveItem(productID)
	httputil.WriteData(w, http.StatusOK, h.till.View(money.Zero, h.taxRate))
}

func (h *CartHandler) respond(w http.ResponseWriter, qty int) {
	httputil.WriteData(w, http.StatusOK, CartResponse{
		View:     h.till.View(money.Zero, h.taxRate),
		Quantity: &qty,
	})
}
