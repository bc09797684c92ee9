package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/posterminal/internal/checkout"
	"github.com/utafrali/posterminal/internal/terminal"
	"github.com/utafrali/posterminal/pkg/httputil"
	"github.com/utafrali/posterminal/pkg/validator"
)

// CheckoutHandler submits the till's cart as a sale.
type CheckoutHandler struct {
	service Checkouter
	till    *terminal.Till
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc Checkouter, till *terminal.Till, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: svc, till: till, logger: logger}
}

// Checkout handles POST /api/v1/checkout. On any error the cart is left as
// it was so the operator can retry.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	receipt, err := h.service.Checkout(r.Context(), h.till, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, receipt)
}
