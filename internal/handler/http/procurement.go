package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/posterminal/internal/procurement"
	"github.com/utafrali/posterminal/pkg/httputil"
	"github.com/utafrali/posterminal/pkg/validator"
)

// ProcurementHandler serves suppliers and purchase orders.
type ProcurementHandler struct {
	procurement Procurement
	logger      *slog.Logger
}

// NewProcurementHandler creates a new procurement HTTP handler.
func NewProcurementHandler(p Procurement, logger *slog.Logger) *ProcurementHandler {
	return &ProcurementHandler{procurement: p, logger: logger}
}

// Suppliers handles GET /api/v1/suppliers
func (h *ProcurementHandler) Suppliers(w http.ResponseWriter, r *http.Request) {
	list, err := h.procurement.Suppliers(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, nonNil(list))
}

// Orders handles GET /api/v1/purchase-orders; ?pending=true hides received ones.
func (h *ProcurementHandler) Orders(w http.ResponseWriter, r *http.Request) {
	list, err := h.procurement.Orders(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if r.URL.Query().Get("pending") == "true" {
		list = procurement.Pending(list)
	}
	httputil.WriteData(w, http.StatusOK, nonNil(list))
}

// PlaceOrder handles POST /api/v1/purchase-orders
func (h *ProcurementHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req procurement.OrderRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	order, err := h.procurement.PlaceOrder(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, order)
}
