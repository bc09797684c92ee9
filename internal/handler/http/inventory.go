package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/posterminal/internal/inventory"
	"github.com/utafrali/posterminal/pkg/httputil"
	"github.com/utafrali/posterminal/pkg/validator"
)

// InventoryHandler serves the stock list to the till and lets admins edit it.
type InventoryHandler struct {
	inventory Inventory
	logger    *slog.Logger
}

// NewInventoryHandler creates a new inventory HTTP handler.
func NewInventoryHandler(inv Inventory, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{inventory: inv, logger: logger}
}

// Stats summarizes stock levels.
type Stats struct {
	ItemCount  int             `json:"item_count"`
	LowStock   int             `json:"low_stock"`
	OutOfStock int             `json:"out_of_stock"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// List handles GET /api/v1/inventory. With ?q= it searches instead, and
// ?sellable=true keeps only items that can go into a cart.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		items []inventory.Item
		err   error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		items, err = h.inventory.Search(r.Context(), q)
	} else {
		items, err = h.inventory.List(r.Context())
	}
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if r.URL.Query().Get("sellable") == "true" {
		items = inventory.Sellable(items)
	}
	httputil.WriteData(w, http.StatusOK, nonNil(items))
}

// Get handles GET /api/v1/inventory/{id}. A category known only by id or
// only by name is completed from the category list when the backend has it.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.inventory.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if c := item.Category; !c.IsZero() && (c.ID == 0 || c.Name == "") {
		cats, cerr := h.inventory.Categories(r.Context())
		if cerr != nil {
			h.logger.WarnContext(r.Context(), "category lookup failed",
				slog.String("item_id", item.ID.String()),
				slog.String("error", cerr.Error()),
			)
		} else {
			item.Category = c.Resolve(cats)
		}
	}
	httputil.WriteData(w, http.StatusOK, item)
}

// Categories handles GET /api/v1/inventory/categories
func (h *InventoryHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.inventory.Categories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, nonNil(cats))
}

// Create handles POST /api/v1/inventory
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in inventory.NewItem
	if err := validator.DecodeAndValidate(r, &in); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	item, err := h.inventory.Create(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.logger.InfoContext(r.Context(), "inventory item created", slog.String("item_id", item.ID.String()))
	httputil.WriteData(w, http.StatusCreated, item)
}

// Update handles PATCH /api/v1/inventory/{id}
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch inventory.ItemPatch
	if err := validator.DecodeAndValidate(r, &patch); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	item, err := h.inventory.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, item)
}

// Delete handles DELETE /api/v1/inventory/{id}
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.inventory.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.logger.InfoContext(r.Context(), "inventory item deleted", slog.String("item_id", id))
	w.WriteHeader(http.StatusNoContent)
}

type stockRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

// UpdateStock handles PATCH /api/v1/inventory/{id}/stock
func (h *InventoryHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	item, err := h.inventory.UpdateStock(r.Context(), chi.URLParam(r, "id"), *req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, item)
}

// LowStock handles GET /api/v1/inventory/low-stock
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.LowStock(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, nonNil(items))
}

// Stats handles GET /api/v1/inventory/stats
func (h *InventoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, Stats{
		ItemCount:  len(items),
		LowStock:   len(inventory.LowStock(items)),
		OutOfStock: len(inventory.OutOfStock(items)),
		TotalValue: inventory.TotalValue(items),
	})
}

// nonNil keeps empty lists as [] rather than null on the wire.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
