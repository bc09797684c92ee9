package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/posterminal/internal/sales"
	apperrors "github.com/utafrali/posterminal/pkg/errors"
	"github.com/utafrali/posterminal/pkg/httputil"
	"github.com/utafrali/posterminal/pkg/pagination"
	"github.com/utafrali/posterminal/pkg/validator"
)

const defaultRecentSales = 5

// SalesHandler serves recorded sales, the day's summary and customers.
type SalesHandler struct {
	sales  Sales
	now    func() time.Time
	logger *slog.Logger
}

// NewSalesHandler creates a new sales HTTP handler.
func NewSalesHandler(s Sales, now func() time.Time, logger *slog.Logger) *SalesHandler {
	return &SalesHandler{sales: s, now: now, logger: logger}
}

// List handles GET /api/v1/sales, optionally filtered by ?date=YYYY-MM-DD
// or by an inclusive ?start=&end= range. With ?page= or ?per_page= the list
// is returned one page at a time.
func (h *SalesHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		list []sales.Sale
		err  error
	)
	q := r.URL.Query()
	switch {
	case q.Get("date") != "":
		day, ok := h.parseDay(w, r, "date")
		if !ok {
			return
		}
		list, err = h.sales.ByDate(r.Context(), day)
	case q.Get("start") != "" || q.Get("end") != "":
		start, ok := h.parseDay(w, r, "start")
		if !ok {
			return
		}
		end, ok := h.parseDay(w, r, "end")
		if !ok {
			return
		}
		list, err = h.sales.Range(r.Context(), start, end)
	default:
		list, err = h.sales.List(r.Context())
	}
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if pagination.Requested(r) {
		httputil.WriteData(w, http.StatusOK, pagination.Slice(list, pagination.FromRequest(r)))
		return
	}
	httputil.WriteData(w, http.StatusOK, nonNil(list))
}

// Today handles GET /api/v1/sales/today?recent=N
func (h *SalesHandler) Today(w http.ResponseWriter, r *http.Request) {
	recent := defaultRecentSales
	if raw := r.URL.Query().Get("recent"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.WriteError(w, r, apperrors.ValidationFields("invalid recent",
				map[string]string{"recent": "must be a non-negative integer"}), h.logger)
			return
		}
		recent = n
	}

	list, err := h.sales.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	summary := sales.Summarize(list, h.now(), recent)
	summary.Recent = nonNil(summary.Recent)
	httputil.WriteData(w, http.StatusOK, summary)
}

// Analytics handles GET /api/v1/sales/analytics/{period}
func (h *SalesHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.sales.Analytics(r.Context(), sales.Period(chi.URLParam(r, "period")))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, a)
}

// Update handles PATCH /api/v1/sales/{id}
func (h *SalesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch sales.Patch
	if err := validator.DecodeAndValidate(r, &patch); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	id := chi.URLParam(r, "id")
	sale, err := h.sales.Update(r.Context(), id, patch)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.logger.InfoContext(r.Context(), "sale updated", slog.String("sale_id", id))
	httputil.WriteData(w, http.StatusOK, sale)
}

// Customers handles GET /api/v1/customers
func (h *SalesHandler) Customers(w http.ResponseWriter, r *http.Request) {
	list, err := h.sales.Customers(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, nonNil(list))
}

// CreateCustomer handles POST /api/v1/customers
func (h *SalesHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var in sales.NewCustomer
	if err := validator.DecodeAndValidate(r, &in); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	customer, err := h.sales.CreateCustomer(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, customer)
}

// Cancel handles POST /api/v1/sales/{id}/cancel
func (h *SalesHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sale, err := h.sales.Cancel(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.logger.InfoContext(r.Context(), "sale cancelled", slog.String("sale_id", id))
	httputil.WriteData(w, http.StatusOK, sale)
}

// parseDay reads a YYYY-MM-DD query parameter in the till's time zone and
// answers 400 when it is missing or malformed.
func (h *SalesHandler) parseDay(w http.ResponseWriter, r *http.Request, param string) (time.Time, bool) {
	day, err := time.ParseInLocation(time.DateOnly, r.URL.Query().Get(param), h.now().Location())
	if err != nil {
		httputil.WriteError(w, r, apperrors.ValidationFields("invalid "+param,
			map[string]string{param: "must be YYYY-MM-DD"}), h.logger)
		return time.Time{}, false
	}
	return day, true
}
