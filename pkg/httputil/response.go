package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/posterminal/pkg/errors"
	"github.com/utafrali/posterminal/pkg/logger"
)

// Response is the JSON envelope every local API response uses.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse is the error half of the envelope.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	Upstream  any               `json:"upstream,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes v inside the data envelope.
func WriteData(w http.ResponseWriter, status int, v any) {
	WriteJSON(w, status, Response{Data: v})
}

// WriteError maps err onto a status and error code:
// a lost session is 401 SESSION_EXPIRED, local AppErrors keep their own
// status, backend rejections keep the upstream status, transport failures
// are 502. Anything else is logged and answered with 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())
	status := apperrors.HTTPStatus(err)

	body := &ErrorResponse{RequestID: requestID}

	var (
		appErr *apperrors.AppError
		apiErr *apperrors.APIError
	)
	switch {
	case errors.Is(err, apperrors.ErrSessionLost):
		body.Code = "SESSION_EXPIRED"
		body.Message = "session expired, please sign in again"
	case errors.As(err, &appErr):
		body.Code = appErr.Code
		body.Message = appErr.Message
		body.Fields = appErr.Fields
	case errors.As(err, &apiErr):
		body.Code = "BACKEND_ERROR"
		body.Message = apiErr.Message()
		body.Upstream = apiErr.Body
	case errors.Is(err, apperrors.ErrNetwork):
		body.Code = "BACKEND_UNAVAILABLE"
		body.Message = "backend is unreachable"
	case errors.Is(err, apperrors.ErrNotFound):
		body.Code = "NOT_FOUND"
		body.Message = "resource not found"
	default:
		body.Code = "INTERNAL_ERROR"
		body.Message = "an internal error occurred"
	}

	switch {
	case status >= http.StatusInternalServerError && body.Code == "INTERNAL_ERROR":
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	case status >= http.StatusInternalServerError:
		l.WarnContext(r.Context(), "backend failure",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{Error: body})
}
