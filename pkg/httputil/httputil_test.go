package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/posterminal/pkg/errors"
	"github.com/utafrali/posterminal/pkg/logger"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWriteJSON_SetsContentTypeAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, Response{Data: "hello"})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestWriteData_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, http.StatusOK, map[string]string{"key": "value"})

	assert.JSONEq(t, `{"data":{"key":"value"}}`, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", apperrors.Validation("cart is empty"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"auth", apperrors.AuthFailed("Invalid credentials", nil), http.StatusUnauthorized, "AUTH_FAILED"},
		{"session lost", apperrors.SessionLost(errors.New("refresh rejected")), http.StatusUnauthorized, "SESSION_EXPIRED"},
		{
			"session lost over api error",
			apperrors.SessionLost(&apperrors.APIError{Status: http.StatusBadRequest}),
			http.StatusUnauthorized, "SESSION_EXPIRED",
		},
		{"backend", fmt.Errorf("list sales: %w", &apperrors.APIError{Status: http.StatusConflict, Body: map[string]any{"detail": "duplicate"}}), http.StatusConflict, "BACKEND_ERROR"},
		{"network", &apperrors.NetworkError{Op: "GET /sales", Err: errors.New("dial tcp: refused")}, http.StatusBadGateway, "BACKEND_UNAVAILABLE"},
		{"not found", apperrors.NotFound("sale", "9"), http.StatusNotFound, "NOT_FOUND"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)

			WriteError(rec, req, tt.err, testLogger())

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decode(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestWriteError_BackendMessageAndBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	err := &apperrors.APIError{Status: http.StatusUnprocessableEntity, Body: map[string]any{"detail": "Insufficient stock"}}

	WriteError(rec, req, err, testLogger())

	resp := decode(t, rec)
	assert.Equal(t, "Insufficient stock", resp.Error.Message)
	assert.Equal(t, map[string]any{"detail": "Insufficient stock"}, resp.Error.Upstream)
}

func TestWriteError_ValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	WriteError(rec, req, apperrors.ValidationFields("request validation failed", map[string]string{"email": "is required"}), testLogger())

	resp := decode(t, rec)
	assert.Equal(t, "is required", resp.Error.Fields["email"])
}

func TestWriteError_IncludesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(logger.WithCorrelationID(context.Background(), "corr-123"))

	WriteError(rec, req, errors.New("boom"), testLogger())

	assert.Equal(t, "corr-123", decode(t, rec).Error.RequestID)
}

func TestWriteError_NilFallbackLogger(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.NotPanics(t, func() { WriteError(rec, req, errors.New("boom"), nil) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
