package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Sentinel error identity ---

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrValidation, ErrAuth, ErrAPI, ErrNetwork,
		ErrSessionLost, ErrNotFound, ErrInternal,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

// --- AppError behavior ---

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	appErr := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: fmt.Errorf("disk full")}
	assert.Contains(t, appErr.Error(), "INTERNAL_ERROR")
	assert.Contains(t, appErr.Error(), "something broke")
	assert.Contains(t, appErr.Error(), "disk full")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "line not found"}
	assert.Equal(t, "NOT_FOUND: line not found", appErr.Error())
}

// --- Constructors ---

func TestValidation(t *testing.T) {
	err := Validation("cart is empty")
	require.NotNil(t, err)
	assert.Equal(t, "VALIDATION_ERROR", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, IsValidation(err))
	assert.False(t, errors.Is(err, ErrAuth))
}

func TestValidationFields(t *testing.T) {
	err := ValidationFields("request validation failed", map[string]string{"email": "is required"})
	assert.Equal(t, "is required", err.Fields["email"])
	assert.True(t, IsValidation(err))
}

func TestAuthFailed_WrapsCause(t *testing.T) {
	cause := &APIError{Status: http.StatusUnauthorized}
	err := AuthFailed("invalid credentials", cause)

	assert.True(t, errors.Is(err, ErrAuth))
	assert.True(t, errors.Is(err, ErrAPI))
	assert.Equal(t, http.StatusUnauthorized, err.Status)
}

func TestAuthFailed_NilCause(t *testing.T) {
	err := AuthFailed("email is required", nil)
	assert.True(t, errors.Is(err, ErrAuth))
}

// --- APIError ---

func TestAPIError_IsErrAPI(t *testing.T) {
	err := &APIError{Method: "GET", Path: "/sales", Status: 500}
	assert.True(t, errors.Is(err, ErrAPI))
	assert.Equal(t, "GET /sales: backend returned status 500", err.Error())
}

func TestAPIError_Message(t *testing.T) {
	tests := []struct {
		name string
		body any
		want string
	}{
		{"nested error envelope", map[string]any{"error": map[string]any{"message": "out of stock"}}, "out of stock"},
		{"flat message", map[string]any{"message": "bad discount"}, "bad discount"},
		{"django detail", map[string]any{"detail": "Given token not valid"}, "Given token not valid"},
		{"raw text", "upstream exploded", "upstream exploded"},
		{"empty", nil, "Conflict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &APIError{Status: http.StatusConflict, Body: tt.body}
			assert.Equal(t, tt.want, err.Message())
		})
	}
}

// --- NetworkError ---

func TestNetworkError_UnwrapsBoth(t *testing.T) {
	err := &NetworkError{Op: "POST /sales", Err: context.DeadlineExceeded}
	assert.True(t, IsNetwork(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "POST /sales")
}

// --- HTTPStatus ---

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("x"), http.StatusBadRequest},
		{"auth", AuthFailed("x", nil), http.StatusUnauthorized},
		{"session lost", fmt.Errorf("refresh: %w", ErrSessionLost), http.StatusUnauthorized},
		{"session lost over api error", SessionLost(&APIError{Status: 500}), http.StatusUnauthorized},
		{"api error keeps upstream status", &APIError{Status: http.StatusConflict}, http.StatusConflict},
		{"wrapped api error", fmt.Errorf("create sale: %w", &APIError{Status: 422}), 422},
		{"network", &NetworkError{Op: "GET /x", Err: errors.New("refused")}, http.StatusBadGateway},
		{"not found", NotFound("cart line", "p1"), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestWrap(t *testing.T) {
	err := Wrap(ErrNotFound, "load item")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "load item: resource not found", err.Error())
}

func TestSessionLost(t *testing.T) {
	cause := &NetworkError{Op: "POST /auth/refresh", Err: errors.New("dial tcp: refused")}
	err := SessionLost(cause)

	assert.True(t, errors.Is(err, ErrSessionLost))
	assert.True(t, errors.Is(err, ErrNetwork))
	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))

	assert.Equal(t, ErrSessionLost, SessionLost(nil))
}
