package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/posterminal/pkg/errors"
	"github.com/utafrali/posterminal/pkg/httputil"
	"github.com/utafrali/posterminal/pkg/logger"
)

func staticOperator(op *Operator, err error) OperatorResolver {
	return func(context.Context) (*Operator, error) { return op, err }
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestRequireOperator_StoresOperator(t *testing.T) {
	var gotID, gotRole, logUser string
	handler := RequireOperator(staticOperator(&Operator{ID: "7", Role: "cashier"}, nil))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID = UserIDFromContext(r.Context())
			gotRole = RoleFromContext(r.Context())
			logUser = logger.UserIDFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "7", gotID)
	assert.Equal(t, "cashier", gotRole)
	assert.Equal(t, "7", logUser)
}

func TestRequireOperator_NobodySignedIn(t *testing.T) {
	called := false
	handler := RequireOperator(staticOperator(nil, nil))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))
}

func TestRequireOperator_ResolverError(t *testing.T) {
	handler := RequireOperator(staticOperator(nil, &apperrors.NetworkError{Op: "redis", Err: errors.New("down")}))(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		role string
		want int
	}{
		{"admin", http.StatusOK},
		{"cashier", http.StatusForbidden},
		{"", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			inner := RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			handler := RequireOperator(staticOperator(&Operator{ID: "1", Role: tt.role}, nil))(inner)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", errorCode(t, rec))
			}
		})
	}
}

func TestActivity_TouchesBeforeServing(t *testing.T) {
	var order []string
	handler := Activity(func() { order = append(order, "touch") })(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "serve")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"touch", "serve"}, order)
}

func TestContextAccessors_Empty(t *testing.T) {
	assert.Empty(t, UserIDFromContext(context.Background()))
	assert.Empty(t, RoleFromContext(context.Background()))
}
