// Package gatewaytest builds gateways against fake backends for tests.
package gatewaytest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/utafrali/posterminal/internal/gateway"
	"github.com/utafrali/posterminal/internal/session"
	"github.com/utafrali/posterminal/pkg/httpclient"
)

// New starts handler as a fake backend and returns a gateway pointed at it,
// signed in with an access token. The server is closed on test cleanup.
func New(t *testing.T, handler http.Handler) (*gateway.Gateway, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := session.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), &session.Session{
		AccessToken:  "test-access",
		RefreshToken: "test-refresh",
		User:         &session.User{ID: "1", Email: "cashier@example.com", Name: "Cashier", Role: session.RoleCashier},
	}))

	client := httpclient.New(httpclient.Config{Timeout: 5 * time.Second, MaxConnsPerHost: 10})
	gw, err := gateway.New(gateway.DefaultConfig(server.URL), client, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return gw, server
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
