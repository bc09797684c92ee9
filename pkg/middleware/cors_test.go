package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serveCORS(cfg CORSConfig, method, origin string) *httptest.ResponseRecorder {
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(method, "/api/v1/cart", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORS_AllowOrigin(t *testing.T) {
	tests := []struct {
		name    string
		cfg     CORSConfig
		origin  string
		want    string
		wantVar bool
	}{
		{"listed origin", DefaultCORSConfig("http://localhost:5173"), "http://localhost:5173", "http://localhost:5173", true},
		{"trailing slash in config", DefaultCORSConfig("http://kiosk.local/"), "http://kiosk.local", "http://kiosk.local", true},
		{"unlisted origin", DefaultCORSConfig("http://localhost:5173"), "http://evil.example", "", false},
		{"no origin", DefaultCORSConfig("http://localhost:5173"), "", "", false},
		{"wildcard", DefaultCORSConfig("*"), "http://anything.example", "*", false},
		{"wildcard with credentials echoes origin", CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true}, "http://a.example", "http://a.example", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveCORS(tt.cfg, http.MethodGet, tt.origin)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantVar, rec.Header().Get("Vary") == "Origin")
		})
	}
}

func TestCORS_PreflightReturns204(t *testing.T) {
	rec := serveCORS(DefaultCORSConfig("http://localhost:5173"), http.MethodOptions, "http://localhost:5173")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestCORS_DefaultHeaders(t *testing.T) {
	rec := serveCORS(DefaultCORSConfig("*"), http.MethodGet, "")

	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "traceparent")
	assert.Equal(t, CorrelationHeader, rec.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_EmptyConfigFallsBack(t *testing.T) {
	rec := serveCORS(CORSConfig{MaxAge: 60, AllowCredentials: true}, http.MethodGet, "")

	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Accept, Content-Type, X-Correlation-ID", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "60", rec.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
