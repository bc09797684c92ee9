package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/utafrali/posterminal/internal/session"
	apperrors "github.com/utafrali/posterminal/pkg/errors"
	"github.com/utafrali/posterminal/pkg/httpclient"
	"github.com/utafrali/posterminal/pkg/logger"
)

// Header names set on every backend request.
const (
	HeaderCorrelationID  = "X-Correlation-ID"
	HeaderIdempotencyKey = "Idempotency-Key"
)

// Config locates the backend and its auth endpoints.
type Config struct {
	BaseURL      string
	LoginPath    string
	RegisterPath string
	RefreshPath  string
	MePath       string
}

// DefaultConfig returns the backend auth paths used when none are configured.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:      baseURL,
		LoginPath:    "/auth/login",
		RegisterPath: "/auth/register",
		RefreshPath:  "/auth/refresh",
		MePath:       "/auth/me",
	}
}

// Gateway performs every outbound backend call on behalf of the till. It
// attaches the bearer token, and on a 401 refreshes the access token once
// and retries the call once.
type Gateway struct {
	cfg     Config
	base    *url.URL
	client  httpclient.Doer
	store   session.Store
	logger  *slog.Logger
	idle    *session.IdleWatcher
	refresh singleflight.Group
}

// New creates a Gateway. The client must not retry on its own.
func New(cfg Config, client httpclient.Doer, store session.Store, logger *slog.Logger) (*Gateway, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend base url %q must be absolute", cfg.BaseURL)
	}
	return &Gateway{
		cfg:    cfg,
		base:   base,
		client: client,
		store:  store,
		logger: logger,
	}, nil
}

// Response is a successful backend response, already read into memory.
type Response struct {
	Status      int
	ContentType string
	Raw         []byte
}

// Empty reports whether the backend returned no content.
func (r *Response) Empty() bool {
	return r.Status == http.StatusNoContent || len(bytes.TrimSpace(r.Raw)) == 0
}

// IsJSON reports whether the response declared a JSON content type.
func (r *Response) IsJSON() bool {
	return httpclient.IsJSON(r.ContentType)
}

// Value returns the body as decoded JSON, as text for other content types,
// or nil when empty.
func (r *Response) Value() any {
	if r.Empty() {
		return nil
	}
	return httpclient.DecodeBody(r.ContentType, r.Raw)
}

// Decode unmarshals a JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if r.Empty() {
		return nil
	}
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}
	return nil
}

// Execute performs an authenticated call. body, when non-nil, is sent as
// JSON. A 401 with a stored refresh token triggers exactly one refresh and
// one retry; a failed refresh tears the session down and returns an error
// wrapping apperrors.ErrSessionLost. Any other non-2xx outcome is returned as
// *apperrors.APIError, transport failures as *apperrors.NetworkError.
func (g *Gateway) Execute(ctx context.Context, method, path string, body any) (*Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	g.idle.Touch()

	sess, err := g.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var token string
	if sess != nil {
		token = sess.AccessToken
	}

	resp, err := g.send(ctx, method, path, payload, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && sess != nil && sess.RefreshToken != "" {
		drain(resp)
		fresh, err := g.refreshAccess(ctx, token)
		if err != nil {
			return nil, err
		}
		resp, err = g.send(ctx, method, path, payload, fresh)
		if err != nil {
			return nil, err
		}
	}

	return readResponse(resp, method, path)
}

// Call executes a request and decodes the JSON response into T.
func Call[T any](ctx context.Context, g *Gateway, method, path string, body any) (T, error) {
	var out T
	resp, err := g.Execute(ctx, method, path, body)
	if err != nil {
		return out, err
	}
	if err := resp.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

// send issues one request. It never retries.
func (g *Gateway) send(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, error) {
	var reader io.Reader = http.NoBody
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.resolve(path), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	correlationID := logger.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	req.Header.Set(HeaderCorrelationID, correlationID)
	if key := IdempotencyKeyFromContext(ctx); key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}

	start := time.Now()
	resp, err := g.client.Do(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		requestsTotal.WithLabelValues(method, "error").Inc()
		requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
		g.logger.WarnContext(ctx, "backend request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()),
		)
		return nil, &apperrors.NetworkError{Op: method + " " + path, Err: err}
	}

	requestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
	requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
	g.logger.DebugContext(ctx, "backend request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", elapsed),
		slog.String("correlation_id", correlationID),
	)
	return resp, nil
}

// resolve joins path onto the base URL, keeping any query string in path.
func (g *Gateway) resolve(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return g.base.String() + path
}

func readResponse(resp *http.Response, method, path string) (*Response, error) {
	if !httpclient.IsSuccess(resp.StatusCode) {
		return nil, httpclient.ParseResponseError(resp, method, path)
	}
	raw, err := httpclient.ReadBody(resp)
	if err != nil {
		return nil, &apperrors.NetworkError{Op: method + " " + path, Err: err}
	}
	return &Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Raw:         raw,
	}, nil
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return b, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return data, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, httpclient.MaxBodyBytes))
	_ = resp.Body.Close()
}
