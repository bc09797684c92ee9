package gateway

import "context"

type contextKey string

const idempotencyKey contextKey = "idempotency_key"

// WithIdempotencyKey makes requests issued with ctx carry the given
// Idempotency-Key header, so a retried checkout is not recorded twice.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey, key)
}

// IdempotencyKeyFromContext returns the key set by WithIdempotencyKey.
func IdempotencyKeyFromContext(ctx context.Context) string {
	if key, ok := ctx.Value(idempotencyKey).(string); ok {
		return key
	}
	return ""
}
