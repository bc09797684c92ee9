package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/utafrali/posterminal/pkg/httputil"
	"github.com/utafrali/posterminal/pkg/logger"
)

type contextKeyType string

const (
	userIDKey contextKeyType = "user_id"
	roleKey   contextKeyType = "role"
)

// Operator is the signed-in user the terminal is acting for.
type Operator struct {
	ID   string
	Role string
}

// OperatorResolver returns the signed-in operator, or nil when nobody is
// signed in.
type OperatorResolver func(ctx context.Context) (*Operator, error)

// RequireOperator rejects requests with 401 unless an operator is signed in.
// The operator's id and role are stored in the context and added to the
// request-scoped logger.
func RequireOperator(resolve OperatorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op, err := resolve(r.Context())
			if err != nil {
				httputil.WriteError(w, r, err, nil)
				return
			}
			if op == nil {
				writeDenied(w, http.StatusUnauthorized, "UNAUTHORIZED", "sign in required")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, op.ID)
			ctx = context.WithValue(ctx, roleKey, op.Role)
			ctx = logger.WithUserID(ctx, op.ID)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("user_id", op.ID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests with 403 unless the operator has one of roles.
// It must run after RequireOperator.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := roleSet[RoleFromContext(r.Context())]; !ok {
				writeDenied(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Activity calls touch before serving each request.
func Activity(touch func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			touch()
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext returns the signed-in operator's id.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// RoleFromContext returns the signed-in operator's role.
func RoleFromContext(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey).(string); ok {
		return role
	}
	return ""
}

func writeDenied(w http.ResponseWriter, status int, code, message string) {
	httputil.WriteJSON(w, status, httputil.Response{
		Error: &httputil.ErrorResponse{Code: code, Message: message},
	})
}
