package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/utafrali/posterminal/internal/session"
	apperrors "github.com/utafrali/posterminal/pkg/errors"
	"github.com/utafrali/posterminal/pkg/validator"
)

// Credentials are what the operator types on the login screen.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Registration creates a new terminal operator account.
type Registration struct {
	Email    string       `json:"email" validate:"required"`
	Password string       `json:"password" validate:"required"`
	Name     string       `json:"name" validate:"max=200"`
	Role     session.Role `json:"role" validate:"omitempty,oneof=admin cashier"`
}

// tokenResponse accepts the token field spellings the backend has used.
type tokenResponse struct {
	Access       string        `json:"access"`
	AccessToken  string        `json:"access_token"`
	AccessCamel  string        `json:"accessToken"`
	Token        string        `json:"token"`
	Refresh      string        `json:"refresh"`
	RefreshToken string        `json:"refresh_token"`
	RefreshCamel string        `json:"refreshToken"`
	User         *session.User `json:"user"`
}

func (t tokenResponse) access() string {
	return firstNonEmpty(t.Access, t.AccessToken, t.AccessCamel, t.Token)
}

func (t tokenResponse) refresh() string {
	return firstNonEmpty(t.Refresh, t.RefreshToken, t.RefreshCamel)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Login authenticates and stores the new session. A rejected login returns
// an AuthError and leaves no tokens behind.
func (g *Gateway) Login(ctx context.Context, creds Credentials) (*session.User, error) {
	if err := validator.Check(creds); err != nil {
		return nil, err
	}
	return g.authenticate(ctx, g.cfg.LoginPath, creds, "login")
}

// Register creates an account and signs it in. The backend decides
// uniqueness and password rules; the role defaults to cashier.
func (g *Gateway) Register(ctx context.Context, reg Registration) (*session.User, error) {
	if reg.Role == "" {
		reg.Role = session.RoleCashier
	}
	if err := validator.Check(reg); err != nil {
		return nil, err
	}
	return g.authenticate(ctx, g.cfg.RegisterPath, reg, "register")
}

func (g *Gateway) authenticate(ctx context.Context, path string, body any, action string) (*session.User, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	// Credentials replace whatever session was there.
	if err := g.store.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clear session: %w", err)
	}

	resp, err := g.send(ctx, http.MethodPost, path, payload, "")
	if err != nil {
		return nil, err
	}
	result, err := readResponse(resp, http.MethodPost, path)
	if err != nil {
		var apiErr *apperrors.APIError
		if errors.As(err, &apiErr) {
			return nil, apperrors.AuthFailed(apiErr.Message(), err)
		}
		return nil, err
	}

	var tokens tokenResponse
	if err := result.Decode(&tokens); err != nil {
		return nil, apperrors.AuthFailed(action+" response was not understood", err)
	}
	if tokens.access() == "" {
		return nil, apperrors.AuthFailed(action+" response carried no access token", nil)
	}

	sess := &session.Session{
		AccessToken:  tokens.access(),
		RefreshToken: tokens.refresh(),
		User:         tokens.User,
	}
	if err := g.store.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	if sess.User == nil {
		user, err := g.Me(ctx)
		if err != nil {
			_ = g.store.Clear(ctx)
			return nil, err
		}
		sess.User = user
	}

	g.idle.Touch()
	g.logger.InfoContext(ctx, "operator signed in",
		slog.String("action", action),
		slog.String("user_id", sess.User.ID.String()),
		slog.String("role", string(sess.User.Role)),
	)
	return sess.User, nil
}

// Logout clears the session locally. No backend call is made.
func (g *Gateway) Logout(ctx context.Context) error {
	g.idle.Pause()
	if err := g.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	g.logger.InfoContext(ctx, "operator signed out")
	return nil
}

// Me fetches the current user from the backend and updates the stored
// session with it.
func (g *Gateway) Me(ctx context.Context) (*session.User, error) {
	user, err := Call[*session.User](ctx, g, http.MethodGet, g.cfg.MePath, nil)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &apperrors.APIError{Method: http.MethodGet, Path: g.cfg.MePath, Status: http.StatusNoContent}
	}

	sess, err := g.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess != nil {
		sess.User = user
		if err := g.store.Set(ctx, sess); err != nil {
			return nil, fmt.Errorf("store session: %w", err)
		}
	}
	return user, nil
}

// CurrentUser returns the signed-in user without a backend call, or nil.
func (g *Gateway) CurrentUser(ctx context.Context) (*session.User, error) {
	sess, err := g.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !sess.Active() {
		return nil, nil
	}
	return sess.User, nil
}

// Restore picks up a persisted session at startup. A session whose refresh
// token is a JWT that has already expired is discarded without contacting
// the backend. Opaque tokens are kept as they are.
func (g *Gateway) Restore(ctx context.Context) (*session.User, error) {
	sess, err := g.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return nil, nil
	}

	if !sess.Active() && sess.RefreshToken == "" {
		return nil, g.store.Clear(ctx)
	}
	if tokenExpired(sess.RefreshToken, time.Now()) {
		g.logger.InfoContext(ctx, "discarding expired session")
		return nil, g.store.Clear(ctx)
	}

	g.idle.Touch()
	return sess.User, nil
}

// WatchIdle signs the operator out after timeout without gateway or local
// API activity. The returned watcher is also touched by the caller on local
// activity and must be stopped on shutdown.
func (g *Gateway) WatchIdle(timeout time.Duration) *session.IdleWatcher {
	g.idle = session.NewIdleWatcher(timeout, func() {
		ctx := context.Background()
		if err := g.store.Clear(ctx); err != nil {
			g.logger.Error("idle logout failed", slog.String("error", err.Error()))
			return
		}
		g.logger.Info("operator signed out after inactivity", slog.Duration("idle_timeout", timeout))
	})
	return g.idle
}

// refreshAccess exchanges the stored refresh token for a new access token.
// Concurrent callers share one backend call. stale is the access token the
// caller was rejected with; if the store already holds a different one, a
// refresh has completed meanwhile and that token is returned as is.
func (g *Gateway) refreshAccess(ctx context.Context, stale string) (string, error) {
	v, err, shared := g.refresh.Do("refresh", func() (any, error) {
		// The refresh outlives any single caller's cancellation.
		return g.doRefresh(context.WithoutCancel(ctx), stale)
	})
	if shared {
		refreshShared.Inc()
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (g *Gateway) doRefresh(ctx context.Context, stale string) (string, error) {
	sess, err := g.store.Get(ctx)
	if err != nil {
		return "", g.teardown(ctx, fmt.Errorf("load session: %w", err))
	}
	if sess != nil && sess.AccessToken != "" && sess.AccessToken != stale {
		refreshTotal.WithLabelValues("reused").Inc()
		return sess.AccessToken, nil
	}
	if sess == nil || sess.RefreshToken == "" {
		return "", g.teardown(ctx, errors.New("no refresh token"))
	}

	payload, err := encodeBody(map[string]string{"refresh": sess.RefreshToken})
	if err != nil {
		return "", g.teardown(ctx, err)
	}
	resp, err := g.send(ctx, http.MethodPost, g.cfg.RefreshPath, payload, "")
	if err != nil {
		return "", g.teardown(ctx, err)
	}
	result, err := readResponse(resp, http.MethodPost, g.cfg.RefreshPath)
	if err != nil {
		return "", g.teardown(ctx, err)
	}

	var tokens tokenResponse
	if err := result.Decode(&tokens); err != nil {
		return "", g.teardown(ctx, err)
	}
	if tokens.access() == "" {
		return "", g.teardown(ctx, errors.New("refresh response carried no access token"))
	}

	sess.AccessToken = tokens.access()
	if r := tokens.refresh(); r != "" {
		sess.RefreshToken = r
	}
	if err := g.store.Set(ctx, sess); err != nil {
		return "", g.teardown(ctx, fmt.Errorf("store session: %w", err))
	}

	refreshTotal.WithLabelValues("success").Inc()
	g.logger.DebugContext(ctx, "access token refreshed")
	return sess.AccessToken, nil
}

// teardown clears the whole session after a failed refresh.
func (g *Gateway) teardown(ctx context.Context, cause error) error {
	refreshTotal.WithLabelValues("failure").Inc()
	g.idle.Pause()
	if err := g.store.Clear(ctx); err != nil {
		g.logger.ErrorContext(ctx, "failed to clear session after refresh failure",
			slog.String("error", err.Error()),
		)
	}
	g.logger.WarnContext(ctx, "session lost, token refresh failed",
		slog.String("error", cause.Error()),
	)
	return apperrors.SessionLost(cause)
}

// tokenExpired reports whether token is a JWT whose exp claim is before now.
// The signature is not checked; only the backend can do that.
func tokenExpired(token string, now time.Time) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
