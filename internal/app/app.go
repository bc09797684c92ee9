package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/posterminal/internal/checkout"
	"github.com/utafrali/posterminal/internal/config"
	"github.com/utafrali/posterminal/internal/event"
	"github.com/utafrali/posterminal/internal/gateway"
	handler "github.com/utafrali/posterminal/internal/handler/http"
	"github.com/utafrali/posterminal/internal/inventory"
	"github.com/utafrali/posterminal/internal/procurement"
	"github.com/utafrali/posterminal/internal/sales"
	"github.com/utafrali/posterminal/internal/session"
	"github.com/utafrali/posterminal/internal/terminal"
	"github.com/utafrali/posterminal/pkg/database"
	"github.com/utafrali/posterminal/pkg/health"
	"github.com/utafrali/posterminal/pkg/httpclient"
	pkgkafka "github.com/utafrali/posterminal/pkg/kafka"
	"github.com/utafrali/posterminal/pkg/middleware"
	"github.com/utafrali/posterminal/pkg/tracing"
)

// App wires together all dependencies and runs one terminal.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	idle           *session.IdleWatcher
	shutdownTracer func(context.Context) error
	handler        http.Handler
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
// A persisted session is restored so the operator stays signed in across
// restarts.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	tcfg := tracing.DefaultConfig("posterminal")
	tcfg.Environment = cfg.Environment
	tcfg.TerminalID = cfg.TerminalID
	tcfg.OTLPEndpoint = cfg.OTELEndpoint
	tcfg.SampleRate = cfg.OTELSampleRate
	tcfg.Enabled = cfg.OTELEnabled
	shutdownTracer, err := tracing.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.shutdownTracer = shutdownTracer

	// Backend transport. The gateway never retries; the breaker fails fast
	// while the backend is down.
	hcfg := httpclient.DefaultConfig()
	hcfg.Timeout = cfg.BackendTimeout
	cbcfg := httpclient.DefaultCircuitBreakerConfig("backend")
	cbcfg.Timeout = cfg.BreakerTimeout
	cbcfg.MinRequests = cfg.BreakerMinErrors
	client := httpclient.NewCircuitBreakerClient(httpclient.New(hcfg), cbcfg, logger)

	store, err := a.sessionStore(ctx)
	if err != nil {
		return nil, err
	}

	gw, err := gateway.New(gateway.Config{
		BaseURL:      cfg.BackendURL,
		LoginPath:    cfg.LoginPath,
		RegisterPath: cfg.RegisterPath,
		RefreshPath:  cfg.RefreshPath,
		MePath:       cfg.MePath,
	}, client, store, logger)
	if err != nil {
		return nil, err
	}
	a.idle = gw.WatchIdle(cfg.IdleTimeout)

	user, err := gw.Restore(ctx)
	switch {
	case err != nil:
		logger.Warn("could not restore session", slog.String("error", err.Error()))
	case user != nil:
		logger.Info("session restored", slog.String("user_id", user.ID.String()))
	}

	var publisher event.Publisher = event.Nop{}
	if cfg.EventsEnabled() {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewKafkaPublisher(a.producer)
		logger.Info("sale events enabled", slog.Any("brokers", cfg.KafkaBrokers))
	}

	salesClient := sales.NewClient(gw)
	checkoutService := checkout.NewService(checkout.Config{
		TerminalID: cfg.TerminalID,
		TaxRate:    cfg.TaxRate,
		Currency:   cfg.Currency,
	}, salesClient, publisher, logger)

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("backend", backendCheck(client, cfg.BackendURL))
	if a.rdb != nil {
		healthHandler.RegisterCritical("session_store", func(ctx context.Context) error {
			return a.rdb.Ping(ctx).Err()
		})
	}
	if a.producer != nil {
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
	}

	var loginLimiter *middleware.Limiter
	if cfg.LoginPerMinute > 0 {
		loginLimiter = middleware.NewLimiter(middleware.RateLimitConfig{
			PerMinute: cfg.LoginPerMinute,
			Burst:     cfg.LoginBurst,
		})
	}

	a.handler = handler.NewRouter(handler.Deps{
		Auth:         gw,
		Till:         terminal.New(),
		Checkout:     checkoutService,
		Inventory:    inventory.NewClient(gw),
		Sales:        salesClient,
		Procurement:  procurement.NewClient(gw),
		Health:       healthHandler,
		Logger:       logger,
		CORS:         middleware.DefaultCORSConfig(cfg.CORSOrigins...),
		LoginLimiter: loginLimiter,
		Touch:        a.idle.Touch,
	})

	a.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      a.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.BackendTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return a, nil
}

func (a *App) sessionStore(ctx context.Context) (session.Store, error) {
	if a.cfg.SessionBackend != config.SessionRedis {
		return session.NewMemoryStore(), nil
	}
	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPass,
		DB:       a.cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.rdb = rdb
	a.logger.Info("connected to Redis",
		slog.String("addr", a.cfg.RedisAddr),
		slog.Int("db", a.cfg.RedisDB),
	)
	return session.NewRedisStore(a.rdb, a.cfg.TerminalID, a.cfg.SessionTTL), nil
}

// backendCheck reports the backend reachable when it answers at all. Any
// status counts; only transport failures and an open circuit do not.
func backendCheck(client httpclient.Doer, baseURL string) health.Checker {
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, baseURL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(ctx, req)
		if err != nil {
			return err
		}
		_ = resp.Body.Close()
		return nil
	}
}

// Handler returns the local API, for tests and embedding.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting local API",
			slog.String("addr", a.httpServer.Addr),
			slog.String("backend", a.cfg.BackendURL),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components. The session is left in the
// store so a restart picks it up.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down terminal...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.idle.Stop()

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("terminal shutdown complete")
	return nil
}
