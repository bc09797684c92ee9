package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgconfig "github.com/utafrali/posterminal/pkg/config"
)

// Session backends.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// Config holds all configuration for one terminal process.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`
	TerminalID  string `env:"POS_TERMINAL_ID" envDefault:"till-1"`

	// Local API
	HTTPPort    int      `env:"POS_HTTP_PORT" envDefault:"8790"`
	CORSOrigins []string `env:"POS_CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	// Sign-in throttle per client address; zero disables it.
	LoginPerMinute int `env:"POS_LOGIN_RATE_PER_MIN" envDefault:"10"`
	LoginBurst     int `env:"POS_LOGIN_BURST" envDefault:"5"`

	// Backend
	BackendURL       string        `env:"POS_BACKEND_URL" envDefault:"http://localhost:8000/api"`
	LoginPath        string        `env:"POS_LOGIN_PATH" envDefault:"/auth/login"`
	RegisterPath     string        `env:"POS_REGISTER_PATH" envDefault:"/auth/register"`
	RefreshPath      string        `env:"POS_REFRESH_PATH" envDefault:"/auth/refresh"`
	MePath           string        `env:"POS_ME_PATH" envDefault:"/auth/me"`
	BackendTimeout   time.Duration `env:"POS_BACKEND_TIMEOUT" envDefault:"30s"`
	BreakerTimeout   time.Duration `env:"POS_BREAKER_TIMEOUT" envDefault:"30s"`
	BreakerMinErrors uint32        `env:"POS_BREAKER_MIN_REQUESTS" envDefault:"5"`

	// Checkout
	TaxRate  decimal.Decimal `env:"POS_TAX_RATE" envDefault:"0.1"`
	Currency string          `env:"POS_CURRENCY" envDefault:"USD"`

	// Session
	SessionBackend string        `env:"POS_SESSION_BACKEND" envDefault:"memory"`
	SessionTTL     time.Duration `env:"POS_SESSION_TTL" envDefault:"0s"`
	IdleTimeout    time.Duration `env:"POS_IDLE_TIMEOUT" envDefault:"30m"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka; no brokers disables sale events.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load(opts ...pkgconfig.Option) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, opts...); err != nil {
		return nil, fmt.Errorf("load terminal config: %w", err)
	}
	cfg.SessionBackend = strings.ToLower(strings.TrimSpace(cfg.SessionBackend))
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("POS_BACKEND_URL must be an absolute URL, got %q", c.BackendURL)
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("POS_BACKEND_TIMEOUT must be positive")
	}
	if c.TaxRate.IsNegative() {
		return fmt.Errorf("POS_TAX_RATE must not be negative")
	}
	if c.TerminalID == "" {
		return fmt.Errorf("POS_TERMINAL_ID is required")
	}
	switch c.SessionBackend {
	case SessionMemory:
	case SessionRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when POS_SESSION_BACKEND=redis")
		}
	default:
		return fmt.Errorf("POS_SESSION_BACKEND must be %q or %q, got %q", SessionMemory, SessionRedis, c.SessionBackend)
	}
	if c.LoginPerMinute < 0 || (c.LoginPerMinute > 0 && c.LoginBurst < 1) {
		return fmt.Errorf("POS_LOGIN_RATE_PER_MIN must not be negative and POS_LOGIN_BURST must be at least 1")
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("POS_IDLE_TIMEOUT must not be negative")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
	}
	return nil
}

// Addr is the local API listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// EventsEnabled reports whether sale events are published.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
