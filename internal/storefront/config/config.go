// Package config loads the storefront settings from the environment, with an
// optional .env file for local runs.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// BackendMemory selects the in-process backend instead of the REST one.
const BackendMemory = "memory"

// Config is loaded from the environment (and an optional .env file) by Load.
type Config struct {
	Port           int           `env:"PORT,default=8080"`
	BackendURL     string        `env:"BACKEND_URL,default=http://localhost:8181"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT,default=10s"`
	// PaymentLimit only applies to the memory backend; 0 disables it.
	PaymentLimit string `env:"PAYMENT_LIMIT,default=0"`

	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB,default=0"`
	SessionTTL      time.Duration `env:"SESSION_TTL,default=24h"`
	ToastTTL        time.Duration `env:"TOAST_TTL,default=3s"`
	CookieSecure    bool          `env:"COOKIE_SECURE,default=false"`
	CheckoutLogPath string        `env:"CHECKOUT_LOG_PATH,default=./data/checkout.db"`

	AuthRatePerSec float64 `env:"AUTH_RATE_PER_SEC,default=5"`
	AuthRateBurst  int     `env:"AUTH_RATE_BURST,default=10"`
	// TrustProxyHeaders keys the auth limiter on X-Forwarded-For / X-Real-IP.
	// Leave it off unless a proxy in front rewrites those headers.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS,default=false"`

	LogLevel       string  `env:"LOG_LEVEL,default=info"`
	ServiceName    string  `env:"OTEL_SERVICE_NAME,default=storefront"`
	TracingEnabled bool    `env:"TRACING_ENABLED,default=false"`
	OTLPEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT,default=localhost:4317"`
	Environment    string  `env:"DEPLOY_ENV,default=local"`
	SampleRatio    float64 `env:"OTEL_SAMPLE_RATIO,default=1"`
}

// Load reads envFiles (missing files are skipped) and then decodes the
// environment. Variables already set win over the files.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("config: decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	}
	if !c.MemoryBackend() {
		u, err := url.Parse(c.BackendURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config: BACKEND_URL %q must be an absolute URL or %q", c.BackendURL, BackendMemory)
		}
	}
	if c.BackendTimeout <= 0 {
		return errors.New("config: BACKEND_TIMEOUT must be positive")
	}
	if c.SessionTTL <= 0 || c.ToastTTL <= 0 {
		return errors.New("config: SESSION_TTL and TOAST_TTL must be positive")
	}
	if c.AuthRatePerSec <= 0 || c.AuthRateBurst <= 0 {
		return errors.New("config: auth rate limit must be positive")
	}
	if _, err := decimal.NewFromString(c.PaymentLimit); err != nil {
		return fmt.Errorf("config: PAYMENT_LIMIT %q: %w", c.PaymentLimit, err)
	}
	return nil
}

func (c *Config) MemoryBackend() bool {
	return c.BackendURL == BackendMemory
}

func (c *Config) PaymentLimitAmount() decimal.Decimal {
	d, _ := decimal.NewFromString(c.PaymentLimit)
	return d
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
