package app

import (
	"errors"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	TestMode          bool          `envconfig:"ODYSSEY_TEST_MODE"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout   time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"10s"`
	RateLimit         int           `envconfig:"APP_RATE_LIMIT" default:"120"`

	LogFormat string     `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  slog.Level `envconfig:"LOG_LEVEL" default:"INFO"`
	LogFile   string     `envconfig:"LOG_FILE"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"12h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	LowStockThreshold int    `envconfig:"LOW_STOCK_THRESHOLD" default:"5"`
	SweepSchedule     string `envconfig:"SWEEP_SCHEDULE" default:"@every 5m"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("session secret must be provided")
	}
	if c.CSRFSecret == "" {
		return errors.New("csrf secret must be provided")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if c.LowStockThreshold < 0 {
		return ledger.ErrInvalidThreshold
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
