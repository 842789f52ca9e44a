package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the terminal engine configuration, loaded from environment
// variables. Defaults suit a local backend on :3000.
type Config struct {
	BackendURL string `env:"BACKEND_URL" envDefault:"http://localhost:3000"`
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	// PublicURL is the address rendered into QR payment links; the paying
	// customer's phone must be able to reach it.
	PublicURL string `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`

	Currency     string        `env:"CURRENCY" envDefault:"BOB"`
	SessionTTL   time.Duration `env:"QR_SESSION_TTL" envDefault:"2m"`
	PollInterval time.Duration `env:"QR_POLL_INTERVAL" envDefault:"1s"`

	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// RedisAddr selects the redis session store when set; empty keeps
	// sessions in memory.
	RedisAddr string `env:"REDIS_ADDR"`
	// KafkaBrokers enables sale-completed events when set.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	CardApproveRate float64 `env:"CARD_APPROVE_RATE" envDefault:"0.9"`
	SaleNIT         string  `env:"SALE_NIT"`
	SaleUserID      int64   `env:"SALE_USER_ID" envDefault:"1"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("QR_SESSION_TTL must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("QR_POLL_INTERVAL must be positive")
	}
	if c.CardApproveRate < 0 || c.CardApproveRate > 1 {
		return fmt.Errorf("CARD_APPROVE_RATE must be within [0,1]")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}
