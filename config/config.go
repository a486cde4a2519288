package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, loaded from the environment with
// an optional .env file on top.
type Config struct {
	Port           string   `env:"PORT" envDefault:"5300"`
	DatabaseURL    string   `env:"DATABASE_URL"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogPath  string `env:"LOG_PATH"`

	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	AuditInterval      time.Duration `env:"AUDIT_INTERVAL" envDefault:"5m"`
}

// Load reads .env if present and parses the environment into Config.
func Load() (*Config, error) {
	_ = godotenv.Load() // absence of .env is fine in production

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
