package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel         string  `env:"LOG_LEVEL" envDefault:"info"`
	ServerAddr       string  `env:"SERVER_ADDR" envDefault:":8080"`
	MetricsAddr      string  `env:"METRICS_ADDR" envDefault:":9091"`
	MaxBodySize      int64   `env:"MAX_BODY_SIZE_BYTES" envDefault:"10485760"` // 10MB
	SessionWorkers   int     `env:"SESSION_WORKERS" envDefault:"4"`
	RateLimitRPS     float64 `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst   int     `env:"RATE_LIMIT_BURST" envDefault:"100"`
	PIIRedaction     bool    `env:"PII_REDACTION" envDefault:"true"`
	WeightConfigPath string  `env:"WEIGHT_CONFIG_PATH"`
	QueueLimit       int     `env:"QUEUE_LIMIT" envDefault:"50"`
	MinScore         float64 `env:"MIN_SCORE" envDefault:"0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
