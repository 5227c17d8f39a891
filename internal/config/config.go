package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "evconduit/libs/config"
)

// Config defines insights service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"INSIGHTS_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"INSIGHTS_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"INSIGHTS_REDIS_ADDR"`
		Password string `yaml:"password" env:"INSIGHTS_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"INSIGHTS_REDIS_DB"`
	} `yaml:"redis"`
	Auth struct {
		JWTSecret string `yaml:"jwtSecret" env:"INSIGHTS_JWT_SECRET"`
	} `yaml:"auth"`
	Geo struct {
		BaseURL string        `yaml:"baseUrl" env:"INSIGHTS_GEO_BASE_URL"`
		Timeout time.Duration `yaml:"timeout" env:"INSIGHTS_GEO_TIMEOUT"`
	} `yaml:"geo"`
	Currency struct {
		CacheTTL time.Duration `yaml:"cacheTtl" env:"INSIGHTS_CURRENCY_CACHE_TTL"`
	} `yaml:"currency"`
	WS struct {
		PingInterval time.Duration `yaml:"pingInterval" env:"INSIGHTS_WS_PING_INTERVAL"`
	} `yaml:"ws"`
}

// Load reads configuration via the shared helper and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8086"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Geo.Timeout = 10 * time.Second
	cfg.Currency.CacheTTL = 7 * 24 * time.Hour
	cfg.WS.PingInterval = 30 * time.Second

	if err := libconfig.Load(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("config: jwt secret required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8086"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
