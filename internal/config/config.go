package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string `env:"ENV" env-default:"local"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	HTTP    HTTP
	API     API
	Redis   Redis
	Cookie  Cookie
	Tracing Tracing
}

type HTTP struct {
	Port            string        `env:"HTTP_PORT" env-default:"8080"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" env-default:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// API is the remote e-commerce backend.
type API struct {
	URL     string        `env:"API_URL" env-required:"true"`
	Timeout time.Duration `env:"API_TIMEOUT" env-default:"10s"`
}

type Redis struct {
	Enabled  bool          `env:"CACHE_ENABLED" env-default:"true"`
	Addr     string        `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	TTL      time.Duration `env:"CACHE_TTL" env-default:"30s"`
}

type Cookie struct {
	Secure bool `env:"COOKIE_SECURE" env-default:"false"`
}

type Tracing struct {
	Enabled  bool   `env:"TRACING_ENABLED" env-default:"false"`
	Endpoint string `env:"OTEL_ENDPOINT" env-default:"localhost:4318"`
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if cfg.API.URL == "" {
		return nil, errors.New("API_URL is required")
	}
	if cfg.API.Timeout >= cfg.HTTP.RequestTimeout {
		return nil, fmt.Errorf("API_TIMEOUT (%s) must be shorter than REQUEST_TIMEOUT (%s)", cfg.API.Timeout, cfg.HTTP.RequestTimeout)
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
