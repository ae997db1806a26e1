// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
)

// Router backends.
const (
	RouterStd        = "std"
	RouterChi        = "chi"
	RouterHTTPRouter = "httprouter"
)

// Config holds the server configuration.
type Config struct {
	Addr            string        `env:"ADDR"             envDefault:"localhost:8080"`
	LogLevel        string        `env:"LOG_LEVEL"        envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT"       envDefault:"json"`
	Router          string        `env:"ROUTER"           envDefault:"std"`
	MetricsPath     string        `env:"METRICS_PATH"     envDefault:"/metrics"`
	ServiceName     string        `env:"SERVICE_NAME"     envDefault:"routemodules"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	IgnoredRoutes   []string      `env:"IGNORED_ROUTES"   envDefault:".*" envSeparator:","`
}

// Prefix is prepended to every variable name.
const Prefix = "ROUTEMODULES_"

// Load parses Config from the process environment.
func Load() (Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom parses Config from the given variables only, for tests and tools.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c Config) Validate() error {
	switch c.Router {
	case RouterStd, RouterChi, RouterHTTPRouter:
	default:
		return fmt.Errorf("unknown router %q: want %s, %s or %s", c.Router, RouterStd, RouterChi, RouterHTTPRouter)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q: want json or console", c.LogFormat)
	}
	if _, err := zap.ParseAtomicLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// NewLogger builds the zap logger described by the config.
func (c Config) NewLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if c.LogFormat == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
