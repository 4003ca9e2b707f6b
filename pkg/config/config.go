// Package config loads artable configuration from defaults, an optional YAML
// file, and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Sternrassler/artwork-table/pkg/catalog"
	"github.com/Sternrassler/artwork-table/pkg/logging"
)

// Session backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// DefaultUserAgent identifies artable to the catalog API.
const DefaultUserAgent = "artwork-table/0.1.0"

// Config is the complete artable configuration.
type Config struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Table   TableConfig   `yaml:"table"`
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	Redis   RedisConfig   `yaml:"redis"`
	Log     LogConfig     `yaml:"log"`
}

// CatalogConfig configures the remote catalog client.
type CatalogConfig struct {
	BaseURL   string        `yaml:"base_url" env:"ARTABLE_CATALOG_URL"`
	UserAgent string        `yaml:"user_agent" env:"ARTABLE_USER_AGENT"`
	Timeout   time.Duration `yaml:"timeout"`
	Fields    []string      `yaml:"fields"`
}

// TableConfig configures the table view.
type TableConfig struct {
	PageSize   int `yaml:"page_size" env:"ARTABLE_PAGE_SIZE"`
	MaxButtons int `yaml:"max_buttons"`
}

// ServerConfig configures the browser server.
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"ARTABLE_ADDR"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// SessionConfig configures where table snapshots are kept between requests.
type SessionConfig struct {
	Backend string        `yaml:"backend" env:"ARTABLE_SESSION_BACKEND"`
	TTL     time.Duration `yaml:"ttl" env:"ARTABLE_SESSION_TTL"`
}

// RedisConfig configures the Redis session backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_URL"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"LOG_PRETTY"`
	File   string `yaml:"file" env:"LOG_FILE"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Catalog: CatalogConfig{
			BaseURL:   catalog.DefaultBaseURL,
			UserAgent: DefaultUserAgent,
			Timeout:   30 * time.Second,
		},
		Table: TableConfig{
			PageSize:   12,
			MaxButtons: 5,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
		},
		Session: SessionConfig{
			Backend: BackendMemory,
			TTL:     30 * time.Minute,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Log: LogConfig{
			Level: string(logging.LevelInfo),
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when path
// is empty), and environment overrides, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(env.ToMap(os.Environ())); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays variables from environ. Unset and empty variables keep
// the current value.
func (c *Config) applyEnv(environ map[string]string) error {
	if err := env.ParseWithOptions(c, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// Validate checks the configuration and reports every problem found.
func (c Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.Catalog.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("catalog.base_url must be an absolute http(s) url (got %q)", c.Catalog.BaseURL))
	}
	if strings.TrimSpace(c.Catalog.UserAgent) == "" {
		errs = append(errs, errors.New("catalog.user_agent is required"))
	}
	if c.Catalog.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("catalog.timeout must be > 0 (got %s)", c.Catalog.Timeout))
	}
	if c.Table.PageSize < 1 {
		errs = append(errs, fmt.Errorf("table.page_size must be >= 1 (got %d)", c.Table.PageSize))
	}
	if c.Table.MaxButtons < 1 {
		errs = append(errs, fmt.Errorf("table.max_buttons must be >= 1 (got %d)", c.Table.MaxButtons))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	switch c.Session.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required for the redis session backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("session.backend must be %q or %q (got %q)", BackendMemory, BackendRedis, c.Session.Backend))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, fmt.Errorf("session.ttl must be > 0 (got %s)", c.Session.TTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// CatalogClient returns the catalog client configuration.
func (c Config) CatalogClient() catalog.Config {
	return catalog.Config{
		BaseURL:   c.Catalog.BaseURL,
		UserAgent: c.Catalog.UserAgent,
		Timeout:   c.Catalog.Timeout,
		Fields:    c.Catalog.Fields,
	}
}

// Logging returns the logger configuration. Output is left to the caller.
func (c Config) Logging() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = logging.LogLevel(c.Log.Level)
	lc.Pretty = c.Log.Pretty
	lc.File = c.Log.File
	return lc
}
