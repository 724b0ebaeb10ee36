// Package config loads the server configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/goliatone/go-promptgen/pkg/store"
)

// Template source kinds accepted by TEMPLATES_SOURCE.
const (
	SourceEmbedded  = "embedded"
	SourceDirectory = "dir"
	SourceURL       = "url"
	SourceS3        = "s3"
)

// Config holds all server configuration.
type Config struct {
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Store
	StoreDriver string `env:"STORE_DRIVER" envDefault:"memory"`
	StoreDSN    string `env:"STORE_DSN"`
	StorePrefix string `env:"STORE_PREFIX" envDefault:"promptgen:"`

	// Templates
	TemplatesSource   string        `env:"TEMPLATES_SOURCE" envDefault:"embedded"`
	TemplatesDir      string        `env:"TEMPLATES_DIR"`
	TemplatesURL      string        `env:"TEMPLATES_URL"`
	TemplatesBucket   string        `env:"TEMPLATES_S3_BUCKET"`
	TemplatesPrefix   string        `env:"TEMPLATES_S3_PREFIX"`
	TemplatesRegion   string        `env:"TEMPLATES_S3_REGION" envDefault:"us-east-1"`
	TemplatesEndpoint string        `env:"TEMPLATES_S3_ENDPOINT"`
	TemplatesManifest []string      `env:"TEMPLATES_MANIFEST" envSeparator:","`
	TemplatesWatch    bool          `env:"TEMPLATES_WATCH" envDefault:"false"`
	FetchTimeout      time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`

	// Gist import
	GistToken   string `env:"GIST_TOKEN"`
	GistAPIBase string `env:"GIST_API_BASE" envDefault:"https://api.github.com"`

	// Cookies. Keys are hex or raw strings of 32 bytes; blank keys are
	// generated at startup and do not survive restarts.
	CSRFKey      string `env:"CSRF_KEY"`
	SessionKey   string `env:"SESSION_KEY"`
	SecureCookie bool   `env:"SECURE_COOKIE" envDefault:"false"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	// PromptHTMLEscape escapes HTML in values substituted into prompts.
	PromptHTMLEscape bool `env:"PROMPT_HTML_ESCAPE" envDefault:"true"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.AppPort)
}

// StoreConfig maps the store settings onto store.Config.
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		Driver: c.StoreDriver,
		DSN:    c.StoreDSN,
		Prefix: c.StorePrefix,
	}
}

// LogLevelValue converts LogLevel to slog.Level, defaulting to info.
func (c *Config) LogLevelValue() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks that the selected template source has what it needs.
func (c *Config) Validate() error {
	switch c.TemplatesSource {
	case "", SourceEmbedded:
	case SourceDirectory:
		if c.TemplatesDir == "" {
			return fmt.Errorf("config: TEMPLATES_DIR is required for source %q", c.TemplatesSource)
		}
	case SourceURL:
		if c.TemplatesURL == "" {
			return fmt.Errorf("config: TEMPLATES_URL is required for source %q", c.TemplatesSource)
		}
	case SourceS3:
		if c.TemplatesBucket == "" {
			return fmt.Errorf("config: TEMPLATES_S3_BUCKET is required for source %q", c.TemplatesSource)
		}
	default:
		return fmt.Errorf("config: unknown templates source %q", c.TemplatesSource)
	}
	if c.TemplatesWatch && c.TemplatesSource != SourceDirectory {
		return fmt.Errorf("config: TEMPLATES_WATCH requires source %q", SourceDirectory)
	}
	switch c.StoreDriver {
	case store.DriverFile, store.DriverRedis, store.DriverPostgres:
		if c.StoreDSN == "" {
			return fmt.Errorf("config: STORE_DSN is required for driver %q", c.StoreDriver)
		}
	}
	return nil
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	return LoadWith(env.Options{})
}

// LoadWith parses using explicit env options, which tests use to supply an
// environment map.
func LoadWith(options env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, options); err != nil {
		return nil, fmt.Errorf("config: failed to parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
