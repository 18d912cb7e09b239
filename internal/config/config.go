// Package config handles application configuration from environment variables
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Template catalog sources.
const (
	SourceEmbedded = "embedded"
	SourceDB       = "db"
)

// Config holds all application configuration
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisAddr   string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	// TemplateSource picks where the workout catalog comes from.
	TemplateSource string `env:"TEMPLATE_SOURCE" envDefault:"embedded"`
	// TemplateFile overrides the embedded catalog with a YAML file.
	TemplateFile string `env:"TEMPLATE_FILE"`

	DontRepeatWindow   int `env:"DONT_REPEAT_WINDOW" envDefault:"3"`
	DontFollowLookback int `env:"DONT_FOLLOW_LOOKBACK" envDefault:"1"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from environment variables
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads configuration from the given variables instead of the
// process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the services cannot start with
func (c Config) Validate() error {
	switch c.TemplateSource {
	case SourceEmbedded:
	case SourceDB:
		if c.DatabaseURL == "" {
			return fmt.Errorf("TEMPLATE_SOURCE=db requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("TEMPLATE_SOURCE must be %q or %q, got %q", SourceEmbedded, SourceDB, c.TemplateSource)
	}
	if c.DontRepeatWindow < 1 {
		return fmt.Errorf("DONT_REPEAT_WINDOW must be at least 1, got %d", c.DontRepeatWindow)
	}
	if c.DontFollowLookback < 1 {
		return fmt.Errorf("DONT_FOLLOW_LOOKBACK must be at least 1, got %d", c.DontFollowLookback)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %v", err)
	}
	return nil
}

// Level returns the configured log level, defaulting to info.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
