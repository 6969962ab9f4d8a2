// Package config reads composer settings from the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/mattn/go-isatty"

	"class-composer/internal/compose"
)

// Color modes accepted by COMPOSER_COLOR.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds the settings shared by every composer command. Command-line
// flags override them.
type Config struct {
	Strict   bool       `env:"COMPOSER_STRICT"    envDefault:"true"`
	FanOut   []string   `env:"COMPOSER_FANOUT"    envSeparator:","`
	MaxDepth int        `env:"COMPOSER_MAX_DEPTH" envDefault:"32"`
	LogLevel slog.Level `env:"COMPOSER_LOG_LEVEL" envDefault:"info"`
	Color    string     `env:"COMPOSER_COLOR"     envDefault:"auto"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	return nil
}

// Load parses and validates the environment configuration.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks values env parsing cannot.
func (c Config) Validate() error {
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("COMPOSER_COLOR: unknown mode %q (want auto, always or never)", c.Color)
	}

	if c.MaxDepth < 0 {
		return fmt.Errorf("COMPOSER_MAX_DEPTH: must not be negative, got %d", c.MaxDepth)
	}

	return nil
}

// Options returns the composition options for the configuration.
func (c Config) Options(logger *slog.Logger) compose.Options {
	return compose.Options{
		FanOut:   c.FanOut,
		Strict:   c.Strict,
		MaxDepth: c.MaxDepth,
		Logger:   logger,
	}
}

// Logger returns a text logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}

// UseColor reports whether output to f should be colored.
func (c Config) UseColor(f *os.File) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	if os.Getenv("TERM") == "dumb" {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
