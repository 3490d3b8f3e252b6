// Package config loads optional YAML settings for the fasthdr commands.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds settings shared by the commands. Command-line flags override
// values loaded from file.
type Config struct {
	Buffers    int      `yaml:"buffers"`    // frame buffers in the pool (default 16)
	Workers    int      `yaml:"workers"`    // fan-out per frame or LUT build, 0 = GOMAXPROCS
	Strict     bool     `yaml:"strict"`     // fail on a truncated final frame
	LogLevel   string   `yaml:"log_level"`  // debug, info, warn, error
	Stages     []string `yaml:"stages"`     // LUT builder transform chain, empty = default
	Saturation float64  `yaml:"saturation"` // factor for the saturation stage
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Buffers:    16,
		LogLevel:   "info",
		Saturation: 1,
	}
}

// Load reads a YAML file on top of Default. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks value ranges.
func Validate(cfg Config) error {
	var errs []error
	if cfg.Buffers < 1 {
		errs = append(errs, fmt.Errorf("buffers must be >= 1, got %d", cfg.Buffers))
	}
	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", cfg.Workers))
	}
	if cfg.Saturation < 0 {
		errs = append(errs, fmt.Errorf("saturation must be >= 0, got %g", cfg.Saturation))
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseLevel maps a level name to slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger builds a text logger on stderr; stdout is reserved for video data.
func (c Config) Logger() *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
