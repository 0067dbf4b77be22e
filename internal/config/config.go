// Package config loads the host runner settings from SPARKXR_ environment
// variables. Command-line flags override them.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Prefix is prepended to every variable name.
const Prefix = "SPARKXR_"

type Config struct {
	Headless bool   `env:"HEADLESS"`
	Hz       int    `env:"HZ" envDefault:"60"`
	Ticks    uint64 `env:"TICKS"`
	// SelectEvery injects a select every N headless ticks; 0 never does.
	SelectEvery uint64 `env:"SELECT_EVERY"`

	Width  int `env:"WIDTH" envDefault:"320"`
	Height int `env:"HEIGHT" envDefault:"240"`

	MaxDelta  time.Duration `env:"MAX_DELTA" envDefault:"100ms"`
	Placement string        `env:"PLACEMENT" envDefault:"additive"`

	AssetDir  string `env:"ASSET_DIR" envDefault:"assets"`
	MarkerURI string `env:"MARKER_URI" envDefault:"reticle.yaml"`
	ModelURI  string `env:"MODEL_URI" envDefault:"flower.yaml"`

	// MetricsAddr enables the /metrics listener when set.
	MetricsAddr string `env:"METRICS_ADDR"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	WarmupFrames int     `env:"WARMUP_FRAMES" envDefault:"30"`
	FloorY       float32 `env:"FLOOR_Y" envDefault:"-1.4"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate rejects values the runner cannot use.
func (c Config) Validate() error {
	if c.Hz <= 0 {
		return fmt.Errorf("config: hz must be positive, got %d", c.Hz)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("config: framebuffer must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.MaxDelta <= 0 {
		return fmt.Errorf("config: max delta must be positive, got %s", c.MaxDelta)
	}
	if c.WarmupFrames < 0 {
		return fmt.Errorf("config: warmup frames must not be negative, got %d", c.WarmupFrames)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level maps LogLevel (debug|info|warn|error) to a slog level.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
