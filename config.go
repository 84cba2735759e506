package sc2reader

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/ggtracker/sc2reader-sub000/stream"
	"github.com/ggtracker/sc2reader-sub000/wire"
)

// Config controls decode limits, diagnostics and fan-out.
type Config struct {
	MaxDepth      int    `env:"SC2READER_MAX_DEPTH"      envDefault:"64"`
	RecentEvents  int    `env:"SC2READER_RECENT_EVENTS"  envDefault:"5"`
	TrailingBytes int    `env:"SC2READER_TRAILING_BYTES" envDefault:"32"`
	Parallelism   int    `env:"SC2READER_PARALLEL"       envDefault:"4"`
	LogLevel      string `env:"SC2READER_LOG_LEVEL"      envDefault:"info"`
}

// DefaultConfig returns the values LoadConfig uses when nothing is set.
func DefaultConfig() Config {
	return Config{
		MaxDepth:      wire.DefaultMaxDepth,
		RecentEvents:  5,
		TrailingBytes: 32,
		Parallelism:   4,
		LogLevel:      "info",
	}
}

// LoadConfig reads the configuration from SC2READER_* environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects limits the decoders cannot work with.
func (c Config) Validate() error {
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max depth must be positive, got %d", c.MaxDepth)
	}
	if c.RecentEvents < 0 || c.TrailingBytes < 0 {
		return fmt.Errorf("diagnostic sizes must not be negative")
	}
	if c.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be positive, got %d", c.Parallelism)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

func (c Config) level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func (c Config) options(logger zerolog.Logger) stream.Options {
	return stream.Options{
		MaxDepth:      c.MaxDepth,
		RecentEvents:  c.RecentEvents,
		TrailingBytes: c.TrailingBytes,
		Logger:        logger,
	}
}
