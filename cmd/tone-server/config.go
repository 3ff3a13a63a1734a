package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/theimaginaryfoundation/tonetype/tone"
	"github.com/theimaginaryfoundation/tonetype/tone/provider"
)

type Config struct {
	Addr            string
	SettingsPath    string
	Settings        tone.Settings
	APIKey          string
	Model           string
	BaseURL         string
	Timeout         time.Duration
	Concurrency     int
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
	LogLevel        string
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("missing -addr")
	}
	if c.Model == "" {
		return errors.New("missing -model")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be > 0")
	}
	if c.Concurrency < 0 {
		return errors.New("concurrency must be >= 0")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("max-body-bytes must be > 0")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return c.Settings.Validate()
}

func defaultConfig() Config {
	return Config{
		Addr:            ":8080",
		Settings:        tone.DefaultSettings(),
		Model:           tone.DefaultModel,
		Timeout:         provider.DefaultTimeout,
		Concurrency:     tone.DefaultConcurrency,
		MaxBodyBytes:    64 << 10,
		ShutdownTimeout: 15 * time.Second,
		LogLevel:        "info",
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid -log-level %q: %w", s, err)
	}
	return level, nil
}
