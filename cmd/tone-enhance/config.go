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
	Text         string
	// TextGiven is set when -text was passed, so an explicit empty message is still input.
	TextGiven    bool
	InPath       string
	OutPath      string
	SettingsPath string
	Settings     tone.Settings
	Offline      bool
	APIKey       string
	Model        string
	BaseURL      string
	Timeout      time.Duration
	Concurrency  int
	Format       string
	Pretty       bool
	Styles       bool
	LogLevel     string
}

func (c Config) Validate() error {
	hasText := c.Text != "" || c.TextGiven
	if !hasText && c.InPath == "" {
		return errors.New("missing -text or -in")
	}
	if hasText && c.InPath != "" {
		return errors.New("-text and -in are mutually exclusive")
	}
	switch c.Format {
	case formatJSON, formatYAML, formatText:
	default:
		return fmt.Errorf("invalid -format %q (want json, yaml or text)", c.Format)
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
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return c.Settings.Validate()
}

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatText = "text"
)

func defaultConfig() Config {
	return Config{
		Settings:    tone.DefaultSettings(),
		Model:       tone.DefaultModel,
		Timeout:     provider.DefaultTimeout,
		Concurrency: tone.DefaultConcurrency,
		Format:      formatText,
		LogLevel:    "warn",
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid -log-level %q: %w", s, err)
	}
	return level, nil
}
