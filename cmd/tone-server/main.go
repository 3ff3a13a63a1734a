package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/theimaginaryfoundation/tonetype/tone"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	level, _ := parseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if cfg.APIKey == "" {
		logger.Info("no server API key; requests without a bearer token use offline rules")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(gin.ReleaseMode)
	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: newServer(cfg, logger).routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", cfg.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
}

func newServer(cfg Config, logger *slog.Logger) *server {
	return &server{
		enhancer: tone.NewEnhancer(
			tone.WithLogger(logger),
			tone.WithConcurrency(cfg.Concurrency),
			tone.WithRemote(tone.NewRemoteClassifier(tone.RemoteOptions{
				Model:   cfg.Model,
				BaseURL: cfg.BaseURL,
				Timeout: cfg.Timeout,
			})),
		),
		apiKey:       cfg.APIKey,
		defaults:     cfg.Settings,
		maxBodyBytes: cfg.MaxBodyBytes,
		logger:       logger,
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	fs.StringVar(&cfg.SettingsPath, "settings", "", "Optional TOML file with default enhancement settings")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key used when a request carries no bearer token (overrides OPENAI_API_KEY env var)")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "Chat model used for remote tone classification")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "Optional OpenAI-compatible API base URL")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Timeout per remote classification request")
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Max concurrent remote classifications per request")
	fs.Int64Var(&cfg.MaxBodyBytes, "max-body-bytes", cfg.MaxBodyBytes, "Max request body size")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "Grace period for in-flight requests on shutdown")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.SettingsPath != "" {
		cfg.SettingsPath = filepath.Clean(cfg.SettingsPath)
		settings, err := tone.LoadSettings(cfg.SettingsPath)
		if err != nil {
			return Config{}, err
		}
		cfg.Settings = settings
	}
	return cfg, nil
}
