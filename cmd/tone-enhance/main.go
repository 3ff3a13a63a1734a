package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/theimaginaryfoundation/tonetype/tone"
	"github.com/theimaginaryfoundation/tonetype/tone/fileutils"
	"gopkg.in/yaml.v3"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout, logger); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.Text, "text", "", "Text to enhance (an empty string yields an empty result)")
	fs.StringVar(&cfg.InPath, "in", "", "Read the text from a file (\"-\" for stdin)")
	fs.StringVar(&cfg.OutPath, "out", "", "Write the result to a file instead of stdout")
	fs.StringVar(&cfg.SettingsPath, "settings", "", "Optional TOML settings file; explicit flags override its values")
	emojis := fs.Bool("emojis", cfg.Settings.EnableEmojis, "Append tone emoji")
	styling := fs.Bool("styling", cfg.Settings.EnableStyling, "Style emphasized words with Unicode letterforms")
	intensity := fs.String("intensity", string(cfg.Settings.EmojiIntensity), "Emoji intensity: low, medium or high")
	placement := fs.String("placement", string(cfg.Settings.EmojiPlacement), "Emoji placement: end_of_sentence or end_of_message")
	fs.BoolVar(&cfg.Offline, "offline", false, "Classify with the offline rules only")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "Chat model used for remote tone classification")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "Optional OpenAI-compatible API base URL")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Timeout per remote classification request")
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Max concurrent remote classifications")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "Output format: json, yaml or text")
	fs.BoolVar(&cfg.Pretty, "pretty", false, "Pretty-print JSON output")
	fs.BoolVar(&cfg.Styles, "styles", false, "Print the text in every Unicode style instead of enhancing it")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.SettingsPath != "" {
		cfg.SettingsPath = filepath.Clean(cfg.SettingsPath)
		settings, err := tone.LoadSettings(cfg.SettingsPath)
		if err != nil {
			return Config{}, err
		}
		cfg.Settings = settings
	}

	explicit := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	cfg.TextGiven = explicit["text"]
	if explicit["emojis"] || cfg.SettingsPath == "" {
		cfg.Settings.EnableEmojis = *emojis
	}
	if explicit["styling"] || cfg.SettingsPath == "" {
		cfg.Settings.EnableStyling = *styling
	}
	if explicit["intensity"] || cfg.SettingsPath == "" {
		cfg.Settings.EmojiIntensity = tone.Intensity(strings.ToLower(*intensity))
	}
	if explicit["placement"] || cfg.SettingsPath == "" {
		cfg.Settings.EmojiPlacement = tone.EmojiPlacement(strings.ToLower(*placement))
	}

	cfg.Format = strings.ToLower(cfg.Format)
	if cfg.InPath != "" && cfg.InPath != "-" {
		cfg.InPath = filepath.Clean(cfg.InPath)
	}
	if cfg.OutPath != "" {
		cfg.OutPath = filepath.Clean(cfg.OutPath)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg Config, stdout io.Writer, logger *slog.Logger) error {
	text := cfg.Text
	if cfg.InPath != "" {
		var err error
		if text, err = fileutils.ReadTextFile(cfg.InPath); err != nil {
			return err
		}
	}

	var payload any
	if cfg.Styles {
		payload = tone.PreviewAllStyles(text)
	} else {
		msg, err := enhance(ctx, cfg, text, logger)
		if err != nil {
			return err
		}
		payload = msg
	}

	if cfg.OutPath != "" && cfg.Format == formatJSON {
		if err := fileutils.WriteJSONFileAtomic(cfg.OutPath, payload, cfg.Pretty); err != nil {
			return fmt.Errorf("write -out: %w", err)
		}
		return nil
	}

	out, err := render(payload, cfg)
	if err != nil {
		return err
	}
	if cfg.OutPath != "" {
		if err := fileutils.WriteFileAtomicSameDir(cfg.OutPath, out, 0o644); err != nil {
			return fmt.Errorf("write -out: %w", err)
		}
		return nil
	}
	_, err = stdout.Write(out)
	return err
}

func enhance(ctx context.Context, cfg Config, text string, logger *slog.Logger) (tone.EnhancedMessage, error) {
	opts := []tone.Option{
		tone.WithLogger(logger),
		tone.WithConcurrency(cfg.Concurrency),
	}
	credential := ""
	switch {
	case cfg.Offline:
	case cfg.APIKey == "":
		logger.Info("no API key; classifying with offline rules")
	default:
		credential = cfg.APIKey
		opts = append(opts, tone.WithRemote(tone.NewRemoteClassifier(tone.RemoteOptions{
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})))
	}

	e := tone.NewEnhancer(opts...)
	if credential == "" {
		return e.EnhanceOffline(text, cfg.Settings)
	}
	return e.Enhance(ctx, text, credential, cfg.Settings)
}

// render formats an enhanced message or a style preview for stdout or a non-JSON -out file.
func render(payload any, cfg Config) ([]byte, error) {
	switch cfg.Format {
	case formatText:
		switch v := payload.(type) {
		case tone.EnhancedMessage:
			return []byte(v.Enhanced + "\n"), nil
		case map[tone.UnicodeStyle]string:
			var b strings.Builder
			for _, s := range tone.UnicodeStyles {
				fmt.Fprintf(&b, "%s: %s\n", s, v[s])
			}
			return []byte(b.String()), nil
		default:
			return nil, fmt.Errorf("cannot render %T as text", payload)
		}
	case formatYAML:
		return yaml.Marshal(payload)
	default:
		return marshalJSON(payload, cfg.Pretty)
	}
}

func marshalJSON(v any, pretty bool) ([]byte, error) {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return append(b, '\n'), nil
}
