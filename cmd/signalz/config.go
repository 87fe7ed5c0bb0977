package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zoobzio/signalz"
)

// EnvPrefix prefixes every environment variable read by the CLI.
const EnvPrefix = "SIGNALZ_"

// Config holds CLI defaults. Flags override these values.
type Config struct {
	Debounce    time.Duration `env:"DEBOUNCE" envDefault:"100ms"`
	Format      string        `env:"FORMAT" envDefault:"auto"`
	Output      string        `env:"OUTPUT" envDefault:"json"`
	MetricsAddr string        `env:"METRICS_ADDR"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
}

var (
	errUnknownFormat   = errors.New("unknown format")
	errUnknownOutput   = errors.New("unknown output")
	errUnknownLogLevel = errors.New("unknown log level")
)

// loadConfig reads envFiles (or ./.env when none are given, ignoring a
// missing file) and parses SIGNALZ_* variables into a Config.
func loadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		// The default .env file is optional.
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, fmt.Errorf("failed to load env files: %w", err)
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// applyFlags copies flags the user set explicitly onto cfg.
func (c *Config) applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("debounce") {
		if c.Debounce, err = flags.GetDuration("debounce"); err != nil {
			return err
		}
	}
	if flags.Changed("format") {
		if c.Format, err = flags.GetString("format"); err != nil {
			return err
		}
	}
	if flags.Changed("output") {
		if c.Output, err = flags.GetString("output"); err != nil {
			return err
		}
	}
	if flags.Changed("metrics-addr") {
		if c.MetricsAddr, err = flags.GetString("metrics-addr"); err != nil {
			return err
		}
	}
	if flags.Changed("log-level") {
		if c.LogLevel, err = flags.GetString("log-level"); err != nil {
			return err
		}
	}
	return nil
}

// resolve loads the environment and overlays cmd's flags.
func resolve(cmd *cobra.Command) (Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.applyFlags(cmd); err != nil {
		return Config{}, err
	}
	if _, err := cfg.codec(); err != nil {
		return Config{}, err
	}
	if cfg.Output != "json" && cfg.Output != "yaml" {
		return Config{}, fmt.Errorf("%w: %q", errUnknownOutput, cfg.Output)
	}
	if _, err := cfg.level(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) codec() (signalz.Codec, error) {
	switch c.Format {
	case "auto", "":
		return signalz.AutoCodec{}, nil
	case "json":
		return signalz.JSONCodec{}, nil
	case "yaml", "yml":
		return signalz.YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownFormat, c.Format)
	}
}

func (c Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: %q", errUnknownLogLevel, c.LogLevel)
	}
	return level, nil
}

// addCommonFlags registers the flags shared by get and watch.
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "auto", "Input format: auto, json or yaml")
	cmd.Flags().StringP("output", "o", "json", "Output format: json or yaml")
}
