package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config is the full daemon configuration. Precedence, lowest to
// highest: flag defaults, config file, RECALLD_* environment variables,
// explicitly set flags.
type Config struct {
	Listen   string   `koanf:"listen" validate:"required"`
	Database string   `koanf:"database" validate:"required"`
	Owner    string   `koanf:"owner" validate:"required"`
	TimeZone string   `koanf:"timezone" validate:"omitempty,timezone"`
	ReposDir string   `koanf:"repos_dir"`
	Sources  []string `koanf:"sources" validate:"dive,min=1"`

	Log Log `koanf:"log"`
}

// Log configures the structured logger.
type Log struct {
	Level   string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Console bool   `koanf:"console"`
}

// Flags returns the daemon's flag set with defaults applied.
func Flags() *pflag.FlagSet {
	f := pflag.NewFlagSet("recalld", pflag.ContinueOnError)
	f.String("config", "recalld.yaml", "path to the YAML config file")
	f.String("listen", "127.0.0.1:8484", "HTTP listen address")
	f.String("database", "recalld.db", "path to the SQLite database file")
	f.String("owner", "default", "learner id the daemon schedules for")
	f.String("timezone", "UTC", "IANA time zone for the reviewed-today day boundary")
	f.String("repos_dir", "repos", "directory for git card-source checkouts")
	f.StringSlice("sources", nil, "card sources (directories or git URLs)")
	f.String("log.level", "info", "log level (trace|debug|info|warn|error)")
	f.Bool("log.console", false, "human-readable console log output")
	return f
}

// Load builds the configuration from the parsed flag set.
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	path, _ := f.GetString("config")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// A missing file is fine unless the user pointed at it explicitly.
		if !errors.Is(err, fs.ErrNotExist) || f.Changed("config") {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("RECALLD_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "RECALLD_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Location resolves the configured time zone. Empty means UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}
