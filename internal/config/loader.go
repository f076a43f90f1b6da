package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment override, e.g. CHARTREC_ADDR.
	EnvPrefix = "CHARTREC_"
	// EnvConfigFile names the variable holding an optional config file path.
	EnvConfigFile = EnvPrefix + "CONFIG"
	// DotEnvFile is read from the working directory when present.
	DotEnvFile = ".env"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML, or TOML for a .toml extension) if CHARTREC_CONFIG is set
//  3. env (prefix CHARTREC_), including values from ./.env
func Load(ctx context.Context) (*Config, error) {
	return LoadFile(ctx, os.Getenv(EnvConfigFile))
}

// LoadFile is Load with an explicit config file path. An empty path skips the
// file layer unless CHARTREC_CONFIG (possibly set by .env) names one.
func LoadFile(_ context.Context, path string) (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Map env keys like CHARTREC_DB_PATH -> db_path (flat keys).
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parserFor(path string) koanf.Parser {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Parser()
	}
	return yaml.Parser()
}

// loadDotEnv copies a .env file into the process environment without
// overriding variables that are already set.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return invalid("addr must not be empty")
	case c.FetchTimeoutMS < 0:
		return invalid("fetch_timeout_ms must not be negative")
	case c.MaxImportBytes <= 0:
		return invalid("max_import_bytes must be positive")
	case c.SearchThreshold < 0 || c.SearchThreshold > 1:
		return invalid("search_threshold must be within [0, 1]")
	case c.SearchTitleWeight < 0 || c.SearchArtistWeight < 0:
		return invalid("search weights must not be negative")
	case c.SearchTitleWeight+c.SearchArtistWeight == 0:
		return invalid("search weights must not both be zero")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid("unknown log_level %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return invalid("unknown log_format %q", c.LogFormat)
	}

	if c.FetchURL != "" {
		u, err := url.Parse(c.FetchURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid("fetch_url must be an absolute http(s) URL")
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
