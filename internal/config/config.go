// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Provide New() to build a Config with defaults.
//   - Load layers a .env file, an optional YAML or TOML file and CHARTREC_ env vars on top.
//   - Validation failures wrap ErrInvalidConfig.
package config

import (
	"github.com/okian/chartrec/internal/adapters/fetch"
	"github.com/okian/chartrec/internal/domain/catalog"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite file holding the record collection. Empty uses
	// $XDG_DATA_HOME/chartrec/records.db.
	DBPath string `koanf:"db_path"`

	// CatalogPath points at a songs JSON file. Empty uses the embedded catalog.
	CatalogPath string `koanf:"catalog_path"`

	// FetchURL is the cloud save endpoint. Empty disables fetching.
	FetchURL string `koanf:"fetch_url"`

	// FetchTimeoutMS bounds a single fetch; 0 disables the timeout.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// DropUnplayed removes zero-rate records from imports.
	DropUnplayed bool `koanf:"drop_unplayed"`

	SearchThreshold    float64 `koanf:"search_threshold"`
	SearchTitleWeight  float64 `koanf:"search_title_weight"`
	SearchArtistWeight float64 `koanf:"search_artist_weight"`

	// MaxImportBytes caps an import payload.
	MaxImportBytes int64 `koanf:"max_import_bytes"`
}

// New creates a Config populated with defaults.
func New() *Config {
	search := catalog.DefaultSearchOptions()
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		FetchURL:           fetch.DefaultURL,
		FetchTimeoutMS:     int(fetch.DefaultTimeout.Milliseconds()),
		DropUnplayed:       true,
		SearchThreshold:    search.Threshold,
		SearchTitleWeight:  search.TitleWeight,
		SearchArtistWeight: search.ArtistWeight,
		MaxImportBytes:     fetch.DefaultMaxBytes,
	}
}

// SearchOptions converts the search keys into catalog tuning.
func (c *Config) SearchOptions() catalog.SearchOptions {
	return catalog.SearchOptions{
		TitleWeight:  c.SearchTitleWeight,
		ArtistWeight: c.SearchArtistWeight,
		Threshold:    c.SearchThreshold,
	}
}
