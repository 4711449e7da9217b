// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and TRAINHIST_* env vars.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// UpstreamBaseURL is the host site all entity data is fetched from.
	UpstreamBaseURL string `koanf:"upstream_base_url"`

	// Sport is passed through to upstream requests.
	Sport string `koanf:"sport"`

	// Timezone is the IANA zone the host calendar runs in.
	Timezone string `koanf:"timezone"`

	// AnchorDate, AnchorSeason and AnchorDay pin the season anchor statically.
	// When all are empty the anchor is read from the upstream page header.
	AnchorDate   string `koanf:"anchor_date"`
	AnchorSeason int    `koanf:"anchor_season"`
	AnchorDay    int    `koanf:"anchor_day"`

	// DefaultCurrency seeds the preferred currency when none is stored.
	DefaultCurrency string `koanf:"default_currency"`

	// PreferencesPath is the SQLite file holding the preferred currency.
	// Empty keeps the preference in memory.
	PreferencesPath string `koanf:"preferences_path"`

	// ReportCacheSize bounds the number of computed reports kept for re-pricing.
	ReportCacheSize int `koanf:"report_cache_size"`

	// WorkerCount sets the number of comparison workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the comparison job queue.
	QueueSize int `koanf:"queue_size"`

	// MaxCompareEntities caps the ids accepted by one comparison.
	MaxCompareEntities int `koanf:"max_compare_entities"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		UpstreamBaseURL:    "https://www.managerzone.com",
		Sport:              "soccer",
		Timezone:           "Europe/Stockholm",
		DefaultCurrency:    "USD",
		ReportCacheSize:    256,
		WorkerCount:        runtime.NumCPU() * 2,
		QueueSize:          1_000,
		MaxCompareEntities: 20,
	}
}

// HasStaticAnchor reports whether the anchor is pinned in configuration.
func (c *Config) HasStaticAnchor() bool {
	return c.AnchorDate != ""
}
