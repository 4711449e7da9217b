package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // containers often ship without zoneinfo

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/trainhist/internal/domain/currency"
)

// Environment names read by Load.
const (
	EnvPrefix     = "TRAINHIST_"
	EnvConfigPath = "TRAINHIST_CONFIG"

	// AnchorDateLayout is the layout accepted for anchor_date.
	AnchorDateLayout = "2006-01-02"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TRAINHIST_CONFIG is set
//  3. env (prefix TRAINHIST_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// TRAINHIST_QUEUE_SIZE -> queue_size. Underscores are kept so keys stay
	// flat and match the koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The config path itself is not a config key.
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the cross-field rules Load enforces.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, c.Timezone, err)
	}
	if !currency.Known(c.DefaultCurrency) {
		return fmt.Errorf("%w: default_currency %q is not in the rate table", ErrInvalidConfig, c.DefaultCurrency)
	}
	if c.WorkerCount <= 0 || c.QueueSize <= 0 {
		return fmt.Errorf("%w: worker_count and queue_size must be positive", ErrInvalidConfig)
	}
	if c.ReportCacheSize <= 0 {
		return fmt.Errorf("%w: report_cache_size must be positive", ErrInvalidConfig)
	}
	if c.MaxCompareEntities <= 0 {
		return fmt.Errorf("%w: max_compare_entities must be positive", ErrInvalidConfig)
	}
	return c.validateAnchor()
}

func (c *Config) validateAnchor() error {
	if c.AnchorDate == "" {
		if c.AnchorSeason != 0 || c.AnchorDay != 0 {
			return fmt.Errorf("%w: %w: anchor_season and anchor_day require anchor_date", ErrInvalidConfig, ErrInvalidAnchor)
		}
		return nil
	}
	if _, err := time.Parse(AnchorDateLayout, c.AnchorDate); err != nil {
		return fmt.Errorf("%w: %w: anchor_date %q: %w", ErrInvalidConfig, ErrInvalidAnchor, c.AnchorDate, err)
	}
	if c.AnchorSeason <= 0 {
		return fmt.Errorf("%w: %w: anchor_season must be positive when anchor_date is set", ErrInvalidConfig, ErrInvalidAnchor)
	}
	if c.AnchorDay < 0 || c.AnchorDay > 90 {
		return fmt.Errorf("%w: %w: anchor_day must be in [0,90], got %d", ErrInvalidConfig, ErrInvalidAnchor, c.AnchorDay)
	}
	return nil
}
