package config

import (
	"errors"
	"fmt"

	"github.com/iksnae/cursor-history/internal"
)

// Config is the top-level configuration for cursor-history.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	WorkspaceStorage string       `mapstructure:"workspace_storage"`
	Concurrency      int          `mapstructure:"concurrency"`
	Pairing          string       `mapstructure:"pairing"`
	LogLevel         string       `mapstructure:"log_level"`
	Deduplicate      bool         `mapstructure:"deduplicate"`
	Cache            CacheConfig  `mapstructure:"cache"`
	Limits           LimitsConfig `mapstructure:"limits"`
	Stats            StatsConfig  `mapstructure:"stats"`
}

// CacheConfig holds reconstruction cache settings.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// LimitsConfig holds the default result limits of the query tools.
type LimitsConfig struct {
	Conversations int `mapstructure:"conversations"`
	Search        int `mapstructure:"search"`
	Diagnose      int `mapstructure:"diagnose"`
}

// StatsConfig holds the defaults of the statistics report.
type StatsConfig struct {
	Days    int    `mapstructure:"days"`
	GroupBy string `mapstructure:"group_by"`
}

// Defaults.
const (
	DefaultCacheEnabled       = true
	DefaultConcurrency        = 0
	DefaultPairing            = "positional"
	DefaultLogLevel           = "info"
	DefaultDeduplicate        = false
	DefaultLimitConversations = 50
	DefaultLimitSearch        = 20
	DefaultLimitDiagnose      = 30
	DefaultStatsDays          = 30
	DefaultStatsGroupBy       = "day"
)

// Sentinel errors for configuration validation.
var (
	// ErrInvalidConcurrency indicates the concurrency value is negative.
	ErrInvalidConcurrency = errors.New("concurrency must be non-negative")
	// ErrInvalidLimit indicates a result limit is negative.
	ErrInvalidLimit = errors.New("limits must be non-negative")
	// ErrInvalidStatsDays indicates the statistics window is negative.
	ErrInvalidStatsDays = errors.New("stats.days must be non-negative")
	// ErrInvalidGroupBy indicates an unsupported statistics grouping.
	ErrInvalidGroupBy = errors.New("stats.group_by must be one of day, week, month, language, workspace")
	// ErrInvalidPairing indicates an unknown pairing strategy.
	ErrInvalidPairing = errors.New("pairing must be positional or nearest")
	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("log_level must be error, warn, info or debug")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.Concurrency < 0 {
		return ErrInvalidConcurrency
	}

	if c.Limits.Conversations < 0 || c.Limits.Search < 0 || c.Limits.Diagnose < 0 {
		return ErrInvalidLimit
	}

	if c.Stats.Days < 0 {
		return ErrInvalidStatsDays
	}

	if _, err := internal.ParseGroupBy(c.Stats.GroupBy); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidGroupBy, c.Stats.GroupBy)
	}

	if _, ok := internal.PairingByName(c.Pairing); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPairing, c.Pairing)
	}

	if _, err := internal.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

// GroupBy returns the validated statistics grouping.
func (c *Config) GroupBy() internal.GroupBy {
	g, err := internal.ParseGroupBy(c.Stats.GroupBy)
	if err != nil {
		return internal.GroupByDay
	}
	return g
}

// PairingStrategy returns the configured prompt pairing strategy.
func (c *Config) PairingStrategy() internal.PairingStrategy {
	p, ok := internal.PairingByName(c.Pairing)
	if !ok {
		return internal.PositionalPairing{}
	}
	return p
}
