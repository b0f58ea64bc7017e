package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".cursor-history"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for cursor-history settings.
const envPrefix = "CURSOR_HISTORY"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Concurrency: DefaultConcurrency,
		Pairing:     DefaultPairing,
		LogLevel:    DefaultLogLevel,
		Deduplicate: DefaultDeduplicate,
		Cache:       CacheConfig{Enabled: DefaultCacheEnabled},
		Limits: LimitsConfig{
			Conversations: DefaultLimitConversations,
			Search:        DefaultLimitSearch,
			Diagnose:      DefaultLimitDiagnose,
		},
		Stats: StatsConfig{
			Days:    DefaultStatsDays,
			GroupBy: DefaultStatsGroupBy,
		},
	}
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("workspace_storage", "")
	viperCfg.SetDefault("concurrency", DefaultConcurrency)
	viperCfg.SetDefault("pairing", DefaultPairing)
	viperCfg.SetDefault("log_level", DefaultLogLevel)
	viperCfg.SetDefault("deduplicate", DefaultDeduplicate)

	viperCfg.SetDefault("cache.enabled", DefaultCacheEnabled)
	viperCfg.SetDefault("cache.dir", "")

	viperCfg.SetDefault("limits.conversations", DefaultLimitConversations)
	viperCfg.SetDefault("limits.search", DefaultLimitSearch)
	viperCfg.SetDefault("limits.diagnose", DefaultLimitDiagnose)

	viperCfg.SetDefault("stats.days", DefaultStatsDays)
	viperCfg.SetDefault("stats.group_by", DefaultStatsGroupBy)
}
