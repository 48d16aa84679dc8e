// Package config loads the fetch toolkit configuration from an
// optional YAML file with sane defaults for every knob.
package config

import (
	"fmt"
	"time"

	"github.com/raywind/Kronos/pkg/fetch"
	"github.com/raywind/Kronos/pkg/logging"
	"github.com/spf13/viper"
)

// Config is the top-level configuration.
type Config struct {
	Log   LogConfig   `mapstructure:"log"`
	Redis RedisConfig `mapstructure:"redis"`
	Fetch FetchConfig `mapstructure:"fetch"`
	Cache CacheConfig `mapstructure:"cache"`
	Yahoo YahooConfig `mapstructure:"yahoo"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// RedisConfig configures the shared Redis backend. An empty Addr
// disables caching and cooldown tracking.
type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

// FetchConfig mirrors fetch.Policy in file-friendly form.
type FetchConfig struct {
	BatchSizeDays         int           `mapstructure:"batch_size_days"`
	InterBatchDelayMin    time.Duration `mapstructure:"inter_batch_delay_min"`
	InterBatchDelayMax    time.Duration `mapstructure:"inter_batch_delay_max"`
	RetryBaseDelay        time.Duration `mapstructure:"retry_base_delay"`
	MaxRetryDelay         time.Duration `mapstructure:"max_retry_delay"`
	MaxRetries            int           `mapstructure:"max_retries"`
	FallbackBatchSizeDays int           `mapstructure:"fallback_batch_size_days"`
	FallbackDelayMin      time.Duration `mapstructure:"fallback_delay_min"`
	FallbackDelayMax      time.Duration `mapstructure:"fallback_delay_max"`
}

// CacheConfig configures the candle cache.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// YahooConfig configures the Yahoo Finance adapter.
type YahooConfig struct {
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Load reads the configuration from path. An empty path yields pure
// defaults. The embedded fetch policy is validated before returning.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}

	if err := cfg.Policy().Validate(); err != nil {
		return nil, fmt.Errorf("invalid fetch policy: %w", err)
	}

	return &cfg, nil
}

// setDefaults mirrors fetch.DefaultPolicy plus conservative ambient
// defaults.
func setDefaults(v *viper.Viper) {
	policy := fetch.DefaultPolicy()

	v.SetDefault("log.level", string(logging.LevelInfo))
	v.SetDefault("log.pretty", false)

	v.SetDefault("redis.addr", "")

	v.SetDefault("fetch.batch_size_days", policy.BatchSizeDays)
	v.SetDefault("fetch.inter_batch_delay_min", policy.InterBatchDelayMin)
	v.SetDefault("fetch.inter_batch_delay_max", policy.InterBatchDelayMax)
	v.SetDefault("fetch.retry_base_delay", policy.RetryBaseDelay)
	v.SetDefault("fetch.max_retry_delay", policy.MaxRetryDelay)
	v.SetDefault("fetch.max_retries", policy.MaxRetries)
	v.SetDefault("fetch.fallback_batch_size_days", policy.FallbackBatchSizeDays)
	v.SetDefault("fetch.fallback_delay_min", policy.FallbackDelayMin)
	v.SetDefault("fetch.fallback_delay_max", policy.FallbackDelayMax)

	v.SetDefault("cache.ttl", 24*time.Hour)

	v.SetDefault("yahoo.user_agent", "kronos-fetch/0.1.0")
	v.SetDefault("yahoo.timeout", 30*time.Second)
}

// Policy converts the fetch section into a fetch.Policy.
func (c *Config) Policy() fetch.Policy {
	return fetch.Policy{
		BatchSizeDays:         c.Fetch.BatchSizeDays,
		InterBatchDelayMin:    c.Fetch.InterBatchDelayMin,
		InterBatchDelayMax:    c.Fetch.InterBatchDelayMax,
		RetryBaseDelay:        c.Fetch.RetryBaseDelay,
		MaxRetryDelay:         c.Fetch.MaxRetryDelay,
		MaxRetries:            c.Fetch.MaxRetries,
		FallbackBatchSizeDays: c.Fetch.FallbackBatchSizeDays,
		FallbackDelayMin:      c.Fetch.FallbackDelayMin,
		FallbackDelayMax:      c.Fetch.FallbackDelayMax,
	}
}

// LoggingConfig converts the log section into a logging.Config.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.Log.Level)
	cfg.Pretty = c.Log.Pretty
	return cfg
}
