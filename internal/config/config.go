package config

import (
	"fmt"
	"time"
)

// Config represents the application configuration
type Config struct {
	Concurrency ConcurrencyConfig `mapstructure:"concurrency" yaml:"concurrency"`
	HTTP        HTTPConfig        `mapstructure:"http" yaml:"http"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache"`
	Extract     ExtractConfig     `mapstructure:"extract" yaml:"extract"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

// ConcurrencyConfig bounds the per-version fetch units in flight.
type ConcurrencyConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
	// Model selects the execution model: "pool" or "semaphore".
	Model string `mapstructure:"model" yaml:"model"`
}

// HTTPConfig contains page-client settings
type HTTPConfig struct {
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent  string        `mapstructure:"user_agent" yaml:"user_agent"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
}

// CacheConfig contains page-cache settings
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Directory string        `mapstructure:"directory" yaml:"directory"`
}

// ExtractConfig tunes the HTML extractors
type ExtractConfig struct {
	// CategoryMaxLen is the longest colon-terminated paragraph still
	// treated as a category label on the consolidated site.
	CategoryMaxLen int `mapstructure:"category_max_len" yaml:"category_max_len"`
}

// OutputConfig contains report output settings
type OutputConfig struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
	Overwrite bool   `mapstructure:"overwrite" yaml:"overwrite"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration and applies defaults for invalid
// values.
func (c *Config) Validate() error {
	if c.Concurrency.Workers < 1 {
		c.Concurrency.Workers = DefaultWorkers
	}
	switch c.Concurrency.Model {
	case "":
		c.Concurrency.Model = DefaultConcurrencyModel
	case "pool", "semaphore":
	default:
		return fmt.Errorf("invalid concurrency.model %q (want pool or semaphore)", c.Concurrency.Model)
	}
	if c.HTTP.Timeout < time.Second {
		c.HTTP.Timeout = DefaultHTTPTimeout
	}
	if c.HTTP.MaxRetries < 1 {
		c.HTTP.MaxRetries = DefaultMaxRetries
	}
	if c.Cache.TTL < time.Minute {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Extract.CategoryMaxLen < 1 {
		c.Extract.CategoryMaxLen = DefaultCategoryMaxLen
	}
	return nil
}
