package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values
const (
	// Concurrency defaults
	DefaultWorkers          = 4
	DefaultConcurrencyModel = "pool"

	// HTTP defaults
	DefaultHTTPTimeout = 30 * time.Second
	DefaultMaxRetries  = 3

	// Cache defaults
	DefaultCacheEnabled = true
	DefaultCacheTTL     = 24 * time.Hour

	// Extract defaults
	DefaultCategoryMaxLen = 50

	// Output defaults
	DefaultOutputDir = "."

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".relnotes"
	}
	return filepath.Join(home, ".relnotes")
}

// CacheDir returns the cache directory path
func CacheDir() string {
	return filepath.Join(ConfigDir(), "cache")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Concurrency: ConcurrencyConfig{
			Workers: DefaultWorkers,
			Model:   DefaultConcurrencyModel,
		},
		HTTP: HTTPConfig{
			Timeout:    DefaultHTTPTimeout,
			MaxRetries: DefaultMaxRetries,
		},
		Cache: CacheConfig{
			Enabled:   DefaultCacheEnabled,
			TTL:       DefaultCacheTTL,
			Directory: CacheDir(),
		},
		Extract: ExtractConfig{
			CategoryMaxLen: DefaultCategoryMaxLen,
		},
		Output: OutputConfig{
			Directory: DefaultOutputDir,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
