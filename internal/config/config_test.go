package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfig_Validate tests configuration validation
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		check   func(*testing.T, *Config)
		wantErr bool
	}{
		{
			name: "valid config",
			modify: func(c *Config) {
				c.Concurrency.Workers = 4
				c.Concurrency.Model = "semaphore"
				c.HTTP.Timeout = 30 * time.Second
				c.Cache.TTL = 24 * time.Hour
				c.Extract.CategoryMaxLen = 50
			},
		},
		{
			name: "workers below minimum falls back to default",
			modify: func(c *Config) {
				c.Concurrency.Workers = 0
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultWorkers, c.Concurrency.Workers)
			},
		},
		{
			name: "empty concurrency model defaults to pool",
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "pool", c.Concurrency.Model)
			},
		},
		{
			name: "unknown concurrency model is rejected",
			modify: func(c *Config) {
				c.Concurrency.Model = "fibers"
			},
			wantErr: true,
		},
		{
			name: "timeout below minimum falls back to default",
			modify: func(c *Config) {
				c.HTTP.Timeout = 100 * time.Millisecond
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultHTTPTimeout, c.HTTP.Timeout)
			},
		},
		{
			name: "cache TTL below minimum falls back to default",
			modify: func(c *Config) {
				c.Cache.TTL = 30 * time.Second
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultCacheTTL, c.Cache.TTL)
			},
		},
		{
			name: "category max len below minimum falls back to default",
			modify: func(c *Config) {
				c.Extract.CategoryMaxLen = 0
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultCategoryMaxLen, c.Extract.CategoryMaxLen)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			if tt.modify != nil {
				tt.modify(cfg)
			}
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

// TestDefault tests default configuration
func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, DefaultWorkers, cfg.Concurrency.Workers)
	assert.Equal(t, DefaultConcurrencyModel, cfg.Concurrency.Model)

	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTP.Timeout)
	assert.Equal(t, DefaultMaxRetries, cfg.HTTP.MaxRetries)

	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, DefaultCacheTTL, cfg.Cache.TTL)
	assert.Contains(t, cfg.Cache.Directory, "cache")

	assert.Equal(t, DefaultCategoryMaxLen, cfg.Extract.CategoryMaxLen)

	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Logging.Format)
}

// TestConfigDir tests config directory path
func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	assert.NotEmpty(t, dir)
	assert.Contains(t, dir, "relnotes")
}

// TestCacheDir tests cache directory path
func TestCacheDir(t *testing.T) {
	dir := CacheDir()
	assert.NotEmpty(t, dir)
	assert.True(t, strings.HasSuffix(dir, "cache"))
}

// TestConfigFilePath tests config file path
func TestConfigFilePath(t *testing.T) {
	path := ConfigFilePath()
	assert.Contains(t, path, "config.yaml")
}

// TestEnsureConfigDir tests creating config directory
func TestEnsureConfigDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, EnsureConfigDir())

	info, err := os.Stat(ConfigDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// TestEnsureCacheDir tests creating cache directory
func TestEnsureCacheDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, EnsureCacheDir())

	info, err := os.Stat(CacheDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// TestLoad_MissingConfigFile tests loading with no config file
func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	cfg, _, err := LoadWithViper()
	require.NoError(t, err, "absent config file is fine")
	require.NotNil(t, cfg)
	assert.Equal(t, DefaultWorkers, cfg.Concurrency.Workers)
}

// TestLoad_WithValidConfigFile tests loading with valid config file
func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tmpDir := t.TempDir()

	configContent := `
concurrency:
  workers: 8
  model: semaphore

logging:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(configContent), 0644))
	chdir(t, tmpDir)

	cfg, _, err := LoadWithViper()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Concurrency.Workers)
	assert.Equal(t, "semaphore", cfg.Concurrency.Model)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

// TestLoad_WithInvalidConfigFile tests loading with invalid config file
func TestLoad_WithInvalidConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte("invalid: yaml: content: ["), 0644))
	chdir(t, tmpDir)

	cfg, _, err := LoadWithViper()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

// TestLoadWithEnvironmentVariable tests env var override
func TestLoadWithEnvironmentVariable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RELNOTES_LOGGING_LEVEL", "debug")
	chdir(t, t.TempDir())

	cfg, _, err := LoadWithViper()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { os.Chdir(wd) })
	require.NoError(t, os.Chdir(dir))
}
