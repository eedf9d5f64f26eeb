package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kurai.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvTenantURL, "")
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvTimeout, "")
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
lexia:
  tenant_url: https://api.cloud.lexia.la
  api_key: lx-abc
  timeout: 45s
logging:
  level: debug
  format: json
output:
  format: yaml
retry:
  max_retries: 3
filter:
  presets:
    pending: 'status == "pending"'
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.cloud.lexia.la", cfg.Lexia.TenantURL)
	assert.Equal(t, "lx-abc", cfg.Lexia.APIKey)
	assert.Equal(t, 45*time.Second, cfg.Lexia.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, 3, cfg.Retry.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.InitialInterval)
	assert.Equal(t, `status == "pending"`, cfg.Filter.Presets["pending"])
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "{}\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Empty(t, cfg.Lexia.TenantURL)
	assert.Empty(t, cfg.Lexia.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Lexia.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.True(t, cfg.Logging.Color)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Zero(t, cfg.Retry.MaxRetries)
	assert.Equal(t, 4, cfg.Upload.Concurrency)
	assert.Equal(t, "lexia/kurai", cfg.Update.Repository)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
lexia:
  tenant_url: https://file.example
  api_key: from-file
`)
	t.Setenv(EnvTenantURL, "https://env.example")
	t.Setenv(EnvAPIKey, "from-env")
	t.Setenv(EnvTimeout, "12")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example", cfg.Lexia.TenantURL)
	assert.Equal(t, "from-env", cfg.Lexia.APIKey)
	assert.Equal(t, 12*time.Second, cfg.Lexia.Timeout)
}

func TestLoad_TimeoutDurationFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTimeout, "1m30s")

	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Lexia.Timeout)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config")
}

func TestLoad_NoFileInSearchPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Lexia.Timeout)
}

func TestLoad_InvalidValuesLeftToValidate(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "logging:\n  level: verbose\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid logging level: verbose")

	cfg.Logging.Level = "debug"
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Lexia:   LexiaConfig{Timeout: 30 * time.Second},
			Logging: LoggingConfig{Level: "info", Format: "console"},
			Output:  OutputConfig{Format: "text"},
			Retry:   RetryConfig{InitialInterval: time.Second, MaxInterval: 10 * time.Second},
			Upload:  UploadConfig{Concurrency: 1},
		}
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			modify: func(*Config) {},
		},
		{
			name:    "zero timeout",
			modify:  func(c *Config) { c.Lexia.Timeout = 0 },
			wantErr: "lexia.timeout must be positive",
		},
		{
			name:    "bad log format",
			modify:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "invalid logging format: xml",
		},
		{
			name:    "bad output format",
			modify:  func(c *Config) { c.Output.Format = "csv" },
			wantErr: "invalid output format: csv",
		},
		{
			name:    "negative retries",
			modify:  func(c *Config) { c.Retry.MaxRetries = -1 },
			wantErr: "retry.max_retries must not be negative",
		},
		{
			name: "inverted retry intervals",
			modify: func(c *Config) {
				c.Retry.MaxRetries = 2
				c.Retry.MaxInterval = time.Millisecond
			},
			wantErr: "retry.max_interval",
		},
		{
			name: "intervals ignored when retries disabled",
			modify: func(c *Config) {
				c.Retry.InitialInterval = 0
				c.Retry.MaxInterval = 0
			},
		},
		{
			name:    "zero concurrency",
			modify:  func(c *Config) { c.Upload.Concurrency = 0 },
			wantErr: "upload.concurrency must be at least 1",
		},
		{
			name:    "empty preset",
			modify:  func(c *Config) { c.Filter.Presets = map[string]string{"x": " "} },
			wantErr: `filter preset "x" has an empty expression`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
