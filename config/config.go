package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Environment variables read in addition to the KURAI_ prefixed ones
const (
	EnvTenantURL = "LEXIA_TENANT_URL"
	EnvAPIKey    = "LEXIA_API_KEY"
	EnvTimeout   = "LEXIA_TIMEOUT"
)

// Load loads the configuration from file and environment. Without an
// explicit path a missing config file is not an error. The result is not
// validated so callers can apply overrides before calling Validate.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix("KURAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("lexia.tenant_url", EnvTenantURL)
	_ = v.BindEnv("lexia.api_key", EnvAPIKey)
	_ = v.BindEnv("lexia.timeout", EnvTimeout)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("kurai")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".kurai"))
		}

		v.AddConfigPath("/etc/kurai/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	// LEXIA_TIMEOUT may be given in plain seconds
	normalizeSeconds(v, "lexia.timeout")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("lexia.tenant_url", "")
	v.SetDefault("lexia.api_key", "")
	v.SetDefault("lexia.timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)

	v.SetDefault("output.format", "text")

	// Retries are opt-in
	v.SetDefault("retry.max_retries", 0)
	v.SetDefault("retry.initial_interval", "500ms")
	v.SetDefault("retry.max_interval", "30s")
	v.SetDefault("retry.max_elapsed", "2m")

	v.SetDefault("upload.concurrency", 4)
	v.SetDefault("update.repository", "lexia/kurai")
}

func normalizeSeconds(v *viper.Viper, key string) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return
		}
	}
	v.Set(key, raw+"s")
}

// Validate checks if the configuration is valid. Credentials are checked
// when the client is created so that commands like version work without them.
func (c *Config) Validate() error {
	if c.Lexia.Timeout <= 0 {
		return fmt.Errorf("lexia.timeout must be positive, got %s", c.Lexia.Timeout)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", c.Logging.Format)
	}

	if err := ValidateOutputFormat(c.Output.Format); err != nil {
		return err
	}

	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative, got %d", c.Retry.MaxRetries)
	}
	if c.Retry.MaxRetries > 0 {
		if c.Retry.InitialInterval <= 0 {
			return fmt.Errorf("retry.initial_interval must be positive")
		}
		if c.Retry.MaxInterval < c.Retry.InitialInterval {
			return fmt.Errorf("retry.max_interval (%s) must be at least retry.initial_interval (%s)",
				c.Retry.MaxInterval, c.Retry.InitialInterval)
		}
	}

	if c.Upload.Concurrency < 1 {
		return fmt.Errorf("upload.concurrency must be at least 1, got %d", c.Upload.Concurrency)
	}

	for name, expr := range c.Filter.Presets {
		if strings.TrimSpace(expr) == "" {
			return fmt.Errorf("filter preset %q has an empty expression", name)
		}
	}

	return nil
}

// ValidateOutputFormat checks an --output value
func ValidateOutputFormat(format string) error {
	switch format {
	case "text", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("invalid output format: %s (must be 'text', 'json' or 'yaml')", format)
	}
}
