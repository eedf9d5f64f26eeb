package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Lexia   LexiaConfig   `mapstructure:"lexia"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
	Retry   RetryConfig   `mapstructure:"retry"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Update  UpdateConfig  `mapstructure:"update"`
}

// LexiaConfig holds the tenant connection details
type LexiaConfig struct {
	TenantURL string        `mapstructure:"tenant_url"`
	APIKey    string        `mapstructure:"api_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// OutputConfig controls how command results are printed
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// RetryConfig bounds caller-side retries of rate limited and service errors.
// MaxRetries 0 disables retrying.
type RetryConfig struct {
	MaxRetries      int           `mapstructure:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	MaxElapsed      time.Duration `mapstructure:"max_elapsed"`
}

// FilterConfig contains named filter expressions usable with --preset
type FilterConfig struct {
	Presets map[string]string `mapstructure:"presets"`
}

// UploadConfig contains settings for multi-file uploads
type UploadConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// UpdateConfig points the self-updater at a release repository
type UpdateConfig struct {
	Repository string `mapstructure:"repository"`
}
