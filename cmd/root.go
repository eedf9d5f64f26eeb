package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lexia/kurai/config"
	"github.com/lexia/kurai/filter"
	"github.com/lexia/kurai/lexia"
	"github.com/lexia/kurai/retry"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	client  lexia.API
	retrier *retry.Retrier
	filters *filter.Manager

	// Global flags
	tenantURL  string
	apiKey     string
	timeout    time.Duration
	outputFmt  string
	jsonOutput bool
	retries    int
	logLevel   string

	version   = "dev"
	buildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "kurai",
	Short: "Command line client for the Lexia document automation API",
	Long: `kurai talks to the public API of a Lexia tenant: upload documents and read
their extracted data, work with queues and grids, and send or answer email.

Credentials come from the config file, the LEXIA_TENANT_URL and LEXIA_API_KEY
environment variables, or the --tenant-url and --api-key flags.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initializeApp,
}

// SetVersion sets the build information reported by the version command
func SetVersion(v, built string) {
	version = v
	buildTime = built
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and exits with a
// status derived from the returned error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		printError(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./kurai.yaml, ~/.kurai/kurai.yaml or /etc/kurai/kurai.yaml)")
	flags.StringVar(&tenantURL, "tenant-url", "", "Lexia tenant URL (overrides LEXIA_TENANT_URL)")
	flags.StringVar(&apiKey, "api-key", "", "Lexia API key (overrides LEXIA_API_KEY)")
	flags.DurationVar(&timeout, "timeout", 0, "per-request timeout, e.g. 30s")
	flags.StringVarP(&outputFmt, "output", "o", "", "output format: text, json or yaml")
	flags.BoolVar(&jsonOutput, "json", false, "shorthand for --output json")
	flags.IntVar(&retries, "retries", 0, "retry rate limited and failed requests up to N times")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
}

// initializeApp loads the configuration and sets up logging, retries and filters.
// The API client is created separately by connect.
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return configErrorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("tenant-url") {
		cfg.Lexia.TenantURL = tenantURL
	}
	if flags.Changed("api-key") {
		cfg.Lexia.APIKey = apiKey
	}
	if flags.Changed("timeout") {
		cfg.Lexia.Timeout = timeout
	}
	if flags.Changed("output") {
		cfg.Output.Format = outputFmt
	}
	if jsonOutput {
		cfg.Output.Format = "json"
	}
	if flags.Changed("retries") {
		cfg.Retry.MaxRetries = retries
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = strings.ToLower(logLevel)
	}
	if err := cfg.Validate(); err != nil {
		return configErrorf("invalid configuration: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	retrier = retry.New(retry.Policy{
		MaxRetries:      cfg.Retry.MaxRetries,
		InitialInterval: cfg.Retry.InitialInterval,
		MaxInterval:     cfg.Retry.MaxInterval,
		MaxElapsed:      cfg.Retry.MaxElapsed,
	}, logger)

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filter.Presets); err != nil {
		return configErrorf("invalid filter preset: %w", err)
	}

	return nil
}

// connect creates the API client. Used as PreRunE by commands that call the API.
func connect(cmd *cobra.Command, args []string) error {
	if client != nil {
		return nil
	}

	c, err := lexia.NewClient(lexia.Config{
		TenantURL: cfg.Lexia.TenantURL,
		APIKey:    cfg.Lexia.APIKey,
		Timeout:   cfg.Lexia.Timeout,
	}, logger, lexia.WithUserAgent("kurai/"+version))
	if err != nil {
		return err
	}

	logger.Debug().
		Str("tenant_url", c.BaseURL()).
		Dur("timeout", c.Timeout()).
		Msg("Lexia client ready")

	client = c
	return nil
}

// call runs one API operation under the retry policy
func call(ctx context.Context, op func(ctx context.Context) (lexia.Object, error)) (lexia.Object, error) {
	var result lexia.Object
	err := retrier.Do(ctx, func(ctx context.Context) error {
		var err error
		result, err = op(ctx)
		return err
	})
	return result, err
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Colour only when stderr is a terminal
	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !tty,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// configError marks errors caused by configuration rather than the API
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

func configErrorf(format string, args ...any) error {
	return &configError{err: fmt.Errorf(format, args...)}
}

// inputErrorf reports invalid command line input
func inputErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func isUsageError(err error) bool {
	var u *usageError
	return errors.As(err, &u)
}
