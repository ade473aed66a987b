package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/stockmap/internal/cmd/application"
	"github.com/agentstation/stockmap/pkg/constants"
	"github.com/agentstation/stockmap/pkg/errors"
)

// EnvPrefix prefixes every environment variable stockmap reads.
const EnvPrefix = "STOCKMAP"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Output  string

	// Config file
	ConfigFile string

	// Paths
	DataDir      string
	OutputDir    string
	DBPath       string
	RegistryFile string
	POSFile      string
	ListingsFile string
	OrdersFile   string
	MetricsFile  string

	// Run settings
	Concurrency int
	StaleAfter  time.Duration
	Schedule    string
	LocationID  string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// defaults are applied before the config file and environment.
var defaults = map[string]any{
	"data_dir":    "inv_data",
	"output_dir":  ".",
	"db_path":     "appdata/stockmap.db",
	"concurrency": constants.DefaultConcurrency,
	"stale_after": constants.DefaultStaleAfter,
	"log_format":  "auto",
	"log_output":  "stderr",
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (STOCKMAP_DATA_DIR, ...)
// 3. .env files
// 4. Config file (configFile, or .stockmap.yaml in the working or home directory)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "cannot read "+configFile, err)
		}
	} else {
		v.SetConfigType("yaml")
		v.SetConfigName(".stockmap")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		// Missing default config files are fine
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("config", "cannot read config file", err)
			}
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Output:  v.GetString("output"),

		ConfigFile: v.ConfigFileUsed(),

		DataDir:      v.GetString("data_dir"),
		OutputDir:    v.GetString("output_dir"),
		DBPath:       v.GetString("db_path"),
		RegistryFile: v.GetString("registry_file"),
		POSFile:      v.GetString("pos_file"),
		ListingsFile: v.GetString("listings_file"),
		OrdersFile:   v.GetString("orders_file"),
		MetricsFile:  v.GetString("metrics_file"),

		Concurrency: v.GetInt("concurrency"),
		StaleAfter:  v.GetDuration("stale_after"),
		Schedule:    v.GetString("schedule"),
		LocationID:  v.GetString("location_id"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", v.GetString("log_level")),
		LogFormat: getEnvOrDefault("LOG_FORMAT", v.GetString("log_format")),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", v.GetString("log_output")),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects settings no run could use.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return errors.NewValidationError("concurrency", c.Concurrency, "must be at least 1")
	}
	if c.StaleAfter < 0 {
		return errors.NewValidationError("stale_after", c.StaleAfter, "cannot be negative")
	}
	if c.DBPath == "" {
		return errors.NewValidationError("db_path", c.DBPath, "cannot be empty")
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, output string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if output != "" {
		c.Output = output
	}
}

// Settings returns the run settings commands see.
func (c *Config) Settings() application.Settings {
	return application.Settings{
		DataDir:      c.DataDir,
		OutputDir:    c.OutputDir,
		DBPath:       c.DBPath,
		RegistryFile: c.RegistryFile,
		POSFile:      c.POSFile,
		ListingsFile: c.ListingsFile,
		OrdersFile:   c.OrdersFile,
		Concurrency:  c.Concurrency,
		StaleAfter:   c.StaleAfter,
		Schedule:     c.Schedule,
		MetricsFile:  c.MetricsFile,
		LocationID:   c.LocationID,
		Quiet:        c.Quiet,
		NoColor:      c.NoColor,
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
