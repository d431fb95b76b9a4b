package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix namespaces all environment configuration
const envPrefix = "TRACKPULSE"

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`

	// MaxBodyBytes caps the CSV upload size accepted by the analyze endpoints.
	MaxBodyBytes int64 `yaml:"max_body_bytes" envconfig:"MAX_BODY_BYTES" validate:"gt=0"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PipelineConfig carries the track pipeline's processing defaults. These are
// the only runtime options that affect core behavior.
type PipelineConfig struct {
	// MissingAsZero coerces unparsable numeric fields to 0 instead of
	// dropping the row.
	MissingAsZero bool `yaml:"missing_as_zero" envconfig:"MISSING_AS_ZERO"`

	// ShowQuality flags records whose rate metrics were zeroed by a zero
	// play count.
	ShowQuality bool `yaml:"show_quality" envconfig:"SHOW_QUALITY"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// Default returns the configuration with every field at its default value.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodyBytes:    16 << 20,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{Enabled: true, RPS: 100, Burst: 50},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/trackpulse.log",
		},
		Pipeline: PipelineConfig{MissingAsZero: true, ShowQuality: true},
		Paths: PathsConfig{
			DataDir:    "data",
			ReportsDir: "data/reports",
			LogsDir:    "logs",
		},
	}
}

// Load builds the configuration in three layers: compiled defaults, then the
// optional YAML file (TRACKPULSE_CONFIG_FILE or ./trackpulse.yaml), then
// environment variables. Later layers win.
func Load() (*Config, error) {
	cfg := Default()

	if path := configFilePath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := overlayFromFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration with struct-tag rules
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// Options returns the pipeline options pair as (missingAsZero, showQuality)
func (p PipelineConfig) Options() (bool, bool) {
	return p.MissingAsZero, p.ShowQuality
}

// configFilePath resolves the optional YAML config file location
func configFilePath() string {
	if path := os.Getenv(envPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}
	return "trackpulse.yaml"
}

// overlayFromFile merges YAML file values over the current configuration
func overlayFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}
