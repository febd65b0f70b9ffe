package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. STAYPULSE_SERVER_PORT
const EnvPrefix = "STAYPULSE"

// ConfigFileEnv names the variable that points at an explicit YAML file
const ConfigFileEnv = EnvPrefix + "_CONFIG_FILE"

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Security   SecurityConfig   `yaml:"security" envconfig:"SECURITY"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Data       DataConfig       `yaml:"data" envconfig:"DATA"`
	Thresholds ThresholdsConfig `yaml:"thresholds" envconfig:"THRESHOLDS"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" envconfig:"TELEMETRY"`
	WebSocket  WebSocketConfig  `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// DataConfig locates the listings source
type DataConfig struct {
	// Source is a CSV or XLSX file, or a directory holding exports
	Source string `yaml:"source" envconfig:"SOURCE"`
	// Sheet is only used for Excel sources; empty selects the first sheet
	Sheet string `yaml:"sheet" envconfig:"SHEET"`
}

// ThresholdsConfig holds the business thresholds used by cleaning and views
type ThresholdsConfig struct {
	MinNightsQuantile float64 `yaml:"min_nights_quantile" envconfig:"MIN_NIGHTS_QUANTILE"`
	BudgetTolerance   float64 `yaml:"budget_tolerance" envconfig:"BUDGET_TOLERANCE"`
	NightsTolerance   int     `yaml:"nights_tolerance" envconfig:"NIGHTS_TOLERANCE"`
	TopN              int     `yaml:"top_n" envconfig:"TOP_N"`
	PriceBins         int     `yaml:"price_bins" envconfig:"PRICE_BINS"`
	AvailabilityBins  int     `yaml:"availability_bins" envconfig:"AVAILABILITY_BINS"`
	ReviewsBins       int     `yaml:"reviews_bins" envconfig:"REVIEWS_BINS"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	TracesExporter string `yaml:"traces_exporter" envconfig:"TRACES_EXPORTER"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`

	// RuntimeInterval is how often Go runtime gauges are sampled; zero disables them
	RuntimeInterval time.Duration `yaml:"runtime_interval" envconfig:"RUNTIME_INTERVAL"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
	MaxMessageSize  int64         `yaml:"max_message_size" envconfig:"MAX_MESSAGE_SIZE"`
}

// Load builds the configuration from defaults, the discovered config file and
// the environment, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file. An empty path falls back to
// STAYPULSE_CONFIG_FILE and then to the usual locations.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(ConfigFileEnv)
		explicit = path != ""
	}
	if !explicit {
		path = getConfigFilePath()
	}

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	// Environment variables override file values; unset variables leave them alone
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg; keys missing from the file keep
// their current value
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	if strings.TrimSpace(c.Data.Source) == "" {
		return fmt.Errorf("data source must be specified")
	}

	if err := c.Thresholds.validate(); err != nil {
		return err
	}

	switch c.Telemetry.TracesExporter {
	case "none", "stdout":
	default:
		return fmt.Errorf("unknown traces exporter: %q", c.Telemetry.TracesExporter)
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	// Always JSON
	c.Logging.Format = "json"

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

func (t ThresholdsConfig) validate() error {
	if t.MinNightsQuantile <= 0 || t.MinNightsQuantile > 1 {
		return fmt.Errorf("min nights quantile must be in (0, 1]: %v", t.MinNightsQuantile)
	}
	if t.BudgetTolerance < 0 || t.BudgetTolerance >= 1 {
		return fmt.Errorf("budget tolerance must be in [0, 1): %v", t.BudgetTolerance)
	}
	if t.NightsTolerance < 0 {
		return fmt.Errorf("nights tolerance must not be negative: %d", t.NightsTolerance)
	}
	if t.TopN <= 0 {
		return fmt.Errorf("top n must be positive: %d", t.TopN)
	}
	if t.PriceBins <= 0 || t.AvailabilityBins <= 0 || t.ReviewsBins <= 0 {
		return fmt.Errorf("histogram bins must be positive")
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Output:      "console",
			FilePath:    "logs/app.log",
			Development: false,
		},
		Data: DataConfig{
			Source: "Airbnb_Open_Data.csv",
		},
		Thresholds: ThresholdsConfig{
			MinNightsQuantile: 0.99,
			BudgetTolerance:   0.15,
			NightsTolerance:   2,
			TopN:              5,
			PriceBins:         30,
			AvailabilityBins:  20,
			ReviewsBins:       20,
		},
		Telemetry: TelemetryConfig{
			ServiceName:     "staypulse",
			TracesExporter:  "none",
			MetricsEnabled:  true,
			RuntimeInterval: 15 * time.Second,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
			MaxMessageSize:  64 << 10,
		},
	}
}
