package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration shared by the
// launcher and the four stage binaries.
type Config struct {
	Scrape  ScrapeConfig  `yaml:"scrape" envconfig:"SCRAPE"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Status  StatusConfig  `yaml:"status" envconfig:"STATUS"`
}

// ScrapeConfig contains portal access and politeness settings.
type ScrapeConfig struct {
	BaseURL      string `yaml:"base_url" envconfig:"BASE_URL" default:"https://fedresurs.ru" validate:"required,url"`
	Group        string `yaml:"group" envconfig:"GROUP" default:"Leasing" validate:"required"`
	DefaultStart string `yaml:"default_start" envconfig:"DEFAULT_START" default:"2023-04" validate:"required"`
	PageLimit    int    `yaml:"page_limit" envconfig:"PAGE_LIMIT" default:"15" validate:"gt=0"`

	// UserAgent is sent with every browser session; the portal serves an
	// empty shell to obviously headless clients.
	UserAgent string `yaml:"user_agent" envconfig:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"`

	PageLoadTimeout time.Duration `yaml:"page_load_timeout" envconfig:"PAGE_LOAD_TIMEOUT" default:"30s" validate:"gt=0"`
	LoadMoreWait    time.Duration `yaml:"load_more_wait" envconfig:"LOAD_MORE_WAIT" default:"2s"`
	MaxLoadMore     int           `yaml:"max_load_more" envconfig:"MAX_LOAD_MORE" default:"30" validate:"gt=0"`

	// FetchInterval spaces message downloads in stage 3.
	FetchInterval time.Duration `yaml:"fetch_interval" envconfig:"FETCH_INTERVAL" default:"1s"`
	// SaveEvery controls how often stage 3 flushes intermediate results.
	SaveEvery int `yaml:"save_every" envconfig:"SAVE_EVERY" default:"10" validate:"gt=0"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/fedscan.log"`
}

// StatusConfig configures the optional status/metrics endpoint served by the
// launcher while a run is in progress.
type StatusConfig struct {
	Enabled         bool          `yaml:"enabled" envconfig:"ENABLED" default:"false"`
	Listen          string        `yaml:"listen" envconfig:"LISTEN" default:"127.0.0.1:8350"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"5s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"10s" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"5s" validate:"gt=0"`
}

// Load loads configuration from a .env file (if present), environment
// variables and an optional config.yaml. Environment variables win over the
// file; envconfig struct tag defaults fill the rest.
func Load() (*Config, error) {
	// Best effort: a missing .env file is the normal case.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("FEDSCAN", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := findConfigFile(); configFile != "" {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = merge(*fileCfg, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if _, err := time.Parse("2006-01", c.Scrape.DefaultStart); err != nil {
		return fmt.Errorf("scrape.default_start must be YYYY-MM: %w", err)
	}
	return validator.New().Struct(c)
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// merge overlays env config on top of file config. Only fields envconfig
// left at their zero value fall back to the file.
func merge(fileCfg, envCfg Config) Config {
	out := envCfg
	if out.Scrape.BaseURL == "" {
		out.Scrape.BaseURL = fileCfg.Scrape.BaseURL
	}
	if out.Scrape.Group == "" {
		out.Scrape.Group = fileCfg.Scrape.Group
	}
	if out.Scrape.DefaultStart == "" {
		out.Scrape.DefaultStart = fileCfg.Scrape.DefaultStart
	}
	if out.Scrape.UserAgent == "" {
		out.Scrape.UserAgent = fileCfg.Scrape.UserAgent
	}
	if out.Logging.Level == "" {
		out.Logging.Level = fileCfg.Logging.Level
	}
	if out.Logging.FilePath == "" {
		out.Logging.FilePath = fileCfg.Logging.FilePath
	}
	if out.Status.Listen == "" {
		out.Status.Listen = fileCfg.Status.Listen
	}
	return out
}

// findConfigFile returns the first config file found in the usual locations,
// or empty when only env vars apply.
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns the built-in configuration used when Load fails and the
// caller wants to continue anyway (logging setup in main).
func Default() *Config {
	return &Config{
		Scrape: ScrapeConfig{
			BaseURL:         "https://fedresurs.ru",
			Group:           "Leasing",
			DefaultStart:    "2023-04",
			PageLimit:       15,
			PageLoadTimeout: 30 * time.Second,
			LoadMoreWait:    2 * time.Second,
			MaxLoadMore:     30,
			FetchInterval:   time.Second,
			SaveEvery:       10,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/fedscan.log",
		},
		Status: StatusConfig{
			Enabled:         false,
			Listen:          "127.0.0.1:8350",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
	}
}
