package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines configuration for the modular CLI.
type Config struct {
	// Bucket is the destination bucket URL, e.g.
	// "file:///home/me/mods?create_dir=true" or "s3://mods-bucket".
	Bucket string `yaml:"bucket"`

	// NexusAPIKey authenticates NexusMods API requests.
	NexusAPIKey string `yaml:"nexus_api_key"`

	// GameBananaUserID selects whose subscriptions to download.
	GameBananaUserID string `yaml:"gb_user_id"`

	// Domains are the NexusMods game domains to process.
	Domains []string `yaml:"domains"`

	// Workers bounds each stage's parallelism. 0 means the available
	// parallelism, clamped to the task count.
	Workers int `yaml:"workers"`

	// Pacing is the per-worker sleep after each API request.
	Pacing time.Duration `yaml:"pacing"`

	// Timeout bounds a single API request.
	Timeout time.Duration `yaml:"timeout"`

	// Retry controls the transfer retry loop.
	Retry RetryConfig `yaml:"retry"`

	// ScraperCookiePath is the cookies file handed to the backup history
	// scraper.
	ScraperCookiePath string `yaml:"scraper_cookie_path"`
}

// RetryConfig defines transfer retry behavior.
type RetryConfig struct {
	Attempts int           `yaml:"attempts"`
	Backoff  time.Duration `yaml:"backoff"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Workers: 0, // derived from available parallelism
		Pacing:  time.Second,
		Timeout: 30 * time.Second,
		Retry: RetryConfig{
			Attempts: 5,
			Backoff:  5 * time.Second,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "modular", "config.yaml"), nil
}

// yamlConfig mirrors Config with string durations for unmarshaling.
type yamlConfig struct {
	Bucket            string          `yaml:"bucket"`
	NexusAPIKey       string          `yaml:"nexus_api_key"`
	GameBananaUserID  string          `yaml:"gb_user_id"`
	Domains           []string        `yaml:"domains"`
	Workers           int             `yaml:"workers"`
	Pacing            string          `yaml:"pacing"`
	Timeout           string          `yaml:"timeout"`
	Retry             yamlRetryConfig `yaml:"retry"`
	ScraperCookiePath string          `yaml:"scraper_cookie_path"`
}

type yamlRetryConfig struct {
	Attempts int    `yaml:"attempts"`
	Backoff  string `yaml:"backoff"`
}

// LoadFromFile loads configuration from a YAML file on top of defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.Bucket != "" {
		cfg.Bucket = yc.Bucket
	}
	if yc.NexusAPIKey != "" {
		cfg.NexusAPIKey = yc.NexusAPIKey
	}
	if yc.GameBananaUserID != "" {
		cfg.GameBananaUserID = yc.GameBananaUserID
	}
	if len(yc.Domains) > 0 {
		cfg.Domains = yc.Domains
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	if yc.Pacing != "" {
		d, err := time.ParseDuration(yc.Pacing)
		if err != nil {
			return Config{}, fmt.Errorf("parse pacing: %w", err)
		}
		cfg.Pacing = d
	}
	if yc.Timeout != "" {
		d, err := time.ParseDuration(yc.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if yc.Retry.Attempts != 0 {
		cfg.Retry.Attempts = yc.Retry.Attempts
	}
	if yc.Retry.Backoff != "" {
		d, err := time.ParseDuration(yc.Retry.Backoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.backoff: %w", err)
		}
		cfg.Retry.Backoff = d
	}
	if yc.ScraperCookiePath != "" {
		cfg.ScraperCookiePath = yc.ScraperCookiePath
	}

	return cfg, nil
}

// LoadFromEnv applies environment variable overrides with the MODULAR_
// prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("MODULAR_BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("MODULAR_NEXUS_API_KEY"); v != "" {
		c.NexusAPIKey = v
	}
	if v := os.Getenv("MODULAR_GB_USER_ID"); v != "" {
		c.GameBananaUserID = v
	}
	if v := os.Getenv("MODULAR_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse MODULAR_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("MODULAR_PACING"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse MODULAR_PACING: %w", err)
		}
		c.Pacing = d
	}
	if v := os.Getenv("MODULAR_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse MODULAR_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("MODULAR_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse MODULAR_RETRY_ATTEMPTS: %w", err)
		}
		c.Retry.Attempts = n
	}
	if v := os.Getenv("MODULAR_RETRY_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse MODULAR_RETRY_BACKOFF: %w", err)
		}
		c.Retry.Backoff = d
	}
	if v := os.Getenv("MODULAR_SCRAPER_COOKIE_PATH"); v != "" {
		c.ScraperCookiePath = v
	}
	return nil
}

// Validate checks the fields every sequence needs.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("config: bucket is required")
	}
	if c.Workers < 0 {
		return errors.New("config: workers must not be negative")
	}
	if c.Retry.Attempts <= 0 {
		return errors.New("config: retry.attempts must be positive")
	}
	if c.Retry.Backoff < 0 {
		return errors.New("config: retry.backoff must not be negative")
	}
	return nil
}

// ValidateNexus checks the fields the NexusMods sequences need on top of
// Validate.
func (c *Config) ValidateNexus() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.NexusAPIKey == "" {
		return errors.New("config: nexus_api_key is required")
	}
	return nil
}

// ValidateGameBanana checks the fields the GameBanana sequence needs on top
// of Validate.
func (c *Config) ValidateGameBanana() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.GameBananaUserID == "" {
		return errors.New("config: gb_user_id is required")
	}
	return nil
}

// Merge merges override values into c, returning a new Config. Zero values
// in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.Bucket != "" {
		c.Bucket = override.Bucket
	}
	if override.NexusAPIKey != "" {
		c.NexusAPIKey = override.NexusAPIKey
	}
	if override.GameBananaUserID != "" {
		c.GameBananaUserID = override.GameBananaUserID
	}
	if len(override.Domains) > 0 {
		c.Domains = override.Domains
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.Pacing != 0 {
		c.Pacing = override.Pacing
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	if override.Retry.Attempts != 0 {
		c.Retry.Attempts = override.Retry.Attempts
	}
	if override.Retry.Backoff != 0 {
		c.Retry.Backoff = override.Retry.Backoff
	}
	if override.ScraperCookiePath != "" {
		c.ScraperCookiePath = override.ScraperCookiePath
	}
	return c
}
