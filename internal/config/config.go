package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultManifestURL pins the version manifest this launcher installs.
const DefaultManifestURL = "https://piston-meta.mojang.com/v1/packages/efcc510e525cef0e859b5435f82b6e3193214efc/1.20.4.json"

// DefaultResourcesURL is the base URL assets are fetched from.
const DefaultResourcesURL = "https://resources.download.minecraft.net"

// Config defines the launcher profile and pipeline settings.
type Config struct {
	Username     string      `yaml:"username"`
	Version      string      `yaml:"version"`
	ManifestURL  string      `yaml:"manifest_url"`
	AssetIndexID string      `yaml:"asset_index_id"`
	ResourcesURL string      `yaml:"resources_url"`
	Workers      int         `yaml:"workers"`
	Retry        RetryConfig `yaml:"retry"`
}

// RetryConfig defines retry behavior for HTTP fetches.
type RetryConfig struct {
	Attempts   int           `yaml:"attempts"`
	Backoff    time.Duration `yaml:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Username:     "Username",
		Version:      "1.20.4",
		ManifestURL:  DefaultManifestURL,
		AssetIndexID: "12",
		ResourcesURL: DefaultResourcesURL,
		Workers:      5,
		Retry: RetryConfig{
			Attempts:   3,
			Backoff:    time.Second,
			MaxBackoff: 30 * time.Second,
		},
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	Username     string          `yaml:"username"`
	Version      string          `yaml:"version"`
	ManifestURL  string          `yaml:"manifest_url"`
	AssetIndexID string          `yaml:"asset_index_id"`
	ResourcesURL string          `yaml:"resources_url"`
	Workers      int             `yaml:"workers"`
	Retry        yamlRetryConfig `yaml:"retry"`
}

type yamlRetryConfig struct {
	Attempts   int    `yaml:"attempts"`
	Backoff    string `yaml:"backoff"`
	MaxBackoff string `yaml:"max_backoff"`
}

// LoadFromFile loads configuration from a YAML file, filling unset fields
// with defaults.
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

	if yc.Username != "" {
		cfg.Username = yc.Username
	}
	if yc.Version != "" {
		cfg.Version = yc.Version
	}
	if yc.ManifestURL != "" {
		cfg.ManifestURL = yc.ManifestURL
	}
	if yc.AssetIndexID != "" {
		cfg.AssetIndexID = yc.AssetIndexID
	}
	if yc.ResourcesURL != "" {
		cfg.ResourcesURL = yc.ResourcesURL
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
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
	if yc.Retry.MaxBackoff != "" {
		d, err := time.ParseDuration(yc.Retry.MaxBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.max_backoff: %w", err)
		}
		cfg.Retry.MaxBackoff = d
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables with the
// BAMC_ prefix. A .env file in the working directory is applied first,
// when present.
func (c *Config) LoadFromEnv() error {
	// Missing .env is the normal case.
	_ = godotenv.Load()

	if v := os.Getenv("BAMC_USERNAME"); v != "" {
		c.Username = v
	}
	if v := os.Getenv("BAMC_VERSION"); v != "" {
		c.Version = v
	}
	if v := os.Getenv("BAMC_MANIFEST_URL"); v != "" {
		c.ManifestURL = v
	}
	if v := os.Getenv("BAMC_ASSET_INDEX_ID"); v != "" {
		c.AssetIndexID = v
	}
	if v := os.Getenv("BAMC_RESOURCES_URL"); v != "" {
		c.ResourcesURL = v
	}
	if v := os.Getenv("BAMC_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse BAMC_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("BAMC_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse BAMC_RETRY_ATTEMPTS: %w", err)
		}
		c.Retry.Attempts = n
	}
	if v := os.Getenv("BAMC_RETRY_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse BAMC_RETRY_BACKOFF: %w", err)
		}
		c.Retry.Backoff = d
	}
	if v := os.Getenv("BAMC_RETRY_MAX_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse BAMC_RETRY_MAX_BACKOFF: %w", err)
		}
		c.Retry.MaxBackoff = d
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Username == "" {
		return errors.New("config: username is required")
	}
	if c.Version == "" {
		return errors.New("config: version is required")
	}
	if c.ManifestURL == "" {
		return errors.New("config: manifest_url is required")
	}
	if c.AssetIndexID == "" {
		return errors.New("config: asset_index_id is required")
	}
	if c.ResourcesURL == "" {
		return errors.New("config: resources_url is required")
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	yc := yamlConfig{
		Username:     c.Username,
		Version:      c.Version,
		ManifestURL:  c.ManifestURL,
		AssetIndexID: c.AssetIndexID,
		ResourcesURL: c.ResourcesURL,
		Workers:      c.Workers,
		Retry: yamlRetryConfig{
			Attempts:   c.Retry.Attempts,
			Backoff:    c.Retry.Backoff.String(),
			MaxBackoff: c.Retry.MaxBackoff.String(),
		},
	}
	return yaml.Marshal(yc)
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.Username != "" {
		c.Username = override.Username
	}
	if override.Version != "" {
		c.Version = override.Version
	}
	if override.ManifestURL != "" {
		c.ManifestURL = override.ManifestURL
	}
	if override.AssetIndexID != "" {
		c.AssetIndexID = override.AssetIndexID
	}
	if override.ResourcesURL != "" {
		c.ResourcesURL = override.ResourcesURL
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.Retry.Attempts != 0 {
		c.Retry.Attempts = override.Retry.Attempts
	}
	if override.Retry.Backoff != 0 {
		c.Retry.Backoff = override.Retry.Backoff
	}
	if override.Retry.MaxBackoff != 0 {
		c.Retry.MaxBackoff = override.Retry.MaxBackoff
	}
	return c
}
