// Package config loads process configuration from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when the caller passes none.
const DefaultPath = "jobscout.yaml"

type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`

	// ConnString selects and configures the datasource backend.
	ConnString string `yaml:"connection_string"`

	// BatchSize is how many pending jobs one ExecuteBatch call drains.
	BatchSize int `yaml:"batch_size"`

	// Pages is the default number of result pages crawled per platform.
	Pages int `yaml:"pages"`

	// SettleDelay is the fixed wait after each page navigation.
	SettleDelay time.Duration `yaml:"settle_delay"`

	// RefreshRoles are re-scraped on every RefreshInterval tick.
	RefreshRoles    []string      `yaml:"refresh_roles"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	LogFile string `yaml:"log_file"`
}

// Load reads the config file at path (DefaultPath when empty), applies env
// overrides and fills defaults. A missing file is not an error; env vars
// and defaults still apply.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("unable to read config file in config.Load: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unable to parse %s in config.Load: %w", path, err)
		}
	}

	if v := os.Getenv("JOBSCOUT_CONNECTION_STRING"); v != "" {
		cfg.ConnString = v
	}
	if v := os.Getenv("JOBSCOUT_ADDR"); v != "" {
		cfg.Addr = v
	}

	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ConnString == "" {
		cfg.ConnString = "postgres://localhost:5432/jobscout"
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 1
	}
	if cfg.Pages == 0 {
		cfg.Pages = 1
	}
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = 2 * time.Second
	}
	if cfg.LogFile == "" {
		cfg.LogFile = "jobscout.log"
	}

	if cfg.BatchSize < 0 {
		return nil, fmt.Errorf("batch_size must be positive, got %d", cfg.BatchSize)
	}
	if cfg.Pages < 0 {
		return nil, fmt.Errorf("pages must be positive, got %d", cfg.Pages)
	}
	return cfg, nil
}
