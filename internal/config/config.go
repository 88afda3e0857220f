package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Port         int    `yaml:"port"`
	MetricsPort  int    `yaml:"metrics_port"`
	DatabasePath string `yaml:"database_path"`
	AuthSecret   string `yaml:"auth_secret"`

	Transaction struct {
		Attempts  int `yaml:"attempts"`
		BackoffMS int `yaml:"backoff_ms"`
	} `yaml:"transaction"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{
		Port:         8080,
		MetricsPort:  9090,
		DatabasePath: "tillpoint.db",
	}
	cfg.Transaction.Attempts = 5
	cfg.Transaction.BackoffMS = 25
	return cfg
}

// Load reads the yaml configuration file, falling back to defaults for any
// field the file omits. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}
