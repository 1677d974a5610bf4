package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Output formats supported by the catalog CLI.
const (
	OutputJSON  = "json"
	OutputTable = "table"
)

// DefaultConfigDir returns the default config directory (~/.flowcatalog).
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".flowcatalog"), nil
}

// DefaultConfigPath returns the default config file path (~/.flowcatalog/config.yml).
func DefaultConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yml"), nil
}

// CLIConfig holds the catalog CLI configuration.
type CLIConfig struct {
	DatabaseURL string `yaml:"database_url,omitempty"`
	PageSize    int    `yaml:"page_size,omitempty"`
	Output      string `yaml:"output,omitempty"`
}

// Validate checks that the configuration has required fields for operation.
func (c *CLIConfig) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("database_url is required")
	}
	if c.PageSize < 0 {
		return errors.New("page_size must not be negative")
	}
	switch c.Output {
	case "", OutputJSON, OutputTable:
	default:
		return fmt.Errorf("output must be %q or %q, got %q", OutputJSON, OutputTable, c.Output)
	}
	return nil
}

// OutputFormat returns the configured output, defaulting to table.
func (c *CLIConfig) OutputFormat() string {
	if c.Output == "" {
		return OutputTable
	}
	return c.Output
}

// Load reads the configuration from the given path.
// If the file does not exist, an empty config is returned.
func Load(path string) (*CLIConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &CLIConfig{}, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadDefault loads the configuration from the default path.
func LoadDefault() (*CLIConfig, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Save writes the configuration to the given path, creating directories as needed.
func (c *CLIConfig) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	// The database URL may carry credentials.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// SaveDefault saves the configuration to the default path.
func (c *CLIConfig) SaveDefault() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.Save(path)
}
