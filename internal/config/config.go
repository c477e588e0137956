package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Business  BusinessConfig  `yaml:"business"`
	Tax       TaxConfig       `yaml:"tax"`
	PettyCash PettyCashConfig `yaml:"petty_cash"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
}

// TaxConfig supplies the default tax rate applied to new documents.
type TaxConfig struct {
	DefaultRatePercent float64 `yaml:"default_rate_percent"`
}

// PettyCashConfig names the cash account that petty-cash entries post to.
type PettyCashConfig struct {
	AccountName string `yaml:"account_name"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// Tokens are the accepted bearer tokens. Token issuance lives outside
	// this system; an empty list disables the auth check (demo mode).
	Tokens []string `yaml:"tokens,omitempty"`
}

// StorageConfig locates the backing store.
type StorageConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// Load reads a tally.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new business.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:     businessName,
			Currency: "GBP",
		},
		Tax: TaxConfig{
			DefaultRatePercent: 20,
		},
		PettyCash: PettyCashConfig{
			AccountName: "Petty Cash",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Storage: StorageConfig{
			SQLitePath: "tally.db",
		},
	}
}
