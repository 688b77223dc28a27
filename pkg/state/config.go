package state

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sv2tools/sv2up/pkg/path"
)

// LoadFrom loads configuration from a specific path.
func LoadFrom(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load loads configuration with automatic discovery. Returns nil when
// no config file exists.
func Load(explicit string) (*Config, error) {
	configPath, err := path.FindConfigFile(explicit)
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		return nil, nil
	}
	return LoadFrom(configPath)
}

// Save writes the configuration to the specified path.
func Save(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}

// CreateDefault writes a starter sv2.yaml enabling both daemons on
// mainnet.
func CreateDefault(configPath string) error {
	cfg := &Config{
		Network: "mainnet",
		Daemons: DaemonList{
			{Name: "sv2-tp"},
			{Name: "demand-cli"},
		},
	}
	return Save(cfg, configPath)
}
