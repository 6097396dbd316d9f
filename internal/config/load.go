package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the config file when --config is not given.
const EnvConfigPath = "CLOUDWEAVE_CONFIG"

// DefaultPath returns ~/.cloudweave/config.yaml, or "" if there is no home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cloudweave", "config.yaml")
}

// Load resolves the config file (path, then $CLOUDWEAVE_CONFIG, then
// DefaultPath), applies environment overrides and validates the result.
// An explicitly named file must exist; the default one is optional.
func Load(path string) (*Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultPath()
		explicit = false
	}

	cfg := Default()
	if path != "" {
		err := cfg.mergeFile(path)
		switch {
		case err == nil:
		case !explicit && errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.fillPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadFile reads and validates a config file without consulting the environment.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}
	cfg.fillPaths()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to unmarshal yaml: %w", err)
	}
	return nil
}

func (c *Config) fillPaths() {
	if c.Preferences.Path != "" || c.Preferences.InMemory {
		return
	}
	home, err := os.UserHomeDir()
	if err != nil {
		c.Preferences.InMemory = true
		return
	}
	c.Preferences.Path = filepath.Join(home, DefaultPreferencesDir)
}
