package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "refextract"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// EnvPrefix prefixes every environment variable.
	EnvPrefix = "REFEXTRACT"
)

// globalConfigCache caches the loaded config.
var globalConfigCache *Config

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/refextract/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// Load returns the configuration from the global config file. See
// LoadFile.
func Load() (*Config, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}
	cfg, err := LoadFile(GlobalConfigPath())
	if err != nil {
		return nil, err
	}
	globalConfigCache = cfg
	return cfg, nil
}

// LoadFile builds the configuration in layers: defaults, then the YAML
// file at path (a missing file is fine), then a .env file in the working
// directory and finally REFEXTRACT_* environment variables.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalid, path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	_ = godotenv.Load()
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("%w: environment: %v", ErrInvalid, err)
	}

	cfg.StoreDir = ExpandPath(cfg.StoreDir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResetGlobalConfigCache clears the cached config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}
