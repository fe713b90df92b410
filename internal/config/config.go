// Package config handles refextract configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/inspirehep/refextract/internal/kb"
	"github.com/inspirehep/refextract/internal/record"
)

// Config holds every setting. Fields map to config.yml keys and, through
// envconfig, to REFEXTRACT_* environment variables.
type Config struct {
	// KBs overrides knowledge-base files by kind, e.g. journals: my.kb.
	KBs             map[string]string `yaml:"kbs,omitempty" envconfig:"KBS"`
	ReferenceFormat string            `yaml:"reference_format,omitempty" envconfig:"REFERENCE_FORMAT"`
	StoreDir        string            `yaml:"store_dir,omitempty" envconfig:"STORE_DIR"`
	Workers         int               `yaml:"workers,omitempty" envconfig:"WORKERS"`

	Server ServerConfig `yaml:"server"`
	Fetch  FetchConfig  `yaml:"fetch"`
	PDF    PDFConfig    `yaml:"pdf"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr,omitempty" envconfig:"ADDR"`
}

type FetchConfig struct {
	RatePerSecond float64       `yaml:"rate_per_second,omitempty" envconfig:"RATE_PER_SECOND"`
	Timeout       time.Duration `yaml:"timeout,omitempty" envconfig:"TIMEOUT"`
	UserAgent     string        `yaml:"user_agent,omitempty" envconfig:"USER_AGENT"`
}

type PDFConfig struct {
	MaxPages int `yaml:"max_pages,omitempty" envconfig:"MAX_PAGES"`
}

type LogConfig struct {
	Level string `yaml:"level,omitempty" envconfig:"LEVEL"`
}

const (
	StoreDirName = "refextract"
	RefsFile     = "refs.jsonl"
	CacheDir     = "cache"
	DBFile       = "refs.db"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		ReferenceFormat: record.DefaultFormat,
		StoreDir:        DefaultStoreDir(),
		Workers:         1,
		Server:          ServerConfig{Addr: ":5000"},
		Fetch: FetchConfig{
			RatePerSecond: 2,
			Timeout:       60 * time.Second,
			UserAgent:     "refextract",
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultStoreDir respects XDG_DATA_HOME, defaulting to
// ~/.local/share/refextract.
func DefaultStoreDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return StoreDirName
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, StoreDirName)
}

// RefsPath returns the path to refs.jsonl in a store directory.
func RefsPath(storeDir string) string {
	return filepath.Join(storeDir, RefsFile)
}

// CachePath returns the directory holding the rebuildable index.
func CachePath(storeDir string) string {
	return filepath.Join(storeDir, CacheDir)
}

// DBPath returns the path to refs.db in a store directory.
func DBPath(storeDir string) string {
	return filepath.Join(storeDir, CacheDir, DBFile)
}

// Validate checks the settings that would otherwise fail deep inside a
// run.
func (c *Config) Validate() error {
	if _, err := record.ParseFormat(c.ReferenceFormat); err != nil {
		return fmt.Errorf("%w: reference_format: %v", ErrInvalid, err)
	}
	for name := range c.KBs {
		if _, err := kb.ParseKind(name); err != nil {
			return fmt.Errorf("%w: kbs: %v", ErrInvalid, err)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalid)
	}
	if c.PDF.MaxPages < 0 {
		return fmt.Errorf("%w: pdf.max_pages must not be negative", ErrInvalid)
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("%w: fetch.timeout must not be negative", ErrInvalid)
	}
	if _, err := c.LogLevel(); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	return nil
}

// LogLevel parses Log.Level; empty means info.
func (c *Config) LogLevel() (zapcore.Level, error) {
	if c.Log.Level == "" {
		return zapcore.InfoLevel, nil
	}
	return zapcore.ParseLevel(c.Log.Level)
}

// Overrides returns the knowledge-base sources configured in KBs.
func (c *Config) Overrides() (map[kb.Kind]kb.Source, error) {
	if len(c.KBs) == 0 {
		return nil, nil
	}
	out := make(map[kb.Kind]kb.Source, len(c.KBs))
	for name, path := range c.KBs {
		kind, err := kb.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("%w: kbs: %v", ErrInvalid, err)
		}
		out[kind] = kb.FromFile(ExpandPath(path))
	}
	return out, nil
}

// Save writes the configuration as YAML, creating the directory.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
