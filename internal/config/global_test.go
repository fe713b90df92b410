package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points XDG_CONFIG_HOME at a temp dir and clears the
// environment variables a developer might have set.
func isolate(t *testing.T) string {
	t.Helper()
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, key := range []string{
		"REFEXTRACT_KBS", "REFEXTRACT_REFERENCE_FORMAT", "REFEXTRACT_STORE_DIR", "REFEXTRACT_WORKERS",
		"REFEXTRACT_SERVER_ADDR", "REFEXTRACT_FETCH_RATE_PER_SECOND", "REFEXTRACT_FETCH_TIMEOUT",
		"REFEXTRACT_FETCH_USER_AGENT", "REFEXTRACT_PDF_MAX_PAGES", "REFEXTRACT_LOG_LEVEL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	configDir := filepath.Join(dir, GlobalConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, GlobalConfigFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	want := "/custom/config/refextract/config.yml"
	if got := GlobalConfigPath(); got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}

	// Test with empty XDG_CONFIG_HOME (should use ~/.config)
	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	want = filepath.Join(home, ".config", "refextract", "config.yml")
	if got := GlobalConfigPath(); got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}
}

func TestLoad_NotFound(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := Default()
	if cfg.ReferenceFormat != def.ReferenceFormat || cfg.Server.Addr != def.Server.Addr || cfg.Workers != 1 {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `
reference_format: "{title},{volume},{page}"
store_dir: /data/refs
workers: 4
kbs:
  journals: /kbs/journals.kb
server:
  addr: ":8080"
fetch:
  rate_per_second: 0.5
  timeout: 30s
pdf:
  max_pages: 40
log:
  level: debug
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ReferenceFormat != "{title},{volume},{page}" {
		t.Errorf("ReferenceFormat = %q", cfg.ReferenceFormat)
	}
	if cfg.StoreDir != "/data/refs" || cfg.Workers != 4 || cfg.Server.Addr != ":8080" {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.Fetch.RatePerSecond != 0.5 || cfg.Fetch.Timeout != 30*time.Second || cfg.PDF.MaxPages != 40 {
		t.Errorf("Load() fetch/pdf = %+v %+v", cfg.Fetch, cfg.PDF)
	}
	// unset keys keep their defaults
	if cfg.Fetch.UserAgent != "refextract" {
		t.Errorf("Fetch.UserAgent = %q, want default", cfg.Fetch.UserAgent)
	}
	if cfg.KBs["journals"] != "/kbs/journals.kb" {
		t.Errorf("KBs = %v", cfg.KBs)
	}

	// cached until reset
	writeConfig(t, dir, "workers: 9\n")
	again, _ := Load()
	if again != cfg {
		t.Error("Load() did not return the cached config")
	}
}

func TestLoad_Environment(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "workers: 4\nserver:\n  addr: \":8080\"\n")
	t.Setenv("REFEXTRACT_WORKERS", "8")
	t.Setenv("REFEXTRACT_SERVER_ADDR", ":9090")
	t.Setenv("REFEXTRACT_FETCH_TIMEOUT", "5s")
	t.Setenv("REFEXTRACT_KBS", "books:/kbs/books.kb")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workers != 8 || cfg.Server.Addr != ":9090" || cfg.Fetch.Timeout != 5*time.Second {
		t.Errorf("Load() = %+v, want environment to win", cfg)
	}
	if cfg.KBs["books"] != "/kbs/books.kb" {
		t.Errorf("KBs = %v", cfg.KBs)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"yaml", "workers: [not, a, number"},
		{"format", "reference_format: \"{title} {nope}\""},
		{"kb kind", "kbs:\n  nonsense: x.kb"},
		{"workers", "workers: -1"},
		{"log level", "log:\n  level: loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			writeConfig(t, dir, tt.content)
			if _, err := Load(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Load() error = %v, want ErrInvalid", err)
			}
		})
	}
}
