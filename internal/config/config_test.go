package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/inspirehep/refextract/internal/kb"
)

func TestPathFunctions(t *testing.T) {
	dir := "/test/store"

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"RefsPath", RefsPath, "/test/store/refs.jsonl"},
		{"CachePath", CachePath, "/test/store/cache"},
		{"DBPath", DBPath, "/test/store/cache/refs.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(dir)
			if got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, dir, got, tt.want)
			}
		})
	}
}

func TestDefaultStoreDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	if got := DefaultStoreDir(); got != "/custom/data/refextract" {
		t.Errorf("DefaultStoreDir() = %q, want %q", got, "/custom/data/refextract")
	}
}

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
	}
	for _, tt := range tests {
		c := &Config{Log: LogConfig{Level: tt.level}}
		got, err := c.LogLevel()
		if err != nil || got != tt.want {
			t.Errorf("LogLevel(%q) = %v, %v, want %v", tt.level, got, err, tt.want)
		}
	}
}

func TestOverrides(t *testing.T) {
	c := &Config{KBs: map[string]string{"journals": "/kbs/j.kb", "books": "/kbs/b.kb"}}
	got, err := c.Overrides()
	if err != nil {
		t.Fatalf("Overrides() error = %v", err)
	}
	if got[kb.KindJournals].Path != "/kbs/j.kb" || got[kb.KindBooks].Path != "/kbs/b.kb" || len(got) != 2 {
		t.Errorf("Overrides() = %+v", got)
	}

	if got, err := (&Config{}).Overrides(); got != nil || err != nil {
		t.Errorf("Overrides() of empty config = %v, %v, want nil", got, err)
	}

	if _, err := (&Config{KBs: map[string]string{"nope": "x"}}).Overrides(); err == nil {
		t.Error("Overrides() with unknown kind error = nil")
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yml")
	want := Default()
	want.Workers = 3
	if err := want.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got.Workers != 3 || got.Fetch.Timeout != want.Fetch.Timeout {
		t.Errorf("LoadFile() = %+v, want %+v", got, want)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty path", "", ""},
		{"absolute path", "/usr/local/bin", "/usr/local/bin"},
		{"relative path", "foo/bar", "foo/bar"},
		{"tilde only", "~", home},
		{"tilde with path", "~/Documents/papers", filepath.Join(home, "Documents/papers")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandPath(tt.input)
			if got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
