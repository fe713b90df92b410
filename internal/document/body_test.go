package document

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestBody_Text(t *testing.T) {
	path := writeFile(t, "refs.txt", "References\r\n[1] S. Weinberg\n[2] R. Bousso\n")
	got, err := Body(path, 0)
	if err != nil {
		t.Fatalf("Body() error = %v", err)
	}
	want := []string{"References", "[1] S. Weinberg", "[2] R. Bousso"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Body() = %q, want %q", got, want)
	}
}

func TestBody_NotFound(t *testing.T) {
	for _, path := range []string{filepath.Join(t.TempDir(), "missing.pdf"), t.TempDir()} {
		_, err := Body(path, 0)
		if !IsNotAvailable(err) {
			t.Errorf("Body(%q) error = %v, want ErrFullTextNotAvailable", path, err)
		}
	}
}

func TestBody_UnknownType(t *testing.T) {
	path := writeFile(t, "page.html", "<!DOCTYPE html><html><body><p>[1] foo</p></body></html>")
	_, err := Body(path, 0)
	if !errors.Is(err, ErrUnknownDocumentType) {
		t.Fatalf("Body() error = %v, want ErrUnknownDocumentType", err)
	}
	var te *TypeError
	if !errors.As(err, &te) || te.Path != path {
		t.Errorf("Body() error = %#v, want *TypeError for %q", err, path)
	}
	if !strings.Contains(err.Error(), "text/html") {
		t.Errorf("Body() error = %q, want it to name text/html", err)
	}
}

func TestLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{"a\nb\n", []string{"a", "b"}},
		{"a\r\n\r\nb", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		if got := Lines(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Lines(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTrimPDF(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"junk%PDF-1.4 body %%EOF", "%PDF-1.4 body %%EOF"},
		{"%PDF-1.4 a %%EOF b %%EOF trailing junk", "%PDF-1.4 a %%EOF b %%EOF"},
		{"%PDF-1.4 truncated", "%PDF-1.4 truncated"},
		{"%%EOF before %PDF-1.4 x", "%PDF-1.4 x"},
		{"plain text", "plain text"},
	}
	for _, tt := range tests {
		if got := string(trimPDF([]byte(tt.in))); got != tt.want {
			t.Errorf("trimPDF(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
