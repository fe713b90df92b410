// Package integration provides end-to-end tests for the refextract command.
package integration

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

var (
	binary     string
	binaryOnce sync.Once
	binaryErr  error
)

// getBinary builds refextract once and returns its path.
func getBinary(t *testing.T) string {
	t.Helper()
	binaryOnce.Do(func() {
		_, filename, _, ok := runtime.Caller(0)
		if !ok {
			binaryErr = os.ErrInvalid
			return
		}
		moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))

		tmpDir, err := os.MkdirTemp("", "refextract-test-*")
		if err != nil {
			binaryErr = err
			return
		}
		binary = filepath.Join(tmpDir, "refextract")

		cmd := exec.Command("go", "build", "-o", binary, "./cmd/refextract")
		cmd.Dir = moduleRoot
		if output, err := cmd.CombinedOutput(); err != nil {
			binaryErr = &buildError{output: string(output), err: err}
		}
	})
	if binaryErr != nil {
		t.Fatalf("failed to build refextract: %v", binaryErr)
	}
	return binary
}

type buildError struct {
	output string
	err    error
}

func (e *buildError) Error() string {
	return e.err.Error() + ": " + e.output
}

const paper = `On the things we cite
1 Introduction
As shown in [1] and [2].
References
[1] S. Weinberg, Phys. Rev. Lett. 19 (1967) 1264
[2] R. Bousso, JHEP 9906:028 (1999)
Acknowledgements
We thank everyone.
`

// setupWorkspace creates a directory with a config file pointing the
// store inside it, and a text paper.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	configDir := filepath.Join(dir, "config", "refextract")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	cfg := "store_dir: " + filepath.Join(dir, "store") + "\nlog:\n  level: error\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yml"), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "paper.txt"), []byte(paper), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

// run executes refextract in dir and returns stdout, stderr and the exit code.
func run(t *testing.T, dir string, args ...string) (string, string, int) {
	t.Helper()
	cmd := exec.Command(getBinary(t), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "XDG_CONFIG_HOME="+filepath.Join(dir, "config"))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("running refextract: %v", err)
	}
	return stdout.String(), stderr.String(), code
}

type extractResult struct {
	Source     string                `json:"source"`
	References []map[string][]string `json:"references"`
	Stored     int                   `json:"stored"`
}

func decode(t *testing.T, out string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, out)
	}
}

func TestLine(t *testing.T) {
	dir := setupWorkspace(t)
	out, stderr, code := run(t, dir, "line", "[1] S. Weinberg, Phys. Rev. Lett. 19 (1967) 1264")
	if code != 0 {
		t.Fatalf("line exit code = %d\nstderr: %s", code, stderr)
	}

	var res extractResult
	decode(t, out, &res)
	if len(res.References) != 1 {
		t.Fatalf("references = %v, want 1", res.References)
	}
	ref := res.References[0]
	if ref["journal_title"][0] != "Phys. Rev. Lett." || ref["journal_volume"][0] != "19" {
		t.Errorf("reference = %v", ref)
	}
}

func TestText(t *testing.T) {
	dir := setupWorkspace(t)
	out, stderr, code := run(t, dir, "text", "paper.txt")
	if code != 0 {
		t.Fatalf("text exit code = %d\nstderr: %s", code, stderr)
	}

	var res extractResult
	decode(t, out, &res)
	if len(res.References) != 2 {
		t.Fatalf("references = %v, want 2", res.References)
	}
	if got := res.References[1]["linemarker"]; len(got) != 1 || got[0] != "2" {
		t.Errorf("second linemarker = %v, want [2]", got)
	}
}

func TestFile_ExitCodes(t *testing.T) {
	dir := setupWorkspace(t)
	if err := os.WriteFile(filepath.Join(dir, "page.html"), []byte("<!DOCTYPE html><html><body>hi</body></html>"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		args []string
		want int
	}{
		{[]string{"file", "paper.txt"}, 0},
		{[]string{"file", "missing.pdf"}, 4},
		{[]string{"file", "page.html"}, 3},
		{[]string{"journal", "no journal in here"}, 3},
	}
	for _, tt := range tests {
		out, _, code := run(t, dir, tt.args...)
		if code != tt.want {
			t.Errorf("refextract %s exit code = %d, want %d\nOutput: %s", strings.Join(tt.args, " "), code, tt.want, out)
		}
		if code != 0 && !strings.Contains(out, `"error"`) {
			t.Errorf("refextract %s output = %s, want a JSON error", strings.Join(tt.args, " "), out)
		}
	}
}

func TestJournal(t *testing.T) {
	dir := setupWorkspace(t)
	out, stderr, code := run(t, dir, "journal", "Phys. Rev. Lett. 19 (1967) 1264")
	if code != 0 {
		t.Fatalf("journal exit code = %d\nstderr: %s", code, stderr)
	}
	var el struct {
		Title  string `json:"title"`
		Volume string `json:"volume"`
		Year   string `json:"year"`
	}
	decode(t, out, &el)
	if el.Title != "Phys. Rev. Lett." || el.Volume != "19" || el.Year != "1967" {
		t.Errorf("journal = %+v", el)
	}
}

func TestStore(t *testing.T) {
	dir := setupWorkspace(t)

	out, stderr, code := run(t, dir, "file", "--store", "paper.txt")
	if code != 0 {
		t.Fatalf("file --store exit code = %d\nstderr: %s", code, stderr)
	}
	var res extractResult
	decode(t, out, &res)
	if res.Stored != 2 {
		t.Errorf("stored = %d, want 2", res.Stored)
	}

	// storing the same source again replaces it
	if _, stderr, code := run(t, dir, "store", "add", "paper.txt"); code != 0 {
		t.Fatalf("store add exit code = %d\nstderr: %s", code, stderr)
	}

	out, stderr, code = run(t, dir, "store", "rebuild")
	if code != 0 {
		t.Fatalf("store rebuild exit code = %d\nstderr: %s", code, stderr)
	}
	var rebuilt struct {
		References int `json:"references"`
		Sources    int `json:"sources"`
	}
	decode(t, out, &rebuilt)
	if rebuilt.References != 2 || rebuilt.Sources != 1 {
		t.Errorf("rebuild = %+v, want 2 references from 1 source", rebuilt)
	}

	out, stderr, code = run(t, dir, "store", "search", "Bousso")
	if code != 0 {
		t.Fatalf("store search exit code = %d\nstderr: %s", code, stderr)
	}
	var found []struct {
		ID     string              `json:"id"`
		Record map[string][]string `json:"record"`
	}
	decode(t, out, &found)
	if len(found) != 1 || found[0].Record["linemarker"][0] != "2" {
		t.Errorf("search = %+v, want the second reference", found)
	}

	out, _, _ = run(t, dir, "store", "list", "--limit", "1")
	var listed []json.RawMessage
	decode(t, out, &listed)
	if len(listed) != 1 {
		t.Errorf("list --limit 1 returned %d references", len(listed))
	}
}

func TestKBCheck(t *testing.T) {
	dir := setupWorkspace(t)
	out, stderr, code := run(t, dir, "kb", "check")
	if code != 0 {
		t.Fatalf("kb check exit code = %d\nstderr: %s", code, stderr)
	}
	var infos []struct {
		Kind    string `json:"kind"`
		Entries int    `json:"entries"`
	}
	decode(t, out, &infos)
	if len(infos) != 8 {
		t.Fatalf("kb check listed %d knowledge bases, want 8", len(infos))
	}
	for _, info := range infos {
		if info.Entries == 0 {
			t.Errorf("%s has no entries", info.Kind)
		}
	}

	badKB := filepath.Join(dir, "bad.kb")
	if err := os.WriteFile(badKB, []byte("no separator here\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cmd := exec.Command(getBinary(t), "kb", "check")
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"XDG_CONFIG_HOME="+filepath.Join(dir, "config"),
		"REFEXTRACT_KBS=journals:"+badKB,
	)
	err := cmd.Run()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 3 {
		t.Errorf("kb check with a broken kb error = %v, want exit code 3", err)
	}
}

func TestConfig(t *testing.T) {
	dir := setupWorkspace(t)
	out, stderr, code := run(t, dir, "config")
	if code != 0 {
		t.Fatalf("config exit code = %d\nstderr: %s", code, stderr)
	}
	var cfg map[string]any
	decode(t, out, &cfg)
	if cfg["store_dir"] != filepath.Join(dir, "store") {
		t.Errorf("store_dir = %v", cfg["store_dir"])
	}

	bad := filepath.Join(dir, "bad.yml")
	if err := os.WriteFile(bad, []byte("workers: -3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, code := run(t, dir, "--config", bad, "line", "x"); code != 2 {
		t.Errorf("bad config exit code = %d, want 2", code)
	}
}
