package kb

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// MaxLineCapacity bounds a single knowledge-base line (1MB).
const MaxLineCapacity = 1024 * 1024

// Source says where one knowledge base comes from. Exactly one of the
// fields is expected to be set; the zero Source means "use the default".
type Source struct {
	// Path names a knowledge-base file, read from FS when FS is set.
	Path string
	FS   fs.FS

	// Pairs are (seek, replacement) entries.
	Pairs [][2]string
	// Lines are raw file lines, for the line-oriented formats.
	Lines []string
	// Rows are pre-split records, for the delimited formats.
	Rows [][]string
}

// FromFile returns a Source reading path from disk.
func FromFile(path string) Source {
	return Source{Path: path}
}

// FromPairs returns a Source holding in-memory (seek, replacement) pairs.
func FromPairs(pairs ...[2]string) Source {
	return Source{Pairs: pairs}
}

// FromMap returns a Source built from a seek to replacement mapping,
// ordered by seek so builds are deterministic.
func FromMap(m map[string]string) Source {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([][2]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, [2]string{k, m[k]})
	}
	return Source{Pairs: pairs}
}

// FromLines returns a Source holding raw knowledge-base lines.
func FromLines(lines ...string) Source {
	return Source{Lines: lines}
}

// FromRows returns a Source holding delimited records.
func FromRows(rows ...[]string) Source {
	return Source{Rows: rows}
}

// IsZero reports whether s selects nothing.
func (s Source) IsZero() bool {
	return s.Path == "" && s.Pairs == nil && s.Lines == nil && s.Rows == nil
}

// Name describes the source in error messages.
func (s Source) Name() string {
	switch {
	case s.Path != "" && s.FS != nil:
		return "embedded:" + s.Path
	case s.Path != "":
		return s.Path
	case s.Pairs != nil:
		return "<pairs>"
	case s.Rows != nil:
		return "<rows>"
	default:
		return "<lines>"
	}
}

// Fingerprint identifies the source value. Two sources with equal
// fingerprints build the same knowledge base.
func (s Source) Fingerprint() [32]byte {
	var buf bytes.Buffer
	field := func(tag string, parts ...string) {
		buf.WriteString(tag)
		for _, p := range parts {
			fmt.Fprintf(&buf, "%d:%s", len(p), p)
		}
		buf.WriteByte(0)
	}
	if s.Path != "" {
		field("path", s.Name())
	}
	for _, p := range s.Pairs {
		field("pair", p[0], p[1])
	}
	for _, l := range s.Lines {
		field("line", l)
	}
	for _, r := range s.Rows {
		field("row", r...)
	}
	return blake2b.Sum256(buf.Bytes())
}

func (s Source) open() (io.ReadCloser, error) {
	if s.FS != nil {
		return s.FS.Open(s.Path)
	}
	return os.Open(s.Path)
}

// readLines returns the lines of a file source, or the in-memory lines.
func (s Source) readLines() ([]string, error) {
	if s.Path == "" {
		return s.Lines, nil
	}
	f, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("opening kb %s: %w", s.Name(), err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineCapacity)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading kb %s: %w", s.Name(), err)
	}
	return lines, nil
}

// readPairs returns (seek, replacement) entries. File and line sources use
// the "seek---replacement" format; comment and blank lines are skipped and
// anything else is a FormatError.
func (s Source) readPairs() ([][2]string, error) {
	if s.Pairs != nil {
		return s.Pairs, nil
	}
	lines, err := s.readLines()
	if err != nil {
		return nil, err
	}
	var pairs [][2]string
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		seek, repl, ok := strings.Cut(trimmed, "---")
		seek, repl = strings.TrimSpace(seek), strings.TrimSpace(repl)
		if !ok || seek == "" || repl == "" {
			return nil, &FormatError{Source: s.Name(), Line: i + 1, Text: line}
		}
		pairs = append(pairs, [2]string{seek, repl})
	}
	return pairs, nil
}
