// Package storage handles data persistence in JSONL and SQLite formats.
//
// refs.jsonl is the source of truth; the SQLite database is an index that
// can always be rebuilt from it.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/inspirehep/refextract/internal/reference"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadAll reads all stored records from a JSONL file.
func ReadAll(path string) ([]reference.Stored, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Missing file returns empty slice
		}
		return nil, fmt.Errorf("opening refs file: %w", err)
	}
	defer f.Close()

	var refs []reference.Stored
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var ref reference.Stored
		if err := json.Unmarshal(line, &ref); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		refs = append(refs, ref)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading refs file: %w", err)
	}

	return refs, nil
}

// Append adds stored records to the end of a JSONL file, creating it and
// its directory if needed.
func Append(path string, refs ...reference.Stored) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening refs file for append: %w", err)
	}
	defer f.Close()

	return writeLines(f, refs)
}

// WriteAll writes all stored records to a JSONL file, replacing existing
// content.
func WriteAll(path string, refs []reference.Stored) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating refs file: %w", err)
	}
	defer f.Close()

	return writeLines(f, refs)
}

func writeLines(f *os.File, refs []reference.Stored) error {
	w := bufio.NewWriter(f)
	for i, ref := range refs {
		data, err := json.Marshal(ref)
		if err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing refs file: %w", err)
	}
	return nil
}

// Replace stores the records of one source, dropping whatever was stored
// for that source before. It returns how many old records were dropped.
func Replace(path string, source string, refs []reference.Stored) (int, error) {
	existing, err := ReadAll(path)
	if err != nil {
		return 0, err
	}
	kept := existing[:0]
	for _, ref := range existing {
		if ref.Source != source {
			kept = append(kept, ref)
		}
	}
	dropped := len(existing) - len(kept)
	if dropped == 0 {
		return 0, Append(path, refs...)
	}
	return dropped, WriteAll(path, append(kept, refs...))
}

// FindByID searches for a stored record by ID.
func FindByID(refs []reference.Stored, id string) (int, bool) {
	for i, ref := range refs {
		if ref.ID == id {
			return i, true
		}
	}
	return -1, false
}

// FindBySource returns the stored records of one source.
func FindBySource(refs []reference.Stored, source string) []reference.Stored {
	var out []reference.Stored
	for _, ref := range refs {
		if ref.Source == source {
			out = append(out, ref)
		}
	}
	return out
}
