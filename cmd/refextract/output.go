package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/inspirehep/refextract/internal/record"
	"github.com/inspirehep/refextract/internal/reference"
)

const (
	DefaultSearchLimit = 50 // Default limit for search/list commands

	RawRefMaxLen = 70 // Used in search and list summaries
)

// humanFields is the order record fields are printed in with --human.
var humanFields = []string{
	record.FieldAuthor,
	record.FieldCollaboration,
	record.FieldTitle,
	record.FieldJournalRef,
	record.FieldJournalTitle,
	record.FieldJournalVolume,
	record.FieldJournalYear,
	record.FieldJournalPage,
	record.FieldReportNumber,
	record.FieldDOI,
	record.FieldHDL,
	record.FieldURL,
	record.FieldURLDesc,
	record.FieldISBN,
	record.FieldPublisher,
	record.FieldYear,
	record.FieldRecid,
	record.FieldMisc,
}

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	exit(code)
}

// exitWithErr exits with the code exitCodeFor picks for err.
func exitWithErr(err error, doing string) {
	exitWithError(exitCodeFor(err), "%s: %v", doing, err)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// ExtractResult is the response of the extraction commands.
type ExtractResult struct {
	Source     string             `json:"source,omitempty"`
	References []reference.Record `json:"references"`
	Stats      *reference.Stats   `json:"stats,omitempty"`
	Stored     int                `json:"stored,omitempty"`
}

// outputRecords prints extraction results.
func outputRecords(res ExtractResult) {
	if res.References == nil {
		res.References = []reference.Record{}
	}
	if !humanOutput {
		outputJSON(res)
		return
	}
	if len(res.References) == 0 {
		outputHuman("No references found\n")
		return
	}
	for i, r := range res.References {
		printRecord(i+1, r)
	}
	if res.Stored > 0 {
		outputHuman("\nStored %d references from %s\n", res.Stored, res.Source)
	}
}

// printRecord prints one record, raw line first.
func printRecord(num int, r reference.Record) {
	marker := r.First(record.FieldLineMarker)
	if marker == "" {
		marker = "-"
	}
	fmt.Printf("[%d] (%s) %s\n", num, marker, r.First(record.FieldRawRef))
	for _, field := range humanFields {
		if values := r[field]; len(values) > 0 {
			fmt.Printf("    %-18s %s\n", field+":", strings.Join(values, "; "))
		}
	}
}

// truncateString shortens s to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
