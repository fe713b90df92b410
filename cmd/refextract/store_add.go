package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inspirehep/refextract/internal/config"
	"github.com/inspirehep/refextract/internal/reference"
)

func init() {
	storeCmd.AddCommand(storeAddCmd)
}

var storeAddCmd = &cobra.Command{
	Use:   "add <path|url>...",
	Short: "Extract references from documents into the store",
	Long: `Extract the references of each document and store them. Arguments
starting with http:// or https:// are downloaded, others are local files.

A document that fails is reported and skipped; the exit code is that of the
last failure.

Examples:
  refextract store add paper.pdf thesis.pdf
  refextract store add https://arxiv.org/pdf/1506.05349`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStoreAdd,
}

// StoreAddResult is the response for the store add command.
type StoreAddResult struct {
	Source string `json:"source"`
	Stored int    `json:"stored"`
	Error  string `json:"error,omitempty"`
}

func runStoreAdd(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	e := mustNewEngine(cfg, "")
	overrides := mustOverrides(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results := make([]StoreAddResult, 0, len(args))
	code := ExitSuccess
	for _, arg := range args {
		var records []reference.Record
		var err error
		source := arg
		if isURL(arg) {
			records, err = e.ExtractFromURL(ctx, arg, overrides)
		} else {
			source = config.ExpandPath(arg)
			if abs, absErr := filepath.Abs(source); absErr == nil {
				source = abs
			}
			records, err = e.ExtractFromFile(source, overrides)
		}
		if err != nil {
			code = exitCodeFor(err)
			results = append(results, StoreAddResult{Source: source, Error: err.Error()})
			continue
		}
		results = append(results, StoreAddResult{Source: source, Stored: mustStoreRecords(cfg, source, records)})
	}

	if humanOutput {
		for _, r := range results {
			if r.Error != "" {
				outputHuman("%s: error: %s\n", r.Source, r.Error)
				continue
			}
			outputHuman("%s: stored %d references\n", r.Source, r.Stored)
		}
	} else {
		outputJSON(results)
	}
	if code != ExitSuccess {
		exit(code)
	}
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
