package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inspirehep/refextract/internal/config"
	"github.com/inspirehep/refextract/internal/reference"
	"github.com/inspirehep/refextract/internal/storage"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Keep extracted references in a local store",
	Long: `Manage the local reference store.

Extracted records are appended to refs.jsonl in store_dir (the source of
truth) tagged with their source and position. A SQLite full-text index is
built from it with 'store rebuild' and queried with 'store search'.

Extracting the same source again replaces its records.`,
}

func init() {
	rootCmd.AddCommand(storeCmd)
}

// mustStoreRecords saves the records of source and returns how many were
// stored. The index is left stale until the next rebuild.
func mustStoreRecords(cfg *config.Config, source string, records []reference.Record) int {
	stored := reference.NewStored(source, records, time.Now())
	dropped, err := storage.Replace(config.RefsPath(cfg.StoreDir), source, stored)
	if err != nil {
		exitWithError(ExitError, "storing references: %v", err)
	}
	logger.Info("stored references",
		zap.String("source", source),
		zap.Int("stored", len(stored)),
		zap.Int("replaced", dropped),
	)
	return len(stored)
}
