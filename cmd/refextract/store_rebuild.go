package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inspirehep/refextract/internal/config"
)

func init() {
	storeCmd.AddCommand(storeRebuildCmd)
}

var storeRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the search index from refs.jsonl",
	Long: `Rebuild the SQLite query database from the JSONL source file.

Run this after adding references, or if the database becomes corrupted.`,
	Args: cobra.NoArgs,
	RunE: runStoreRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status     string `json:"status"`
	References int    `json:"references"`
	Sources    int    `json:"sources"`
}

func runStoreRebuild(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	refsCount, err := db.RebuildFromJSONL(config.RefsPath(cfg.StoreDir))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding refs database: %v", err)
	}
	sources, err := db.CountSources()
	if err != nil {
		exitWithError(ExitError, "counting sources: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query database with %d references from %d sources\n", refsCount, sources)
	} else {
		outputJSON(RebuildResult{Status: "rebuilt", References: refsCount, Sources: sources})
	}
	return nil
}
