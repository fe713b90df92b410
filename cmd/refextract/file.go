package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/inspirehep/refextract/internal/config"
)

var (
	fileStore  bool
	fileFormat string
)

func init() {
	fileCmd.Flags().BoolVar(&fileStore, "store", false, "Keep the extracted references in the local store")
	fileCmd.Flags().StringVar(&fileFormat, "format", "", "Journal reference template (default from config)")
	rootCmd.AddCommand(fileCmd)
}

var fileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Extract references from a PDF or text file",
	Long: `Extract references from a local document. The type is detected from the
content: plain text is read as is, PDF is converted page by page. Any other
type is rejected.

Examples:
  refextract file paper.pdf
  refextract file --store ~/papers/thesis.pdf
  refextract file paper.pdf --human`,
	Args: cobra.ExactArgs(1),
	RunE: runFile,
}

func runFile(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	e := mustNewEngine(cfg, fileFormat)

	path := config.ExpandPath(args[0])
	records, err := e.ExtractFromFile(path, mustOverrides(cfg))
	if err != nil {
		exitWithErr(err, "extracting references")
	}

	res := ExtractResult{Source: path, References: records}
	if fileStore {
		if abs, err := filepath.Abs(path); err == nil {
			res.Source = abs
		}
		res.Stored = mustStoreRecords(cfg, res.Source, records)
	}
	outputRecords(res)
	return nil
}
