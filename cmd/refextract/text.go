package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	textOnlyReferences bool
	textFormat         string
)

func init() {
	textCmd.Flags().BoolVar(&textOnlyReferences, "only-references", false, "Treat the whole text as the reference list")
	textCmd.Flags().StringVar(&textFormat, "format", "", "Journal reference template (default from config)")
	rootCmd.AddCommand(textCmd)
}

var textCmd = &cobra.Command{
	Use:   "text [path|-]",
	Short: "Extract references from plain text",
	Long: `Extract references from a plain text document, read from path or stdin.

The reference section is located first (by its title, or failing that by
numbered markers) unless --only-references says the text is nothing but
references. Physical lines are joined back into references by marker.

Examples:
  refextract text paper.txt
  pdftotext paper.pdf - | refextract text
  refextract text --only-references refs.txt --human`,
	Args: cobra.MaximumNArgs(1),
	RunE: runText,
}

func runText(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	e := mustNewEngine(cfg, textFormat)

	var data []byte
	var err error
	source := "-"
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		source = args[0]
		data, err = os.ReadFile(source)
	}
	if err != nil {
		exitWithError(ExitNotAvailable, "reading %s: %v", source, err)
	}

	records, err := e.ExtractFromString(string(data), textOnlyReferences, mustOverrides(cfg))
	if err != nil {
		exitWithErr(err, "extracting references")
	}
	outputRecords(ExtractResult{Source: source, References: records})
	return nil
}
