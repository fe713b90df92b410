package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(journalCmd)
}

var journalCmd = &cobra.Command{
	Use:   "journal <text>",
	Short: "Extract the journal reference from a publication note",
	Long: `Find the first journal reference in free text, such as the publication
note of a record, and print its title, volume, year and page.

Exits with code 3 when the text holds no journal reference.

Examples:
  refextract journal "Phys. Rev. Lett. 19 (1967) 1264"
  refextract journal "Science Vol. 338 no. 6108 (2012) pp. 773-775" --human`,
	Args: cobra.MinimumNArgs(1),
	RunE: runJournal,
}

func runJournal(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	e := mustNewEngine(cfg, "")

	el, err := e.ExtractJournalReference(strings.Join(args, " "), mustOverrides(cfg))
	if err != nil {
		exitWithErr(err, "extracting journal reference")
	}

	if humanOutput {
		outputHuman("title:  %s\n", el.Title)
		outputHuman("volume: %s\n", el.Volume)
		outputHuman("year:   %s\n", el.Year)
		outputHuman("page:   %s\n", el.Page)
		return nil
	}
	outputJSON(el)
	return nil
}
