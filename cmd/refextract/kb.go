package main

import (
	"github.com/spf13/cobra"

	"github.com/inspirehep/refextract/internal/kb"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Inspect the knowledge bases",
	Long: `Inspect the knowledge bases used to recognise journals, report numbers,
authors, books, publishers and collaborations.

Every kind ships with a bundled default; the kbs section of the config file
(or REFEXTRACT_KBS) replaces kinds with files of your own.`,
}

func init() {
	kbCmd.AddCommand(kbCheckCmd)
	kbCmd.AddCommand(kbShowCmd)
	rootCmd.AddCommand(kbCmd)
}

var kbCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Build every knowledge base and report problems",
	Long: `Build every knowledge base, overrides included, and print how many
entries each holds. A file that cannot be parsed exits with code 3 and names
the offending line.`,
	Args: cobra.NoArgs,
	RunE: runKBCheck,
}

var kbShowCmd = &cobra.Command{
	Use:   "show <kind>",
	Short: "Show where a knowledge base comes from",
	Long: `Show the source and size of one knowledge base.

Kinds: journals, journals-re, report-numbers, authors, books, publishers,
special-journals, collaborations.`,
	Args: cobra.ExactArgs(1),
	RunE: runKBShow,
}

// KBInfo describes one built knowledge base.
type KBInfo struct {
	Kind    kb.Kind `json:"kind"`
	Source  string  `json:"source"`
	Entries int     `json:"entries"`
}

func kbInfos(kinds []kb.Kind) []KBInfo {
	cfg := mustLoadConfig()
	overrides := mustOverrides(cfg)
	set, err := kb.Load(overrides)
	if err != nil {
		exitWithErr(err, "loading knowledge bases")
	}
	sources := kb.Resolve(overrides)
	infos := make([]KBInfo, 0, len(kinds))
	for _, k := range kinds {
		infos = append(infos, KBInfo{Kind: k, Source: sources[k].Name(), Entries: set.Size(k)})
	}
	return infos
}

func runKBCheck(cmd *cobra.Command, args []string) error {
	infos := kbInfos(kb.Kinds)
	if humanOutput {
		for _, info := range infos {
			outputHuman("%-17s %5d  %s\n", info.Kind, info.Entries, info.Source)
		}
		outputHuman("All knowledge bases OK\n")
		return nil
	}
	outputJSON(infos)
	return nil
}

func runKBShow(cmd *cobra.Command, args []string) error {
	kind, err := kb.ParseKind(args[0])
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	info := kbInfos([]kb.Kind{kind})[0]
	if humanOutput {
		outputHuman("kind:    %s\nsource:  %s\nentries: %d\n", info.Kind, info.Source, info.Entries)
		return nil
	}
	outputJSON(info)
	return nil
}
