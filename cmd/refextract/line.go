package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/inspirehep/refextract/internal/storage"
)

var lineFormat string

func init() {
	lineCmd.Flags().StringVar(&lineFormat, "format", "", "Journal reference template (default from config)")
	rootCmd.AddCommand(lineCmd)
}

var lineCmd = &cobra.Command{
	Use:   "line [reference...]",
	Short: "Parse raw reference lines",
	Long: `Parse each argument as one raw reference line. Without arguments the
lines are read from stdin, one reference per line.

Every line may yield several records when it cites more than one work.

Examples:
  refextract line "[1] S. Weinberg, Phys. Rev. Lett. 19 (1967) 1264"
  refextract line --format "{title},{volume},{page}" "Nucl. Phys. B 360 (1991) 145"
  cat refs.txt | refextract line --human`,
	RunE: runLine,
}

func runLine(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	e := mustNewEngine(cfg, lineFormat)

	lines := args
	if len(lines) == 0 {
		var err error
		if lines, err = readLines(os.Stdin); err != nil {
			exitWithError(ExitError, "reading stdin: %v", err)
		}
	}

	records, stats, err := e.ParseReferences(lines, mustOverrides(cfg))
	if err != nil {
		exitWithErr(err, "parsing references")
	}
	outputRecords(ExtractResult{References: records, Stats: &stats})
	return nil
}

// readLines reads non-empty lines from r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, storage.MaxJSONLLineCapacity), storage.MaxJSONLLineCapacity)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning: %w", err)
	}
	return lines, nil
}
