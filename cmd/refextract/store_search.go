package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inspirehep/refextract/internal/record"
	"github.com/inspirehep/refextract/internal/reference"
	"github.com/inspirehep/refextract/internal/storage"
)

var (
	searchLimit   int
	searchAuthors []string
	searchYear    string
	searchTitle   string
	searchJournal string
	searchDOI     string
	searchSource  string

	listLimit  int
	listSource string
)

func init() {
	storeSearchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return")
	storeSearchCmd.Flags().StringArrayVarP(&searchAuthors, "author", "a", nil, "Search by author name (can be repeated, uses AND logic)")
	storeSearchCmd.Flags().StringVar(&searchYear, "year", "", "Filter by year: exact (2024), range (2020:2024), or open (2020: or :2024)")
	storeSearchCmd.Flags().StringVarP(&searchTitle, "title", "t", "", "Search in titles only")
	storeSearchCmd.Flags().StringVarP(&searchJournal, "journal", "j", "", "Search in journal titles and references")
	storeSearchCmd.Flags().StringVar(&searchDOI, "doi", "", "Lookup by exact DOI")
	storeSearchCmd.Flags().StringVar(&searchSource, "source", "", "Only references extracted from this source")

	storeListCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum results to return (0 = all)")
	storeListCmd.Flags().StringVar(&listSource, "source", "", "Only references extracted from this source")

	storeCmd.AddCommand(storeSearchCmd)
	storeCmd.AddCommand(storeListCmd)
}

var storeSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored references",
	Long: `Search stored references with full-text queries and filters. The
index must have been built with 'refextract store rebuild'.

Plain text searches the raw reference, authors, titles, journals, misc text
and report numbers. Author matching is by prefix, so "Wein" matches
"Weinberg".

Year syntax:
  --year 2024         - Exact year
  --year 2020:2024    - Range (inclusive)
  --year 2020:        - 2020 and later
  --year :2020        - 2020 and earlier

Examples:
  refextract store search "higgs boson"
  refextract store search -a Weinberg --year :1970
  refextract store search --journal "Phys. Rev. Lett."
  refextract store search --doi 10.1016/j.physletb.2012.08.021`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStoreSearch,
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored references",
	Args:  cobra.NoArgs,
	RunE:  runStoreList,
}

func runStoreSearch(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	filters := storage.SearchFilters{
		Authors: searchAuthors,
		Title:   searchTitle,
		Journal: searchJournal,
		DOI:     searchDOI,
		Source:  searchSource,
	}
	if len(args) > 0 {
		filters.Keyword = args[0]
	}
	if searchYear != "" {
		from, to, err := parseYearRange(searchYear)
		if err != nil {
			exitWithError(ExitError, "invalid year format: %v", err)
		}
		filters.YearFrom = from
		filters.YearTo = to
	}

	refs, err := db.SearchWithFilters(filters, searchLimit)
	if err != nil {
		exitWithError(ExitError, "search failed: %v", err)
	}
	outputStored(refs)
	return nil
}

func runStoreList(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	refs, err := db.SearchWithFilters(storage.SearchFilters{Source: listSource}, listLimit)
	if err != nil {
		exitWithError(ExitError, "listing references: %v", err)
	}
	outputStored(refs)
	return nil
}

func outputStored(refs []reference.Stored) {
	if !humanOutput {
		if refs == nil {
			refs = []reference.Stored{}
		}
		outputJSON(refs)
		return
	}
	if len(refs) == 0 {
		fmt.Println("No references found")
		return
	}
	for i, ref := range refs {
		fmt.Printf("[%d] %s\n", i+1, ref.ID)
		fmt.Printf("    %s\n", truncateString(ref.Record.First(record.FieldRawRef), RawRefMaxLen))
	}
	fmt.Printf("\nFound %d references\n", len(refs))
}

// parseYearRange parses a year expression into from/to bounds.
// Supported formats: "2024" (exact), "2020:2024" (range), "2020:" (from), ":2024" (to).
// Returns (0, 0, nil) for empty input.
func parseYearRange(expr string) (from, to int, err error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, 0, nil
	}

	if strings.Contains(expr, ":") {
		parts := strings.SplitN(expr, ":", 2)

		if parts[0] != "" {
			from, err = strconv.Atoi(parts[0])
			if err != nil {
				return 0, 0, fmt.Errorf("invalid start year %q", parts[0])
			}
		}

		if parts[1] != "" {
			to, err = strconv.Atoi(parts[1])
			if err != nil {
				return 0, 0, fmt.Errorf("invalid end year %q", parts[1])
			}
		}

		return from, to, nil
	}

	// Single year - exact match
	year, err := strconv.Atoi(expr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year %q", expr)
	}

	return year, year, nil
}
