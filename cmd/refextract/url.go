package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/inspirehep/refextract/internal/config"
	"github.com/inspirehep/refextract/internal/document"
)

var (
	urlStore  bool
	urlFormat string
)

func init() {
	urlCmd.Flags().BoolVar(&urlStore, "store", false, "Keep the extracted references in the local store")
	urlCmd.Flags().StringVar(&urlFormat, "format", "", "Journal reference template (default from config)")
	rootCmd.AddCommand(urlCmd)
}

var urlCmd = &cobra.Command{
	Use:   "url <url>",
	Short: "Download a document and extract its references",
	Long: `Download a PDF or text document and extract its references.

Downloads are rate limited (fetch.rate_per_second) and time out after
fetch.timeout. A URL that cannot be fetched exits with code 4.

Examples:
  refextract url https://arxiv.org/pdf/1506.05349
  refextract url --store https://example.org/thesis.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runURL,
}

func runURL(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	e := mustNewEngine(cfg, urlFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	url := args[0]
	records, err := e.ExtractFromURL(ctx, url, mustOverrides(cfg))
	if err != nil {
		exitWithErr(err, "extracting references")
	}

	res := ExtractResult{Source: url, References: records}
	if urlStore {
		res.Stored = mustStoreRecords(cfg, url, records)
	}
	outputRecords(res)
	return nil
}

// httpClient returns the client used for downloads.
func httpClient(cfg *config.Config) *http.Client {
	timeout := cfg.Fetch.Timeout
	if timeout == 0 {
		timeout = document.DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
