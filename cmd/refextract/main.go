// Package main provides the refextract CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inspirehep/refextract/internal/config"
	"github.com/inspirehep/refextract/internal/document"
	"github.com/inspirehep/refextract/internal/engine"
	"github.com/inspirehep/refextract/internal/kb"
	"github.com/inspirehep/refextract/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
	configPath  string
)

// logger is built from the config before any command runs.
var logger = zap.NewNop()

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		exit(ExitError)
	}
	syncLogger()
}

// syncLogger flushes whichever logger setupLogger installed.
func syncLogger() {
	_ = logger.Sync()
}

// exit flushes the logger, which os.Exit would skip, and exits.
func exit(code int) {
	syncLogger()
	os.Exit(code)
}

var rootCmd = &cobra.Command{
	Use:   "refextract",
	Short: "Extract and parse bibliographic references",
	Long: `refextract finds the reference section of a scientific document and
parses every reference into structured fields: journal, volume, year and
page, report numbers, DOIs, URLs, authors, collaborations, ISBNs and more.

Documents can be plain text or PDF, local or downloaded. Extracted records
can be kept in a local store (JSONL with an SQLite full-text index).
All commands output JSON by default.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogger,
	PersistentPostRun: func(cmd *cobra.Command, args []string) { syncLogger() },
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/refextract/config.yml)")
	rootCmd.Version = Version
}

// setupLogger builds the stderr logger so JSON on stdout stays clean.
func setupLogger(cmd *cobra.Command, args []string) error {
	var zc zap.Config
	if verbose {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		// A broken config is reported by the command itself.
		if cfg, err := loadConfig(); err == nil {
			if level, err := cfg.LogLevel(); err == nil {
				zc.Level = zap.NewAtomicLevelAt(level)
			}
		} else {
			zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
	}
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	l, err := zc.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	logger = l
	return nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(config.ExpandPath(configPath))
	}
	return config.Load()
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := loadConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustOverrides returns the knowledge-base overrides of cfg, exits on error.
func mustOverrides(cfg *config.Config) map[kb.Kind]kb.Source {
	overrides, err := cfg.Overrides()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return overrides
}

// mustNewEngine builds an engine from cfg. A non-empty format replaces
// cfg.ReferenceFormat.
func mustNewEngine(cfg *config.Config, format string) *engine.Engine {
	if format == "" {
		format = cfg.ReferenceFormat
	}
	fetcher := document.NewFetcher(
		document.WithRateLimit(cfg.Fetch.RatePerSecond),
		document.WithUserAgent(cfg.Fetch.UserAgent),
		document.WithMaxPages(cfg.PDF.MaxPages),
		document.WithFetchLogger(logger),
		document.WithHTTPClient(httpClient(cfg)),
	)
	e, err := engine.New(
		engine.WithFormat(format),
		engine.WithWorkers(cfg.Workers),
		engine.WithMaxPages(cfg.PDF.MaxPages),
		engine.WithFetcher(fetcher),
		engine.WithLogger(logger),
	)
	if err != nil {
		exitWithError(ExitConfigError, "creating engine: %v", err)
	}
	return e
}

// mustOpenDatabase opens the SQLite index of the store, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(cfg *config.Config) *storage.DB {
	dbPath := config.DBPath(cfg.StoreDir)
	if err := os.MkdirAll(config.CachePath(cfg.StoreDir), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(dbPath)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}
