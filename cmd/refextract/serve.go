package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/inspirehep/refextract/internal/server"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default server.addr from config)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extraction HTTP API",
	Long: `Serve the extraction API over HTTP until interrupted.

Endpoints:
  POST /extract_journal_info           publication_infos, journal_kb_data
  POST /extract_references_from_text   text, journal_kb_data
  POST /extract_references_from_url    url, journal_kb_data
  POST /extract_references_from_list   raw_references, journal_kb_data
  GET  /healthcheck
  GET  /metrics                        Prometheus metrics

Journal references are formatted as {title},{volume},{page}.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if serveAddr == "" {
		serveAddr = cfg.Server.Addr
	}
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := server.New(mustNewEngine(cfg, server.ReferenceFormat), logger)
	if err := s.Run(ctx, serveAddr); err != nil {
		exitWithError(ExitError, "serving: %v", err)
	}
	return nil
}
