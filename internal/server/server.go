// Package server exposes the extraction engine over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/inspirehep/refextract/internal/engine"
	"github.com/inspirehep/refextract/internal/kb"
)

// ReferenceFormat is the journal reference template used by every
// endpoint.
const ReferenceFormat = "{title},{volume},{page}"

// ShutdownTimeout bounds how long Run waits for in-flight requests.
const ShutdownTimeout = 10 * time.Second

// Server serves the extraction endpoints. All requests share one engine,
// and so one knowledge-base cache.
type Server struct {
	engine *engine.Engine
	log    *zap.Logger
	router *gin.Engine
}

// New returns a server around e. The engine should be built with
// ReferenceFormat.
func New(e *engine.Engine, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{engine: e, log: log}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.observe())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthcheck", s.healthcheck)

	router.POST("/extract_journal_info", s.extractJournalInfo)
	router.POST("/extract_references_from_text", s.extractReferencesFromText)
	router.POST("/extract_references_from_url", s.extractReferencesFromURL)
	router.POST("/extract_references_from_list", s.extractReferencesFromList)

	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute, // URL extraction downloads and parses a PDF
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("starting server", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// observe records request metrics and logs each request.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		requestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
		requestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
		)
	}
}

func (s *Server) healthcheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// journalOverrides turns the journal_kb_data of a request into a
// knowledge-base override.
func journalOverrides(data map[string]string) map[kb.Kind]kb.Source {
	return map[kb.Kind]kb.Source{kb.KindJournals: kb.FromMap(data)}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body. Reason: " + err.Error()})
}
