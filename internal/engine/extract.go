package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/inspirehep/refextract/internal/document"
	"github.com/inspirehep/refextract/internal/kb"
	"github.com/inspirehep/refextract/internal/reference"
)

// WithFetcher sets the fetcher used by ExtractFromURL. The default one
// converts at most the engine's maximum number of pages.
func WithFetcher(f *document.Fetcher) Option {
	return func(e *Engine) {
		e.fetcher = f
	}
}

// WithMaxPages limits how many PDF pages are converted. Zero means all.
func WithMaxPages(n int) Option {
	return func(e *Engine) {
		e.maxPages = n
	}
}

// ExtractFromString extracts references from text. When onlyReferences
// is false the reference section is located first; otherwise the whole
// text is taken as the reference list.
func (e *Engine) ExtractFromString(text string, onlyReferences bool, overrides map[kb.Kind]kb.Source) ([]reference.Record, error) {
	body := document.Lines(text)
	var lines []string
	if onlyReferences {
		lines = document.ReferenceLines(body)
	} else {
		lines = e.referenceSection(body)
	}
	records, _, err := e.ParseReferences(lines, overrides)
	return records, err
}

// ExtractFromFile extracts references from a plain text or PDF file.
func (e *Engine) ExtractFromFile(path string, overrides map[kb.Kind]kb.Source) ([]reference.Record, error) {
	body, err := document.Body(path, e.maxPages)
	if err != nil {
		return nil, err
	}
	return e.extractFromBody(body, overrides)
}

// ExtractFromURL downloads a plain text or PDF document and extracts its
// references. HTTP errors return document.ErrFullTextNotAvailable.
func (e *Engine) ExtractFromURL(ctx context.Context, url string, overrides map[kb.Kind]kb.Source) ([]reference.Record, error) {
	body, err := e.fetcher.Body(ctx, url)
	if err != nil {
		return nil, err
	}
	return e.extractFromBody(body, overrides)
}

func (e *Engine) extractFromBody(body []string, overrides map[kb.Kind]kb.Source) ([]reference.Record, error) {
	records, _, err := e.ParseReferences(e.referenceSection(body), overrides)
	return records, err
}

func (e *Engine) referenceSection(body []string) []string {
	lines, s := document.Extract(body)
	if s == nil {
		e.log.Info("no reference section found", zap.Int("lines", len(body)))
		return nil
	}
	e.log.Debug("reference section",
		zap.String("title", s.Title),
		zap.String("marker", s.Marker),
		zap.Int("start", s.Start),
		zap.Int("end", s.End),
		zap.Int("how_found", s.HowFound),
	)
	return lines
}
