// Package engine runs the reference extraction pipeline: each reference
// line is washed, tagged, parsed into elements, normalised, split into
// citations and finally turned into records.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/inspirehep/refextract/internal/document"
	"github.com/inspirehep/refextract/internal/kb"
	"github.com/inspirehep/refextract/internal/parse"
	"github.com/inspirehep/refextract/internal/record"
	"github.com/inspirehep/refextract/internal/reference"
	"github.com/inspirehep/refextract/internal/split"
	"github.com/inspirehep/refextract/internal/tag"
	"github.com/inspirehep/refextract/internal/transform"
)

// ErrNoJournal is returned by ExtractJournalReference when the line holds
// no journal reference.
var ErrNoJournal = errors.New("no journal reference found")

// Engine extracts references. It is safe for concurrent use as long as its
// linker is.
type Engine struct {
	cache    *kb.Cache
	format   string
	linker   transform.Linker
	workers  int
	fetcher  *document.Fetcher
	maxPages int
	log      *zap.Logger
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithCache shares a knowledge-base cache between engines.
func WithCache(c *kb.Cache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithFormat sets the journal reference template, see record.DefaultFormat.
func WithFormat(format string) Option {
	return func(e *Engine) {
		e.format = format
	}
}

// WithLinker resolves elements to record ids.
func WithLinker(l transform.Linker) Option {
	return func(e *Engine) {
		e.linker = l
	}
}

// WithWorkers sets how many lines are parsed in parallel.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithClock sets the time source used for statistics (for testing).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New returns an engine. It fails if the reference format is unusable.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		format:  record.DefaultFormat,
		workers: 1,
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = kb.NewCache()
	}
	if e.workers < 1 {
		e.workers = 1
	}
	if e.fetcher == nil {
		e.fetcher = document.NewFetcher(document.WithMaxPages(e.maxPages), document.WithFetchLogger(e.log))
	}
	if _, err := record.ParseFormat(e.format); err != nil {
		return nil, err
	}
	return e, nil
}

// KBs returns the knowledge bases for overrides, from the engine's cache.
func (e *Engine) KBs(overrides map[kb.Kind]kb.Source) (*kb.Set, error) {
	kbs, err := e.cache.Get(overrides)
	if err != nil {
		return nil, fmt.Errorf("loading knowledge bases: %w", err)
	}
	return kbs, nil
}

// ParseReferenceLine parses one washed reference line into citations. It
// returns the line marker, what was recognised and the updated counts of
// unrecognised titles. Only the linker can make it fail.
func (e *Engine) ParseReferenceLine(line string, kbs *kb.Set, badTitles map[string]int) ([]reference.Citation, string, reference.Counts, map[string]int, error) {
	if kbs == nil {
		kbs = &kb.Set{}
	}
	marker, rest := tag.StripMarker(line)
	rest, dois := tag.TagDOIs(rest)
	rest, urls := tag.TagURLs(rest)
	tagged, badTitles := tag.Line(rest, kbs, badTitles)
	e.log.Debug("tagged line", zap.String("marker", marker), zap.String("tagged", tagged))

	elements, marker, counts := parse.TaggedLine(marker, tagged, dois, urls)
	elements = transform.Apply(elements, kbs)

	var err error
	if e.linker != nil {
		if elements, err = transform.Link(elements, e.linker); err != nil {
			return nil, marker, counts, badTitles, err
		}
	}

	citations := split.Split(elements)
	citations = split.ImpliedIbids(citations)
	citations = split.AddYears(citations)
	citations = split.FindBooksInMisc(citations, kbs.Books)
	if e.linker != nil {
		for i := range citations {
			linked, err := transform.Link(citations[i], e.linker)
			if err != nil {
				return nil, marker, counts, badTitles, err
			}
			citations[i] = linked
		}
	}
	citations = split.DedupAuthors(citations)
	citations = split.DedupDOIs(citations)
	citations = split.DedupCollaborations(citations)
	citations = split.AddRecids(citations)

	if ce := e.log.Check(zap.DebugLevel, "split citations"); ce != nil {
		ce.Write(zap.String("marker", marker), zap.Int("citations", len(citations)), zap.Any("elements", citations))
	}
	return citations, marker, counts, badTitles, nil
}

// ParseReferences parses raw reference lines and builds their records.
func (e *Engine) ParseReferences(lines []string, overrides map[kb.Kind]kb.Source) ([]reference.Record, reference.Stats, error) {
	start := time.Now()
	defer func() { parseDuration.Observe(time.Since(start).Seconds()) }()

	kbs, err := e.KBs(overrides)
	if err != nil {
		return nil, reference.Stats{}, err
	}
	parsed, counts, badTitles, err := e.parseLines(lines, kbs)
	if err != nil {
		return nil, reference.Stats{}, err
	}
	records, err := record.Build(parsed, e.format)
	if err != nil {
		return nil, reference.Stats{}, err
	}

	linesTotal.Add(float64(len(lines)))
	citationsTotal.Add(float64(len(records)))
	for kind, n := range map[string]int{
		"misc": counts.Misc, "title": counts.Title, "reportnum": counts.ReportNum,
		"url": counts.URL, "doi": counts.DOI, "auth_group": counts.AuthGroup,
	} {
		recognisedTotal.WithLabelValues(kind).Add(float64(n))
	}
	e.log.Info("parsed references",
		zap.Int("lines", len(lines)),
		zap.Int("records", len(records)),
		zap.Int("titles", counts.Title),
		zap.Int("unknown_titles", len(badTitles)),
	)
	return records, record.BuildStats(counts, e.now()), nil
}

// parseLines washes and parses every line. Lines are spread over the
// engine's workers; the output keeps the input order.
func (e *Engine) parseLines(lines []string, kbs *kb.Set) ([]reference.Line, reference.Counts, map[string]int, error) {
	out := make([]reference.Line, len(lines))
	counts := make([]reference.Counts, len(lines))
	errs := make([]error, len(lines))

	workers := min(e.workers, len(lines))
	titles := make([]map[string]int, workers)
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			bad := map[string]int{}
			for i := range jobs {
				citations, marker, c, b, err := e.ParseReferenceLine(Wash(lines[i]), kbs, bad)
				bad = b
				out[i] = reference.Line{Citations: citations, Marker: marker, Raw: lines[i]}
				counts[i], errs[i] = c, err
			}
			titles[w] = bad
		}(w)
	}
	for i := range lines {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var total reference.Counts
	for i := range lines {
		if errs[i] != nil {
			return nil, total, nil, fmt.Errorf("reference line %d: %w", i+1, errs[i])
		}
		total = total.Add(counts[i])
	}
	badTitles := map[string]int{}
	for _, m := range titles {
		for t, n := range m {
			badTitles[t] += n
		}
	}
	return out, total, badTitles, nil
}

// ExtractJournalReference returns the first journal reference found in
// line, or ErrNoJournal.
func (e *Engine) ExtractJournalReference(line string, overrides map[kb.Kind]kb.Source) (*reference.Element, error) {
	kbs, err := e.KBs(overrides)
	if err != nil {
		return nil, err
	}
	citations, _, _, _, err := e.ParseReferenceLine(Wash(line), kbs, nil)
	if err != nil {
		return nil, err
	}
	for _, c := range citations {
		if i := c.Index(reference.KindJournal); i >= 0 {
			el := c[i]
			return &el, nil
		}
	}
	return nil, ErrNoJournal
}
