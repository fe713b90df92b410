package kb

import (
	"embed"
	"fmt"
	"sync"
)

//go:embed data/*.kb
var defaultData embed.FS

var defaultFiles = map[Kind]string{
	KindJournals:        "data/journal-titles.kb",
	KindJournalsRe:      "data/journal-titles-re.kb",
	KindReportNumbers:   "data/report-numbers.kb",
	KindAuthors:         "data/authors.kb",
	KindBooks:           "data/books.kb",
	KindPublishers:      "data/publishers.kb",
	KindSpecialJournals: "data/special-journals.kb",
	KindCollaborations:  "data/collaborations.kb",
}

// Default returns the bundled source for kind.
func Default(kind Kind) Source {
	return Source{Path: defaultFiles[kind], FS: defaultData}
}

// Resolve fills every kind missing from overrides with its default.
func Resolve(overrides map[Kind]Source) map[Kind]Source {
	out := make(map[Kind]Source, len(Kinds))
	for _, k := range Kinds {
		if src, ok := overrides[k]; ok && !src.IsZero() {
			out[k] = src
			continue
		}
		out[k] = Default(k)
	}
	return out
}

// Load builds a fresh Set from overrides and the defaults.
func Load(overrides map[Kind]Source) (*Set, error) {
	set := &Set{}
	for kind, src := range Resolve(overrides) {
		if err := set.build(kind, src); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func (s *Set) build(kind Kind, src Source) error {
	var err error
	switch kind {
	case KindJournals:
		s.Journals, err = BuildJournals(src)
	case KindJournalsRe:
		s.JournalsRe, err = BuildJournalsRe(src)
	case KindReportNumbers:
		s.ReportNumbers, err = BuildReportNumbers(src)
	case KindAuthors:
		s.Authors, err = BuildAuthors(src)
	case KindBooks:
		s.Books, err = BuildBooks(src)
	case KindPublishers:
		s.Publishers, err = BuildPublishers(src)
	case KindSpecialJournals:
		s.SpecialJournals, err = BuildSpecialJournals(src)
	case KindCollaborations:
		s.Collaborations, err = BuildCollaborations(src)
	default:
		return fmt.Errorf("unknown knowledge base %q", kind)
	}
	if err != nil {
		return fmt.Errorf("building %s kb: %w", kind, err)
	}
	return nil
}

// Cache keeps the most recently built Set and rebuilds only the knowledge
// bases whose source changed. Sets handed out are never mutated, so a
// caller holding one is unaffected by later rebuilds.
type Cache struct {
	mu      sync.RWMutex
	current *Set
	prints  map[Kind][32]byte
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the Set for overrides, building what is missing or stale.
// Builds run outside the lock; the finished Set is swapped in whole.
func (c *Cache) Get(overrides map[Kind]Source) (*Set, error) {
	sources := Resolve(overrides)
	prints := make(map[Kind][32]byte, len(sources))
	for k, src := range sources {
		prints[k] = src.Fingerprint()
	}

	c.mu.RLock()
	if c.fresh(prints) {
		set := c.current
		c.mu.RUnlock()
		return set, nil
	}
	base, basePrints := c.current, c.prints
	c.mu.RUnlock()

	next := &Set{}
	if base != nil {
		*next = *base
	}
	for _, k := range Kinds {
		if base != nil && basePrints[k] == prints[k] {
			continue
		}
		if err := next.build(k, sources[k]); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fresh(prints) {
		return c.current, nil
	}
	c.current = next
	c.prints = prints
	return next, nil
}

// fresh reports whether the cached set was built from prints. The caller
// holds c.mu.
func (c *Cache) fresh(prints map[Kind][32]byte) bool {
	if c.current == nil {
		return false
	}
	for k, p := range prints {
		if c.prints[k] != p {
			return false
		}
	}
	return true
}

// Size returns how many entries the knowledge base of kind holds.
func (s *Set) Size(kind Kind) int {
	switch kind {
	case KindJournals:
		if s.Journals != nil {
			return len(s.Journals.Phrases)
		}
	case KindJournalsRe:
		if s.JournalsRe != nil {
			return len(s.JournalsRe.Rewrites)
		}
	case KindReportNumbers:
		if s.ReportNumbers != nil {
			return len(s.ReportNumbers.Categories)
		}
	case KindAuthors:
		if s.Authors != nil {
			return len(s.Authors.Replacements)
		}
	case KindBooks:
		if s.Books != nil {
			return len(s.Books.ByTitle)
		}
	case KindPublishers:
		if s.Publishers != nil {
			return len(s.Publishers.List)
		}
	case KindSpecialJournals:
		if s.SpecialJournals != nil {
			return len(s.SpecialJournals.Titles)
		}
	case KindCollaborations:
		if s.Collaborations != nil {
			return len(s.Collaborations.List)
		}
	}
	return 0
}
