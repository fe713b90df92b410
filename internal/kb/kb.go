// Package kb loads the knowledge bases that drive reference tagging:
// journal titles, report-number schemes, collaborations, books, publishers,
// author corrections and special journals.
//
// Every knowledge base is immutable once built and may be shared between
// goroutines.
package kb

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/inspirehep/refextract/internal/grammar"
)

// Kind names one knowledge base.
type Kind string

const (
	KindJournals        Kind = "journals"
	KindJournalsRe      Kind = "journals-re"
	KindReportNumbers   Kind = "report-numbers"
	KindAuthors         Kind = "authors"
	KindBooks           Kind = "books"
	KindPublishers      Kind = "publishers"
	KindSpecialJournals Kind = "special-journals"
	KindCollaborations  Kind = "collaborations"
)

// Kinds lists every knowledge base in load order.
var Kinds = []Kind{
	KindJournals, KindJournalsRe, KindReportNumbers, KindAuthors,
	KindBooks, KindPublishers, KindSpecialJournals, KindCollaborations,
}

// ParseKind validates a knowledge-base name.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown knowledge base %q", name)
}

// Set bundles one instance of every knowledge base.
type Set struct {
	Journals        *Journals
	JournalsRe      *JournalsRe
	ReportNumbers   *ReportNumbers
	Authors         *Authors
	Books           *Books
	Publishers      *Publishers
	SpecialJournals *SpecialJournals
	Collaborations  *Collaborations
}

// Journals maps normalised title phrases to their standard abbreviation.
type Journals struct {
	// Patterns holds, per phrase, a pattern matching it in an upper-cased,
	// punctuation-free line. Group 1 is the phrase.
	Patterns map[string]*regexp2.Regexp
	// Titles maps a phrase to the standardized title.
	Titles map[string]string
	// Phrases are ordered longest first, so longer titles win.
	Phrases []string
}

// Rewrite is one regular-expression journal rewrite.
type Rewrite struct {
	Re    *regexp2.Regexp
	Title string
}

// JournalsRe holds journal titles recognised by pattern rather than phrase.
type JournalsRe struct {
	Rewrites []Rewrite
}

// Replacement is one literal author-text correction.
type Replacement struct {
	Seek, Repl string
}

// Authors holds author-text corrections applied before author tagging.
type Authors struct {
	Replacements []Replacement
}

// Book is one well-known book.
type Book struct {
	Authors string
	Title   string
	Year    string
}

// Books maps an upper-cased title to its book.
type Books struct {
	ByTitle map[string]Book
}

// Publisher is one publisher name and its standard form.
type Publisher struct {
	Name    string
	Pattern *regexp2.Regexp
	Repl    string
}

// Publishers holds publishers in knowledge-base order.
type Publishers struct {
	List []Publisher
}

// SpecialJournals names journals whose volume is the two-digit year.
type SpecialJournals struct {
	Titles map[string]struct{}
}

// Has reports whether title is special.
func (s *SpecialJournals) Has(title string) bool {
	if s == nil {
		return false
	}
	_, ok := s.Titles[title]
	return ok
}

// Collaboration is one collaboration name and the pattern finding it.
type Collaboration struct {
	Name    string
	Pattern *regexp2.Regexp
}

// Collaborations holds collaborations in knowledge-base order.
type Collaborations struct {
	List []Collaboration
}

// BuildJournals builds the journal-title knowledge base.
//
// Each seek phrase is matched with its periods turned into spaces. Every
// standardized title also becomes a phrase of its own, written the way it
// looks in the upper-cased working line.
func BuildJournals(src Source) (*Journals, error) {
	pairs, err := src.readPairs()
	if err != nil {
		return nil, err
	}
	j := &Journals{
		Patterns: make(map[string]*regexp2.Regexp),
		Titles:   make(map[string]string),
	}
	var repls []string
	seenRepl := make(map[string]bool)
	for _, p := range pairs {
		phrase := strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(p[0], ".", " ")))
		if phrase == "" {
			continue
		}
		if _, ok := j.Patterns[phrase]; !ok {
			j.Phrases = append(j.Phrases, phrase)
		}
		j.Patterns[phrase] = regexp2.MustCompile(`(?<!\w)(`+regexp2.Escape(phrase)+`)\W`, regexp2.None)
		j.Titles[phrase] = p[1]
		if !seenRepl[p[1]] {
			seenRepl[p[1]] = true
			repls = append(repls, p[1])
		}
	}
	for _, repl := range repls {
		raw := strings.ToUpper(repl)
		raw = grammar.ReplaceAll(grammar.Punctuation, raw, " ")
		raw = strings.TrimSpace(grammar.ReplaceAll(grammar.MultipleSpace, raw, " "))
		if raw == "" {
			continue
		}
		if _, ok := j.Patterns[raw]; ok {
			continue
		}
		j.Patterns[raw] = regexp2.MustCompile(`(?<!/)\b(`+regexp2.Escape(raw)+`)[^A-Z0-9]`, regexp2.None)
		j.Titles[raw] = repl
		j.Phrases = append(j.Phrases, raw)
	}
	sort.SliceStable(j.Phrases, func(a, b int) bool {
		return len([]rune(j.Phrases[a])) > len([]rune(j.Phrases[b]))
	})
	return j, nil
}

// BuildJournalsRe builds the pattern-based journal knowledge base. Seeks
// are regular expressions matched on whole words of the original line.
func BuildJournalsRe(src Source) (*JournalsRe, error) {
	pairs, err := src.readPairs()
	if err != nil {
		return nil, err
	}
	out := &JournalsRe{}
	for _, p := range pairs {
		re, err := regexp2.Compile(`(?<!\w)(?:`+p[0]+`)(?!\w)`, regexp2.None)
		if err != nil {
			return nil, &FormatError{Source: src.Name(), Text: p[0]}
		}
		out.Rewrites = append(out.Rewrites, Rewrite{Re: re, Title: p[1]})
	}
	return out, nil
}

// BuildAuthors builds the author-correction knowledge base.
func BuildAuthors(src Source) (*Authors, error) {
	pairs, err := src.readPairs()
	if err != nil {
		return nil, err
	}
	out := &Authors{}
	for _, p := range pairs {
		out.Replacements = append(out.Replacements, Replacement{Seek: p[0], Repl: p[1]})
	}
	return out, nil
}

// BuildBooks builds the books knowledge base from "authors|title|year"
// records. A trailing ';' on the year is dropped.
func BuildBooks(src Source) (*Books, error) {
	rows, err := src.readRows()
	if err != nil {
		return nil, err
	}
	out := &Books{ByTitle: make(map[string]Book)}
	for i, row := range rows {
		if len(row) < 3 {
			return nil, &FormatError{Source: src.Name(), Line: i + 1, Text: strings.Join(row, "|")}
		}
		b := Book{
			Authors: strings.TrimSpace(row[0]),
			Title:   strings.TrimSpace(row[1]),
			Year:    strings.TrimSpace(strings.Trim(row[2], "; ")),
		}
		out.ByTitle[strings.ToUpper(b.Title)] = b
	}
	return out, nil
}

// BuildPublishers builds the publishers knowledge base.
func BuildPublishers(src Source) (*Publishers, error) {
	pairs, err := src.readPairs()
	if err != nil {
		return nil, err
	}
	out := &Publishers{}
	for _, p := range pairs {
		re := regexp2.MustCompile(`(?:\b|^)`+regexp2.Escape(p[0])+`(?:\b|$)`, regexp2.IgnoreCase)
		out.List = append(out.List, Publisher{Name: p[0], Pattern: re, Repl: p[1]})
	}
	return out, nil
}

// BuildSpecialJournals builds the set of special journal titles, one per
// line.
func BuildSpecialJournals(src Source) (*SpecialJournals, error) {
	lines, err := src.readLines()
	if err != nil {
		return nil, err
	}
	out := &SpecialJournals{Titles: make(map[string]struct{})}
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		out.Titles[l] = struct{}{}
	}
	return out, nil
}

// BuildCollaborations builds the collaborations knowledge base. The seek
// is the collaboration name as written; whitespace and a trailing
// "Collaboration" are matched loosely. A later entry for the same name
// replaces the earlier one in place.
func BuildCollaborations(src Source) (*Collaborations, error) {
	pairs, err := src.readPairs()
	if err != nil {
		return nil, err
	}
	out := &Collaborations{}
	index := make(map[string]int)
	for _, p := range pairs {
		c := Collaboration{Name: p[1], Pattern: collaborationPattern(p[0])}
		if i, ok := index[c.Name]; ok {
			out.List[i] = c
			continue
		}
		index[c.Name] = len(out.List)
		out.List = append(out.List, c)
	}
	return out, nil
}

func collaborationPattern(seek string) *regexp2.Regexp {
	words := strings.Fields(seek)
	for i, w := range words {
		if strings.EqualFold(w, "collaboration") {
			words[i] = `(?:\s*coll(?:aborations?|\.)?)?`
			continue
		}
		words[i] = regexp2.Escape(w)
	}
	body := strings.Join(words, `\s`)
	body = strings.ReplaceAll(body, `\s(?:\s*coll`, `(?:\s+coll`)
	return regexp2.MustCompile(`(?:^|[("\[\s]|(?<=\W))\s*(?:(?:the|and)\s+)?(`+body+`)(?=$|[><\])"\s.,:;])`, regexp2.IgnoreCase)
}

// readRows returns delimited records. File and line sources are parsed as
// '|'-separated values, skipping '#' comments.
func (s Source) readRows() ([][]string, error) {
	if s.Rows != nil {
		return s.Rows, nil
	}
	lines, err := s.readLines()
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	r.Comma = '|'
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadFormat, s.Name(), err)
	}
	return rows, nil
}
