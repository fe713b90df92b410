package document

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"

	"github.com/inspirehep/refextract/internal/grammar"
)

// How a reference section was found.
const (
	FoundByTitle = iota + 1
	FoundByBrackets
	FoundByDots
	FoundByNumbers
)

// Section is the location of the reference section in a document body.
type Section struct {
	// Title is the section title as written, "" when the section was
	// found by its numeration alone.
	Title     string
	TitleLine int
	// Start and End delimit the section lines, End exclusive. Start is the
	// title line when the first marker follows the title on the same line.
	Start, End int
	// Marker is the first reference marker, "" if none was recognised.
	Marker   string
	HowFound int

	marker *regexp2.Regexp
	// rest is what follows the title when the first reference shares its
	// line.
	rest     string
	sameLine bool
}

var sectionTitles = []string{
	"references",
	"rÉférences",
	"rÉfÉrences",
	"r´ef´erences",
	"bibliography",
	"bibliographie",
	"literaturverzeichnis",
	"citations",
	"refs",
	"publicationsréfs",
	"rÉfs",
	"reference",
	"référence",
	"rÉfÉrence",
}

// spaced lets any amount of space separate the letters of word, as text
// converted from PDF often has "R E F E R E N C E S".
func spaced(word string) string {
	var b strings.Builder
	for _, r := range word {
		if r == ' ' {
			b.WriteRune(r)
			continue
		}
		b.WriteString(regexp2.Escape(string(r)))
		b.WriteString(`\s*`)
	}
	return b.String()
}

var titlePatterns = func() []*regexp2.Regexp {
	const (
		head    = `^\s*(?:[\[\-\{\(])?\s*(?:(?:\w|\d){1,5}(?:[\.\-\,](?:\w|\d){1,5})?\s*[\.\-\}\)\]]\s*)?(?<title>`
		numHead = `^\d{1,3}\s*(?<title>`
		tail    = `(?:\s*s\s*e\s*c\s*t\s*i\s*o\s*n\s*)?)\.?[\)\}\]]?` +
			`(?:$|(?<marker>\s*[\[\{\(\<]\s*[1a-z]\s*[\}\)\>\]])|\:$)`
	)
	var out []*regexp2.Regexp
	for _, t := range sectionTitles {
		out = append(out,
			regexp2.MustCompile(head+spaced(t)+tail, regexp2.IgnoreCase),
			regexp2.MustCompile(numHead+spaced(t)+tail, regexp2.IgnoreCase),
		)
	}
	return out
}()

var endPatterns = func() []*regexp2.Regexp {
	const (
		head      = `^\s*(?:[\{\(\<\[]?\s*(?:\w|\d)\s*[\)\}\>\.\-\]]?\s*)?`
		tail      = `(?:\s*\:\s*)?`
		numbering = `(?:\d+|\w\b|i{1,3}v?|vi{0,3})[\.\,]{0,2}\b`
	)
	exprs := []string{
		head + spaced("appendix") + tail,
		head + spaced("appendices") + tail,
		head + spaced("acknowledgement") + `s?` + tail,
		head + spaced("acknowledgment") + `s?` + tail,
		head + spaced("table") + `\w?s?\d?` + tail,
		head + spaced("figure") + `s?` + tail,
		head + spaced("list of figure") + `s?` + tail,
		head + spaced("annex") + `s?` + tail,
		head + spaced("discussion") + `s?` + tail,
		head + spaced("remercie") + `s?` + tail,
		head + spaced("index") + `s?` + tail,
		head + spaced("summary") + `s?` + tail,
		`^\s*` + spaced("figure") + numbering,
		`^\s*` + spaced("fig") + `\.\s*` + numbering,
		`^\s*` + spaced("fig") + `\.?\s*\d\w?\b`,
		`^\s*` + spaced("table") + numbering,
		`^\s*` + spaced("tab") + `\.\s*` + numbering,
		`^\s*` + spaced("tab") + `\.?\s*\d\w?\b`,
		`^\s*[LVIX]\.?\s*[Cc]onclusion[\w\s]*$`,
		`^\s*Appendix\s[A-Z]\s*\:\s*[a-zA-Z]+\s*`,
		// typesetting notes printed after the references
		`(?:` + spaced("prepared") + `|` + spaced("created") + `).*(?:AAS\s*)?\sLATEX`,
		`AAS\s+?LATEX\s+?` + spaced("macros") + `v`,
		`^\s*` + spaced("This paper has been produced using"),
		`^\s*` + spaced("This article was processed by the author using Springer-Verlag") + ` LATEX`,
	}
	out := make([]*regexp2.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp2.MustCompile(e, regexp2.IgnoreCase)
	}
	return out
}()

// markerStyle is one way of numbering reference lines. Numbered styles
// carry a "marknum" group. Styles that could also match inside running
// text are only looked for at the start of a line.
type markerStyle struct {
	expr     string
	anywhere bool
}

func (s markerStyle) compile() *regexp2.Regexp {
	expr := `\s*(?<mark>` + s.expr + `)`
	if !s.anywhere {
		expr = `^` + expr
	}
	return regexp2.MustCompile(expr, regexp2.IgnoreCase)
}

var markerStyles = []markerStyle{
	{`\[\s*(?<marknum>\d+)\s*\]`, true},
	{`\[\s*[a-zA-Z:-]+\+?\s?(?:\d{1,4}[A-Za-z:-]?)?\s*\]`, false},
	{`\{\s*(?<marknum>\d+)\s*\}`, true},
	{`<\s*(?<marknum>\d+)\s*>`, false},
	{`\(\s*(?<marknum>\d+)\s*\)`, false},
	{`(?<marknum>\d+)\s*\.(?!\d)`, false},
	{`(?<marknum>\d+)\s+`, false},
	{`(?<marknum>\d+)\s*\]`, false},
	{`(?<marknum>\d+)\s*\}`, false},
	{`(?<marknum>\d+)\s*\)`, false},
	{`(?<marknum>\d+)\s*>`, false},
	{`\[\s*\d+\.\d+\s*\]`, false},
	{`\[\s*\]`, false},
	{`\*`, false},
}

var (
	// markerPatterns split rebuilt lines, markerStarts recognise the first
	// reference line.
	markerPatterns = compileStyles(false)
	markerStarts   = compileStyles(true)
)

func compileStyles(start bool) []*regexp2.Regexp {
	out := make([]*regexp2.Regexp, len(markerStyles))
	for i, s := range markerStyles {
		if start {
			s.anywhere = false
		}
		out[i] = s.compile()
	}
	return out
}

// numerations find an untitled reference section by its first marker.
var numerations = []struct {
	howFound int
	start    *regexp2.Regexp
	marker   *regexp2.Regexp
}{
	{FoundByBrackets, markerStyle{`\[\s*(?<marknum>\d+)\s*\]`, false}.compile(), markerPatterns[0]},
	{FoundByDots, markerStyle{`(?<marknum>\d+)\s*\.`, false}.compile(), markerStyle{`(?<marknum>\d+)\s*\.(?!\d)`, false}.compile()},
	{FoundByNumbers, markerStyle{`(?<marknum>\d+)`, false}.compile(), markerStyle{`(?<marknum>\d+)\s*`, false}.compile()},
}

var (
	blankLine  = regexp2.MustCompile(`^\s*$`, regexp2.None)
	unindented = regexp2.MustCompile(`^\S`, regexp2.None)
	emailLine  = regexp2.MustCompile(`^\s*\S+@\S+\.\S+\s*$`, regexp2.None)
	lowerStart = regexp2.MustCompile(`^\s*[a-z]`, regexp2.None)
	continues  = regexp2.MustCompile(`[,&-]\s*$`, regexp2.None)
)

// Locate finds the reference section of a document body. The last
// reference section title wins, since tables of contents name it too.
// Without a title, a line starting with reference marker 1 is looked for.
// It returns nil if neither is found.
func Locate(lines []string) *Section {
	if s := locateByTitle(lines); s != nil {
		return s
	}
	return locateByNumeration(lines)
}

func locateByTitle(lines []string) *Section {
	var (
		found *Section
		match *regexp2.Match
	)
	for i, line := range lines {
		for _, re := range titlePatterns {
			if m := grammar.Find(re, line); m != nil {
				found, match = &Section{TitleLine: i, HowFound: FoundByTitle}, m
				break
			}
		}
	}
	if found == nil {
		return nil
	}

	found.Title = strings.TrimSpace(grammar.Group(match, "title"))
	line := lines[found.TitleLine]
	if start, _ := grammar.GroupSpan(match, "marker"); start >= 0 {
		found.sameLine = true
		found.rest = grammar.Slice(line, start, grammar.Len(line))
		found.Start = found.TitleLine
		found.marker, found.Marker = firstMarker(found.rest)
	} else {
		found.Start = found.TitleLine + 1
		for _, l := range lines[found.Start:] {
			if grammar.Match(blankLine, l) || grammar.Match(emailLine, l) {
				continue
			}
			found.marker, found.Marker = firstMarker(l)
			break
		}
	}
	found.End = sectionEnd(lines, found.Start)
	return found
}

// firstMarker returns the splitting pattern of the style line starts with.
func firstMarker(line string) (*regexp2.Regexp, string) {
	for i, re := range markerStarts {
		if m := grammar.Find(re, line); m != nil {
			return markerPatterns[i], strings.TrimSpace(grammar.Group(m, "mark"))
		}
	}
	return nil, ""
}

func locateByNumeration(lines []string) *Section {
	for _, n := range numerations {
		for i := len(lines) - 1; i >= 0; i-- {
			m := grammar.Find(n.start, lines[i])
			if m == nil || grammar.Group(m, "marknum") != "1" {
				continue
			}
			return &Section{
				TitleLine: -1,
				Start:     i,
				End:       sectionEnd(lines, i),
				Marker:    strings.TrimSpace(grammar.Group(m, "mark")),
				HowFound:  n.howFound,
				marker:    n.marker,
			}
		}
	}
	return nil
}

// sectionEnd returns the index of the first line after start that opens
// another section, or len(lines).
func sectionEnd(lines []string, start int) int {
	for i := start + 1; i < len(lines); i++ {
		for _, re := range endPatterns {
			if grammar.Match(re, lines[i]) {
				return i
			}
		}
	}
	return len(lines)
}

// Lines returns the physical lines of the section, title removed and
// leading blank or e-mail address lines dropped.
func (s *Section) Lines(body []string) []string {
	start, end := min(s.Start, len(body)), min(s.End, len(body))
	lines := append([]string(nil), body[start:end]...)
	if s.sameLine && len(lines) > 0 {
		lines[0] = s.rest
	}
	for len(lines) > 0 && (grammar.Match(blankLine, lines[0]) || grammar.Match(emailLine, lines[0])) {
		lines = lines[1:]
	}
	return lines
}

// Extract locates the reference section of body and rebuilds its
// reference lines. It returns nil when there is no reference section.
func Extract(body []string) ([]string, *Section) {
	s := Locate(body)
	if s == nil {
		return nil, nil
	}
	return Rebuild(s.Lines(body), s.marker), s
}

// ReferenceLines rebuilds the reference lines of a text made only of
// references. A reference section title, if present, is skipped; the
// end-of-section heuristics are not applied.
func ReferenceLines(body []string) []string {
	s := Locate(body)
	if s == nil {
		return Rebuild(body, nil)
	}
	whole := *s
	whole.End = len(body)
	if whole.HowFound != FoundByTitle {
		whole.Start = 0
	}
	return Rebuild(whole.Lines(body), s.marker)
}

// Rebuild joins physical lines into reference lines. A line where marker
// matches starts a new reference when its number follows the previous
// one; unnumbered markers always start one. Text before the marker stays
// with the previous reference.
//
// With a nil marker, references are separated by blank lines if the text
// has them, and by unindented lines otherwise.
func Rebuild(lines []string, marker *regexp2.Regexp) []string {
	byIndent := false
	if marker == nil {
		if blankSeparated(lines) {
			marker = blankLine
		} else {
			marker, byIndent = unindented, true
		}
	}

	var (
		out     []string
		working []string
		current int
	)
	flush := func() {
		if ref := joinReference(working); ref != "" {
			out = append(out, ref)
		}
		working = nil
	}
	add := func(s string) {
		if strings.TrimSpace(s) != "" {
			working = append(working, s)
		}
	}

	for _, line := range lines {
		m := grammar.Find(marker, line)
		if m == nil {
			add(line)
			continue
		}

		num, numbered := markNum(m)
		starts := !numbered || num == current+1
		if byIndent && len(working) > 0 {
			if grammar.Match(lowerStart, line) || grammar.Match(continues, working[len(working)-1]) {
				starts = false
			}
		}
		if !starts {
			add(line)
			continue
		}

		start, _ := grammar.Span(m)
		add(grammar.Slice(line, 0, start))
		flush()
		if numbered {
			current = num
		}
		add(grammar.Slice(line, start, grammar.Len(line)))
	}
	flush()
	return out
}

func markNum(m *regexp2.Match) (int, bool) {
	if !grammar.Matched(m, "marknum") {
		return 0, false
	}
	n, err := strconv.Atoi(grammar.Group(m, "marknum"))
	if err != nil {
		return 0, false
	}
	return n, true
}

// blankSeparated reports whether blank lines separate at least two
// pairs of text lines.
func blankSeparated(lines []string) bool {
	gaps, text, blank := 0, false, false
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			blank = text
			continue
		}
		if blank {
			gaps++
		}
		text, blank = true, false
	}
	return gaps >= 2
}

func joinReference(lines []string) string {
	var ref string
	for _, l := range lines {
		ref = joinLines(ref, strings.TrimSpace(l))
	}
	return strings.TrimSpace(ref)
}

// joinLines appends next to line. A word hyphenated across the break is
// rejoined; other hyphens, such as page ranges, are kept.
func joinLines(line, next string) string {
	switch {
	case line == "":
		return next
	case strings.HasSuffix(line, "-"):
		r := []rune(line)
		if len(r) > 1 && unicode.IsLetter(r[len(r)-2]) {
			return string(r[:len(r)-1]) + next
		}
		return line + next
	case strings.HasSuffix(line, " "):
		return line + next
	}
	return line + " " + next
}
