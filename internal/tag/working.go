package tag

import (
	"sort"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"

	"github.com/inspirehep/refextract/internal/grammar"
	"github.com/inspirehep/refextract/internal/kb"
)

// blankTags overwrites every tagged fragment with underscores so later
// passes neither see nor re-tag it. Rune offsets are preserved.
func blankTags(line string) string {
	runes := []rune(line)
	for _, re := range []*regexp2.Regexp{grammar.TaggedSpan, grammar.AnyTag} {
		for _, m := range grammar.FindAll(re, string(runes)) {
			for i := m.Index; i < m.Index+m.Length; i++ {
				runes[i] = '_'
			}
		}
	}
	return string(runes)
}

// workingLine is the upper-cased, punctuation-free copy of the line that
// titles, report numbers, ibids and publishers are searched in.
type workingLine struct {
	text string
	// spaces maps a position in the uncollapsed line to the number of
	// whitespace runes removed there.
	spaces map[int]int
}

func newWorkingLine(line string) workingLine {
	runes := []rune(blankTags(line))
	for i, r := range runes {
		runes[i] = unicode.ToUpper(r)
	}
	text := grammar.ReplaceAll(grammar.Punctuation, string(runes), " ")

	spaces := make(map[int]int)
	for _, m := range grammar.FindAll(grammar.MultipleSpace, text) {
		spaces[m.Index] = m.Length - 1
	}
	return workingLine{
		text:   grammar.ReplaceAll(grammar.MultipleSpace, text, " "),
		spaces: spaces,
	}
}

type reportMatch struct {
	length int
	text   string
}

// findings are what the working line yielded, keyed by position in it.
type findings struct {
	journals   map[int]string // title phrase, or the ibid text
	reports    map[int]reportMatch
	publishers map[int]kb.Publisher
	spaces     map[int]int
}

func (f findings) empty() bool {
	return len(f.journals)+len(f.reports)+len(f.publishers) == 0
}

// find runs report numbers, journal titles, ibids and publishers over the
// working line, in that order, each blanking what it consumed.
func (w workingLine) find(kbs *kb.Set, titleCounts map[string]int) findings {
	f := findings{
		journals:   make(map[int]string),
		reports:    make(map[int]reportMatch),
		publishers: make(map[int]kb.Publisher),
		spaces:     w.spaces,
	}
	line := w.text
	if kbs.ReportNumbers != nil {
		line = identifyReportNumbers(line, kbs.ReportNumbers, f.reports)
	}
	if kbs.Journals != nil {
		line = identifyJournals(line, kbs.Journals, f.journals, titleCounts)
	}
	if strings.Contains(line, "IBID") {
		var ibids map[int]string
		ibids, line = IdentifyIbids(line)
		for pos, text := range ibids {
			f.journals[pos] = text
		}
	}
	if kbs.Publishers != nil {
		for _, p := range kbs.Publishers.List {
			for _, m := range grammar.FindAll(p.Pattern, line) {
				f.publishers[m.Index] = p
			}
		}
	}
	return f
}

func blank(runes []rune, start, length int) {
	for i := start; i < start+length && i < len(runes); i++ {
		runes[i] = '_'
	}
}

// identifyReportNumbers records standardized report numbers found in line.
// Slashes count as separators so "CERN/LHCC/98-013" is found.
func identifyReportNumbers(line string, rn *kb.ReportNumbers, out map[int]reportMatch) string {
	line = strings.ReplaceAll(line, "/", " ")
	for _, c := range rn.Categories {
		matches := grammar.FindAll(c.Pattern, line)
		if len(matches) == 0 {
			continue
		}
		runes := []rune(line)
		for _, m := range matches {
			start, end := grammar.GroupSpan(m, "repnum")
			num := strings.Join(strings.Fields(strings.Trim(grammar.Group(m, "numn"), " -")), "-")
			text := c.Standard
			if !strings.HasSuffix(text, "-") {
				text += "-"
			}
			out[start] = reportMatch{length: end - start, text: text + num}
			blank(runes, start, end-start)
		}
		line = string(runes)
	}
	return line
}

// identifyJournals records title phrases found in line, longest phrase
// first, and counts every match per phrase.
func identifyJournals(line string, j *kb.Journals, out map[int]string, counts map[string]int) string {
	for _, phrase := range j.Phrases {
		matches := grammar.FindAll(j.Patterns[phrase], line)
		if len(matches) == 0 {
			continue
		}
		runes := []rune(line)
		n := grammar.Len(phrase)
		for _, m := range matches {
			counts[phrase]++
			out[m.Index] = phrase
			blank(runes, m.Index, n)
		}
		line = string(runes)
	}
	return line
}

// IdentifyIbids finds IBID and IBIDEM in an upper-cased line. It returns
// the matched text by position and the line with each match replaced by
// underscores.
func IdentifyIbids(line string) (map[int]string, string) {
	found := make(map[int]string)
	matches := grammar.FindAll(grammar.Ibid, line)
	if len(matches) == 0 {
		return found, line
	}
	runes := []rune(line)
	for _, m := range matches {
		found[m.Index] = m.String()
		blank(runes, m.Index, m.Length)
	}
	return found, string(runes)
}

type replacementKind int

const (
	replaceJournal replacementKind = iota
	replaceReport
	replacePublisher
)

// replacements orders what was found by position. A report number wins
// over a title at the same spot, and a title over a publisher.
func (f findings) replacements() ([]int, map[int]replacementKind) {
	kinds := make(map[int]replacementKind)
	for p := range f.journals {
		kinds[p] = replaceJournal
	}
	for p := range f.reports {
		kinds[p] = replaceReport
	}
	for p := range f.publishers {
		if _, ok := f.journals[p]; !ok {
			kinds[p] = replacePublisher
		}
	}
	positions := make([]int, 0, len(kinds))
	for p := range kinds {
		positions = append(positions, p)
	}
	sort.Ints(positions)
	return positions, kinds
}

// trueIndex maps a position in the collapsed working line back to the
// reading line. extras counts whitespace collapsed inside the match itself.
func (f findings) trueIndex(pos, matchLen int) (index, extras int) {
	keys := make([]int, 0, len(f.spaces))
	for k := range f.spaces {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	index, spare := pos, pos
	for _, k := range keys {
		n := f.spaces[k]
		switch {
		case k < index:
			index += n
			spare += n
		case k >= spare && k < spare+matchLen:
			spare += n
			extras += n
		}
	}
	return index, extras
}

type previousTitle struct {
	title  string
	series string
}

// rebuilder writes the reading line back out with titles, report numbers
// and publishers tagged.
type rebuilder struct {
	reading  []rune
	startpos int
	previous *previousTitle
	titles   map[string]string
}

func (r *rebuilder) slice(from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(r.reading) {
		to = len(r.reading)
	}
	if from >= to {
		return ""
	}
	return string(r.reading[from:to])
}

// skipPunctuation moves pos past punctuation trailing a title.
func (r *rebuilder) skipPunctuation(pos int) int {
	for pos < len(r.reading) && strings.ContainsRune(".:-)", r.reading[pos]) {
		pos++
	}
	return pos
}

func splitSeries(standard string) (title, series string) {
	if i := strings.LastIndex(standard, ";"); i >= 0 {
		return standard[:i], strings.TrimSpace(standard[i+1:])
	}
	return standard, ""
}

// addJournal tags a title or an ibid at index and the numeration after it.
// A title without numeration is left untouched.
func (r *rebuilder) addJournal(info string, index, extras int) string {
	oldStart, oldPrevious := r.startpos, r.previous
	chunk := r.slice(r.startpos, index)
	var series string

	if strings.Contains(strings.ToUpper(info), "IBID") {
		if r.previous == nil {
			return ""
		}
		series = r.previous.series
		chunk += "<cds.JOURNALibid>" + r.previous.title + "</cds.JOURNALibid>"
	} else {
		var title string
		title, series = splitSeries(r.titles[info])
		r.previous = &previousTitle{title: title, series: series}
		chunk += "<cds.JOURNAL>" + title + "</cds.JOURNAL>"
	}
	r.startpos = r.skipPunctuation(index + grammar.Len(info) + extras)

	rest := r.slice(r.startpos, len(r.reading))
	n, ok := FindNumeration(rest)
	if !ok {
		n, ok = FindNumerationMore(chunk + " " + rest)
		// the joining space is not part of the reading line
		n.Len = max(n.Len-1, 0)
	}
	if !ok {
		r.startpos, r.previous = oldStart, oldPrevious
		return ""
	}
	if series != "" && n.Series == "" {
		n.Series = series
	}
	r.startpos += n.Len
	chunk += n.tag()
	if r.previous != nil {
		r.previous = &previousTitle{title: r.previous.title, series: n.Series}
	}
	return chunk
}

func (r *rebuilder) addReport(m reportMatch, index, extras int) string {
	chunk := r.slice(r.startpos, index) + "<cds.REPORTNUMBER>" + m.text + "</cds.REPORTNUMBER>"
	r.startpos = index + m.length + extras
	return chunk
}

func (r *rebuilder) addPublisher(p kb.Publisher, index int) string {
	chunk := r.slice(r.startpos, index) + "<cds.PUBLISHER>" + p.Repl + "</cds.PUBLISHER>"
	r.startpos = index + grammar.Len(p.Name)
	return chunk
}

// rebuild applies the findings to the reading line. Findings that overlap
// text already consumed are skipped.
func (f findings) rebuild(reading string, titles map[string]string) string {
	if f.empty() {
		return reading
	}
	r := &rebuilder{reading: []rune(reading), titles: titles}
	positions, kinds := f.replacements()

	var b strings.Builder
	for _, pos := range positions {
		kind := kinds[pos]
		matchLen := 0
		switch kind {
		case replaceJournal:
			matchLen = grammar.Len(f.journals[pos])
		case replaceReport:
			matchLen = f.reports[pos].length
		}
		index, extras := f.trueIndex(pos, matchLen)
		if index < r.startpos {
			continue
		}
		switch kind {
		case replaceJournal:
			b.WriteString(r.addJournal(f.journals[pos], index, extras))
		case replaceReport:
			b.WriteString(r.addReport(f.reports[pos], index, extras))
		case replacePublisher:
			b.WriteString(r.addPublisher(f.publishers[pos], index))
		}
	}
	b.WriteString(r.slice(r.startpos, len(r.reading)))
	return b.String()
}
