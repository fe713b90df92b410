// Package parse turns a tagged reference line into citation elements.
package parse

import (
	"strings"

	"github.com/inspirehep/refextract/internal/grammar"
	"github.com/inspirehep/refextract/internal/reference"
	"github.com/inspirehep/refextract/internal/tag"
)

// TagKind is the kind of a <cds.X> tag.
type TagKind int

const (
	TagJournal TagKind = iota
	TagJournalIbid
	TagReportNumber
	TagArxiv
	TagURL
	TagDOI
	TagAuthStnd
	TagAuthEtal
	TagAuthIncl
	TagSeries
	TagVolume
	TagYear
	TagPage
	TagQuoted
	TagISBN
	TagPublisher
	TagCollaboration
)

var tagNames = [...]string{
	TagJournal:       "JOURNAL",
	TagJournalIbid:   "JOURNALibid",
	TagReportNumber:  "REPORTNUMBER",
	TagArxiv:         "ARXIV",
	TagURL:           "URL",
	TagDOI:           "DOI",
	TagAuthStnd:      "AUTHstnd",
	TagAuthEtal:      "AUTHetal",
	TagAuthIncl:      "AUTHincl",
	TagSeries:        "SER",
	TagVolume:        "VOL",
	TagYear:          "YR",
	TagPage:          "PG",
	TagQuoted:        "QUOTED",
	TagISBN:          "ISBN",
	TagPublisher:     "PUBLISHER",
	TagCollaboration: "COLLABORATION",
}

// ParseTagKind maps a tag name such as "JOURNALibid" to its kind.
func ParseTagKind(name string) (TagKind, bool) {
	for k, n := range tagNames {
		if n == name {
			return TagKind(k), true
		}
	}
	return 0, false
}

// Name returns the tag name as written in a tagged line.
func (k TagKind) Name() string {
	if k < 0 || int(k) >= len(tagNames) {
		return ""
	}
	return tagNames[k]
}

// Closing returns the closing tag for k.
func (k TagKind) Closing() string {
	return "</cds." + k.Name() + ">"
}

// parser holds the state of one left-to-right scan.
type parser struct {
	rest     string
	misc     strings.Builder
	dois     []string
	urls     []tag.URL
	elements []reference.Element
	counts   reference.Counts
}

// TaggedLine parses a tagged line into elements. dois and urls are the
// identifiers pulled out of the line, in the order their placeholders
// appear. Tags without a closing tag are dropped along with their content.
func TaggedLine(marker, line string, dois []string, urls []tag.URL) ([]reference.Element, string, reference.Counts) {
	p := &parser{
		rest: line,
		dois: append([]string(nil), dois...),
		urls: append([]tag.URL(nil), urls...),
	}
	for p.next() {
	}

	p.misc.WriteString(p.rest)
	if misc := p.misc.String(); strings.Trim(misc, " .;,") != "" {
		p.counts.Misc++
		p.elements = append(p.elements, reference.Misc(misc))
	}
	return p.elements, marker, p.counts
}

// takeMisc returns the misc text gathered so far and resets it.
func (p *parser) takeMisc() string {
	s := p.misc.String()
	p.misc.Reset()
	return s
}

// next handles the next tag in the line. It reports false when none is
// left.
func (p *parser) next() bool {
	m := grammar.Find(grammar.TaggedCitation, p.rest)
	if m == nil {
		return false
	}
	runes := []rune(p.rest)
	p.misc.WriteString(string(runes[:m.Index]))
	p.rest = string(runes[m.Index+m.Length:])

	kind, ok := ParseTagKind(grammar.Group(m, "tag"))
	if !ok {
		return true
	}

	switch kind {
	case TagJournal, TagJournalIbid:
		p.journal(kind)
	case TagReportNumber, TagArxiv:
		if content, ok := p.content(kind); ok {
			p.counts.ReportNum++
			p.add(reference.Element{Kind: reference.KindReportNumber, ReportNum: content, IsArxiv: kind == TagArxiv})
		}
	case TagURL:
		if len(p.urls) == 0 {
			return true
		}
		u := p.urls[0]
		p.urls = p.urls[1:]
		p.counts.URL++
		p.add(reference.Element{Kind: reference.KindURL, URL: u.URL, URLDesc: u.Desc})
	case TagDOI:
		if len(p.dois) == 0 {
			return true
		}
		doi := p.dois[0]
		p.dois = p.dois[1:]
		p.counts.DOI++
		p.add(reference.Element{Kind: reference.KindDOI, DOI: doi})
	case TagAuthStnd, TagAuthEtal, TagAuthIncl:
		if content, ok := p.content(kind); ok {
			p.counts.AuthGroup++
			p.add(reference.Element{Kind: reference.KindAuth, AuthText: content, AuthType: authType(kind)})
		}
	case TagSeries, TagVolume, TagYear, TagPage:
		// numeration without a title carries no citation
		if content, ok := p.content(kind); ok {
			p.misc.WriteString(content)
		}
	case TagQuoted:
		if content, ok := p.content(kind); ok {
			p.add(reference.Element{Kind: reference.KindQuoted, Title: content})
		}
	case TagISBN:
		if content, ok := p.content(kind); ok {
			p.add(reference.Element{Kind: reference.KindISBN, ISBN: content})
		}
	case TagPublisher:
		if content, ok := p.content(kind); ok {
			p.add(reference.Element{Kind: reference.KindPublisher, Publisher: content})
		}
	case TagCollaboration:
		if content, ok := p.content(kind); ok {
			p.add(reference.Element{Kind: reference.KindCollaboration, Collaboration: content})
		}
	}
	return true
}

// content consumes the text up to the closing tag of kind. Without a
// closing tag only the opening tag is consumed and ok is false.
func (p *parser) content(kind TagKind) (string, bool) {
	closing := kind.Closing()
	i := strings.Index(p.rest, closing)
	if i < 0 {
		return "", false
	}
	content := p.rest[:i]
	p.rest = p.rest[i+len(closing):]
	return content, true
}

// add appends el, attaching the pending misc text.
func (p *parser) add(el reference.Element) {
	el.MiscText = p.takeMisc()
	p.elements = append(p.elements, el)
}

func authType(kind TagKind) reference.AuthType {
	switch kind {
	case TagAuthEtal:
		return reference.AuthEtAl
	case TagAuthIncl:
		return reference.AuthIncluded
	}
	return reference.AuthStandard
}

// journal handles a title tag. The title only becomes an element when
// numeration follows it; otherwise its text joins the misc text. Bare
// numerations right after are kept as extra ibids of the same title.
func (p *parser) journal(kind TagKind) {
	title, ok := p.content(kind)
	if !ok {
		return
	}

	m := grammar.Find(grammar.NumerationTitlePlusSeries, p.rest)
	if m == nil {
		p.misc.WriteString(title)
		return
	}
	el := reference.Element{
		Kind:   reference.KindJournal,
		Title:  title,
		Volume: grammar.Group(m, "series") + grammar.Group(m, "vol"),
		Year:   grammar.Group(m, "yr"),
		IsIbid: kind == TagJournalIbid,
	}
	el.Page, el.PageEnd = pages(grammar.Group(m, "pg"))
	p.rest = string([]rune(p.rest)[m.Index+m.Length:])
	p.counts.Title++

	for {
		m := grammar.Find(grammar.NumerationNoIbid, p.rest)
		if m == nil {
			break
		}
		extra := reference.Element{
			Kind:   reference.KindJournal,
			Title:  title,
			Volume: grammar.Group(m, "series") + grammar.Group(m, "vol"),
			Year:   grammar.Group(m, "yr"),
		}
		extra.Page, extra.PageEnd = pages(grammar.Group(m, "pg"))
		el.ExtraIbids = append(el.ExtraIbids, extra)
		p.rest = string([]rune(p.rest)[m.Index+m.Length:])
		p.counts.Title++
	}
	p.add(el)
}

// pages returns the page text and, for a range, its last page.
func pages(pg string) (page, end string) {
	if i := strings.LastIndex(pg, "-"); i > 0 {
		return pg, pg[i+1:]
	}
	return pg, ""
}
