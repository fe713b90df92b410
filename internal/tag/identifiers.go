package tag

import (
	"net/url"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/inspirehep/refextract/internal/grammar"
)

// Self-closing tags left where a DOI or URL was pulled out of the line.
const (
	DOIPlaceholder = "<cds.DOI />"
	URLPlaceholder = "<cds.URL />"
)

// StripMarker removes a leading reference marker such as "[12]". A line
// without a marker yields the placeholder marker " ".
func StripMarker(line string) (marker, rest string) {
	line = strings.TrimLeft(line, " \t\r\n\f\v")
	for _, re := range grammar.Markers {
		m := grammar.Find(re, line)
		if m == nil {
			continue
		}
		rest = grammar.Slice(line, m.Index+m.Length, grammar.Len(line))
		return grammar.Group(m, "mark"), strings.TrimLeft(rest, " \t\r\n\f\v")
	}
	return " ", line
}

// TagDOIs replaces every DOI in line with a placeholder and returns the
// DOIs left to right. URL-encoded slashes are decoded.
func TagDOIs(line string) (string, []string) {
	var dois []string
	tagged := grammar.Replace(grammar.DOI, line, func(m *regexp2.Match) string {
		doi := grammar.Group(m, "doi")
		if strings.Contains(strings.ToLower(doi), "%2f") {
			if unescaped, err := url.PathUnescape(doi); err == nil {
				doi = unescaped
			}
		}
		dois = append(dois, doi)
		return DOIPlaceholder
	})
	return tagged, dois
}

// URL is one URL pulled out of a line, with its anchor text.
type URL struct {
	URL  string
	Desc string
}

// TagURLs replaces HTML anchors and bare URLs with placeholders and returns
// them left to right. A trailing '.' or ',' on a bare URL stays in the line.
func TagURLs(line string) (string, []URL) {
	type found struct {
		length int
		url    URL
	}
	runes := []rune(line)
	matches := make(map[int]found)
	blank := func(start, length int) {
		for i := start; i < start+length && i < len(runes); i++ {
			runes[i] = '_'
		}
	}

	for _, m := range grammar.FindAll(grammar.HTMLURL, line) {
		matches[m.Index] = found{m.Length, URL{URL: grammar.Group(m, "url"), Desc: grammar.Group(m, "desc")}}
		blank(m.Index, m.Length)
	}
	for _, m := range grammar.FindAll(grammar.RawURL, string(runes)) {
		u := grammar.Group(m, "url")
		length := m.Length
		if strings.HasSuffix(u, ".") || strings.HasSuffix(u, ",") {
			u = u[:len(u)-1]
			length--
		}
		matches[m.Index] = found{length, URL{URL: u, Desc: u}}
		blank(m.Index, length)
	}
	if len(matches) == 0 {
		return line, nil
	}

	positions := make([]int, 0, len(matches))
	for p := range matches {
		positions = append(positions, p)
	}
	sort.Ints(positions)

	orig := []rune(line)
	var b strings.Builder
	urls := make([]URL, 0, len(positions))
	last := 0
	for _, p := range positions {
		f := matches[p]
		b.WriteString(string(orig[last:p]))
		b.WriteString(URLPlaceholder)
		last = p + f.length
		urls = append(urls, f.url)
	}
	b.WriteString(string(orig[last:]))
	return b.String(), urls
}

// washLine tidies spacing around punctuation and unifies hyphens.
func washLine(line string) string {
	line = grammar.ReplaceAll(grammar.SpaceComma, line, ",")
	line = grammar.ReplaceAll(grammar.SpaceSemicolon, line, ";")
	line = grammar.ReplaceAll(grammar.SpacePeriod, line, ".")
	line = grammar.ReplaceAll(grammar.ColonSpaceColon, line, ":")
	line = grammar.ReplaceAll(grammar.CommaSpaceColon, line, ":")
	line = grammar.ReplaceAll(grammar.SpaceClosingBracket, line, "]")
	line = grammar.ReplaceAll(grammar.OpeningBracketSpace, line, "[")
	line = grammar.ReplaceAll(grammar.Hyphens, line, "-")
	return grammar.ReplaceAll(grammar.MultipleSpace, line, " ")
}

func tagQuoted(line string) string {
	return grammar.Replace(grammar.Quoted, line, func(m *regexp2.Match) string {
		title := strings.TrimSpace(grammar.Group(m, "title"))
		title = strings.TrimSpace(strings.TrimRight(title, ","))
		return "<cds.QUOTED>" + title + "</cds.QUOTED>"
	})
}

func tagISBN(line string) string {
	return grammar.Replace(grammar.ISBN, line, func(m *regexp2.Match) string {
		return "<cds.ISBN>" + grammar.Group(m, "code") + "</cds.ISBN>"
	})
}

// tagArxiv tags new-style arXiv identifiers, with or without an "arXiv:"
// prefix. Versions are dropped.
func tagArxiv(line string) string {
	tagger := func(m *regexp2.Match) string {
		suffix := grammar.Group(m, "suffix")
		if suffix != "" {
			suffix = " " + suffix
		}
		return "<cds.ARXIV>arXiv:" + grammar.Group(m, "year") + grammar.Group(m, "month") +
			"." + grammar.Group(m, "num") + suffix + "</cds.ARXIV>"
	}
	for _, re := range []*regexp2.Regexp{
		grammar.Arxiv5Digits, grammar.Arxiv4Digits,
		grammar.ArxivNew5Digits, grammar.ArxivNew4Digits,
	} {
		line = grammar.Replace(re, line, tagger)
	}
	return line
}

// tagOldArxiv tags archive/YYMMNNN identifiers, fixing misspelled archive
// names on the way.
func tagOldArxiv(line string) string {
	line = grammar.Replace(grammar.ArxivCatchup, line, func(m *regexp2.Match) string {
		return grammar.Group(m, "suffix") + "/" + grammar.Group(m, "year") +
			grammar.Group(m, "month") + grammar.Group(m, "num")
	})
	for _, old := range grammar.OldArxivPatterns {
		line = grammar.Replace(old.Re, line, func(m *regexp2.Match) string {
			archive := old.Archive
			if archive == "" {
				archive = strings.ToLower(grammar.Group(m, "name"))
			}
			return "<cds.ARXIV>" + archive + "/" + grammar.Group(m, "num") + "</cds.ARXIV>"
		})
	}
	return line
}

var posYear = regexp2.MustCompile(`(?:19|20)\d{2}`, regexp2.None)

// tagPoS tags Proceedings of Science citations, whose volume name carries
// the year.
func tagPoS(line string) string {
	for _, re := range grammar.PoSPattern {
		line = grammar.Replace(re, line, func(m *regexp2.Match) string {
			year := grammar.Group(m, "year")
			if year == "" {
				if y := grammar.Find(posYear, grammar.Group(m, "volume_num")); y != nil {
					year = y.String()
				}
			}
			year = strings.Trim(strings.TrimSpace(year), "()")

			var b strings.Builder
			b.WriteString("<cds.JOURNAL>PoS</cds.JOURNAL>")
			b.WriteString(" <cds.VOL>" + grammar.Group(m, "volume_name") + grammar.Group(m, "volume_num") + "</cds.VOL>")
			if year != "" {
				b.WriteString(" <cds.YR>(" + year + ")</cds.YR>")
			}
			b.WriteString(" <cds.PG>" + grammar.Group(m, "page") + "</cds.PG>")
			return b.String()
		})
	}
	return line
}

// tagAtlasConf tags ATLAS conference notes, whose prefix changed in 2010.
func tagAtlasConf(line string) string {
	line = grammar.Replace(grammar.AtlasConfPre2010, line, func(m *regexp2.Match) string {
		return "<cds.REPORTNUMBER>ATL-CONF-" + grammar.Group(m, "code") + "</cds.REPORTNUMBER>"
	})
	return grammar.Replace(grammar.AtlasConfPost2010, line, func(m *regexp2.Match) string {
		return "<cds.REPORTNUMBER>ATLAS-CONF-" + grammar.Group(m, "code") + "</cds.REPORTNUMBER>"
	})
}
