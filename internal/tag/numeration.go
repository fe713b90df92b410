package tag

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/inspirehep/refextract/internal/grammar"
)

// Numeration is the volume, year and page information found after a
// journal title.
type Numeration struct {
	Year    string
	Series  string
	Volume  string
	Page    string
	PageEnd string
	// Len is the number of runes of the input the numeration spans.
	Len int
}

// FindNumeration looks for numeration at the very start of s.
func FindNumeration(s string) (Numeration, bool) {
	for _, re := range grammar.Numeration {
		m := grammar.Find(re, s)
		if m == nil {
			continue
		}
		n := numerationFromMatch(m)
		n.Len = m.Index + m.Length
		return n, true
	}
	return Numeration{}, false
}

// FindNumerationMore is the second attempt, made on the rebuilt text around
// a tagged title: the year may come before the title. Len spans only the
// text after the title tag.
func FindNumerationMore(s string) (Numeration, bool) {
	for _, re := range grammar.NumerationAround {
		m := grammar.Find(re, s)
		if m == nil {
			continue
		}
		n := numerationFromMatch(m)
		n.Len = grammar.Len(grammar.Group(m, "aftertitle"))
		return n, true
	}
	return Numeration{}, false
}

func numerationFromMatch(m *regexp2.Match) Numeration {
	n := Numeration{
		Year:    grammar.Group(m, "year"),
		Series:  grammar.Group(m, "series"),
		Volume:  grammar.Group(m, "vol_num"),
		Page:    grammar.Group(m, "page"),
		PageEnd: grammar.Group(m, "page_end"),
	}
	if n.Series == "" {
		n.Series = SeriesFromVolume(grammar.Group(m, "vol"))
	}
	if n.Volume == "" {
		n.Volume = grammar.Group(m, "vol_num_alt")
	}
	if n.Volume == "" {
		n.Volume = grammar.Group(m, "vol_num_alt2")
	}
	if n.Page == "" {
		n.Page = grammar.Group(m, "jinst_page")
	}
	return n
}

// SeriesFromVolume returns the series letter written before or after a
// volume number, as in "B 212" or "212B".
func SeriesFromVolume(volume string) string {
	for _, re := range []*regexp2.Regexp{grammar.SeriesBeforeVolume, grammar.SeriesAfterVolume} {
		if m := grammar.Find(re, volume); m != nil {
			return grammar.Group(m, "series")
		}
	}
	return ""
}

// tag renders the numeration as VOL, YR and PG tags.
func (n Numeration) tag() string {
	var b strings.Builder
	b.WriteString(" <cds.VOL>" + n.Series + n.Volume + "</cds.VOL>")
	if n.Year != "" {
		b.WriteString(" <cds.YR>(" + n.Year + ")</cds.YR>")
	}
	page := n.Page
	if n.PageEnd != "" {
		page += "-" + n.PageEnd
	}
	b.WriteString(" <cds.PG>" + page + "</cds.PG>")
	return b.String()
}
