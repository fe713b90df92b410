// Package transform normalizes the elements parsed from one reference line
// before they are split into citations.
//
// Each pass builds a new slice; the input is never modified. Running Apply
// on its own output changes nothing.
package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/inspirehep/refextract/internal/grammar"
	"github.com/inspirehep/refextract/internal/kb"
	"github.com/inspirehep/refextract/internal/reference"
)

// Special journals number volumes by year: JHEP 01 of 2003 is volume 0301.
const (
	// maxSpecialVolumeDigits is the longest volume still missing its year.
	maxSpecialVolumeDigits = 2
	// specialPageDigits is the width special-journal pages are padded to.
	specialPageDigits = 3
)

// nuclPhysProcSuppl keeps its volumes without the B series letter.
const nuclPhysProcSuppl = "Nucl.Phys.Proc.Suppl."

const arxivAbsPrefix = "http://arxiv.org/abs/"

var (
	reRomanVolume    = regexp2.MustCompile(`^[XxVvIi]+$`, regexp2.None)
	reShortVolume    = regexp2.MustCompile(`^\d{1,`+strconv.Itoa(maxSpecialVolumeDigits)+`}$`, regexp2.None)
	rePageIsYear     = regexp2.MustCompile(`^(?:19|20)\d{2}$`, regexp2.None)
	reReportNoDash   = regexp2.MustCompile(`^(?<name>[A-Z-]+)(?<nums>[\d-]+)$`, regexp2.None)
	reTrailingLetter = regexp2.MustCompile(`^(?<num>\d+)(?<letter>[A-Z])`, regexp2.IgnoreCase)
)

var hepPrefixes = []string{"astro-ph-", "hep-th-", "hep-ph-", "hep-ex-", "hep-lat-", "math-ph-"}

// Apply runs every normalization pass over elements, in order.
func Apply(elements []reference.Element, kbs *kb.Set) []reference.Element {
	if kbs == nil {
		kbs = &kb.Set{}
	}
	passes := []func([]reference.Element) []reference.Element{
		SplitVolumeFromTitle,
		FormatVolume,
		func(els []reference.Element) []reference.Element { return SpecialJournals(els, kbs.SpecialJournals) },
		FormatReportNumber,
		FormatHEP,
		FormatAuthorEd,
		func(els []reference.Element) []reference.Element { return LookForBooks(els, kbs.Books) },
		RemoveBForNuclPhys,
		MangleVolume,
		ArxivURLsToReportNumbers,
		LookForHDL,
		LookForHDLURLs,
	}
	out := append([]reference.Element(nil), elements...)
	for _, pass := range passes {
		out = pass(out)
	}
	return out
}

// mapKind applies fn to a copy of every element of kind.
func mapKind(elements []reference.Element, kind reference.Kind, fn func(reference.Element) reference.Element) []reference.Element {
	out := make([]reference.Element, len(elements))
	for i, el := range elements {
		if el.Kind == kind {
			el = fn(el)
		}
		out[i] = el
	}
	return out
}

// SplitVolumeFromTitle moves a series attached to the title ("Phys. Lett.;B")
// to the front of the volume.
func SplitVolumeFromTitle(elements []reference.Element) []reference.Element {
	return mapKind(elements, reference.KindJournal, func(el reference.Element) reference.Element {
		if i := strings.LastIndex(el.Title, ";"); i >= 0 {
			el.Volume = el.Title[i+1:] + el.Volume
			el.Title = el.Title[:i]
		}
		return el
	})
}

// FormatVolume writes roman-numeral volumes in arabic numerals.
func FormatVolume(elements []reference.Element) []reference.Element {
	return mapKind(elements, reference.KindJournal, func(el reference.Element) reference.Element {
		if grammar.Match(reRomanVolume, el.Volume) {
			el.Volume = strconv.Itoa(RomanToArabic(el.Volume))
		}
		return el
	})
}

// RomanToArabic converts a roman numeral. Unknown letters count as zero.
func RomanToArabic(s string) int {
	values := map[rune]int{'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000}
	total, prev := 0, 0
	runes := []rune(strings.ToUpper(s))
	for i := len(runes) - 1; i >= 0; i-- {
		v := values[runes[i]]
		if v < prev {
			total -= v
		} else {
			total += v
			prev = v
		}
	}
	return total
}

// SpecialJournals prefixes short volumes of special journals with the
// two-digit year and pads their pages. A short volume with no year and a
// page that looks like a year is unreliable and becomes misc text.
func SpecialJournals(elements []reference.Element, special *kb.SpecialJournals) []reference.Element {
	return mapKind(elements, reference.KindJournal, func(el reference.Element) reference.Element {
		if !special.Has(el.Title) {
			return el
		}
		if grammar.Match(reShortVolume, el.Volume) {
			if el.Year == "" && grammar.Match(rePageIsYear, el.Page) {
				el.Kind = reference.KindMisc
				el.MiscText = el.Title + "," + el.Volume + "," + el.Page
			}
			n, _ := strconv.Atoi(el.Volume)
			el.Volume = lastN(el.Year, 2) + fmt.Sprintf("%0*d", maxSpecialVolumeDigits, n)
		}
		if isDigits(el.Page) {
			n, _ := strconv.Atoi(el.Page)
			el.Page = fmt.Sprintf("%0*d", specialPageDigits, n)
		}
		return el
	})
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatReportNumber inserts the dash missing between an all-caps report
// prefix and its trailing number: CERNLHCC2003-01 becomes CERNLHCC-2003-01.
func FormatReportNumber(elements []reference.Element) []reference.Element {
	return mapKind(elements, reference.KindReportNumber, func(el reference.Element) reference.Element {
		m := grammar.Find(reReportNoDash, el.ReportNum)
		if m == nil {
			return el
		}
		if name := grammar.Group(m, "name"); !strings.HasSuffix(name, "-") {
			el.ReportNum = name + "-" + grammar.Group(m, "nums")
		}
		return el
	})
}

// FormatHEP writes hep-th-9711200 as hep-th/9711200.
func FormatHEP(elements []reference.Element) []reference.Element {
	return mapKind(elements, reference.KindReportNumber, func(el reference.Element) reference.Element {
		for _, p := range hepPrefixes {
			if strings.HasPrefix(el.ReportNum, p) {
				el.ReportNum = p[:len(p)-1] + "/" + el.ReportNum[len(p):]
			}
		}
		return el
	})
}

// FormatAuthorEd tightens "(ed. )" and "(eds. )" in author text.
func FormatAuthorEd(elements []reference.Element) []reference.Element {
	return mapKind(elements, reference.KindAuth, func(el reference.Element) reference.Element {
		el.AuthText = strings.ReplaceAll(el.AuthText, "(ed. )", "(ed.)")
		el.AuthText = strings.ReplaceAll(el.AuthText, "(eds. )", "(eds.)")
		return el
	})
}

// LookForBooks replaces the first quoted title with a BOOK element when
// the title is a known book. The book goes to the end of the line.
func LookForBooks(elements []reference.Element, books *kb.Books) []reference.Element {
	i := reference.Citation(elements).Index(reference.KindQuoted)
	if i < 0 || books == nil {
		return elements
	}
	book, ok := books.ByTitle[strings.ToUpper(elements[i].Title)]
	if !ok {
		return elements
	}
	out := make([]reference.Element, 0, len(elements))
	out = append(out, elements[:i]...)
	out = append(out, elements[i+1:]...)
	return append(out, reference.Element{
		Kind:    reference.KindBook,
		Authors: book.Authors,
		Title:   book.Title,
		Year:    strings.Trim(book.Year, ";"),
	})
}

// RemoveBForNuclPhys drops the B series from Nucl.Phys.Proc.Suppl. volumes.
func RemoveBForNuclPhys(elements []reference.Element) []reference.Element {
	return mapKind(elements, reference.KindJournal, func(el reference.Element) reference.Element {
		if el.Title == nuclPhysProcSuppl && (strings.HasPrefix(el.Volume, "B") || strings.HasPrefix(el.Volume, "b")) {
			el.Volume = el.Volume[1:]
		}
		return el
	})
}

// MangleVolume puts a trailing volume letter first: 100B becomes B100.
func MangleVolume(elements []reference.Element) []reference.Element {
	return mapKind(elements, reference.KindJournal, func(el reference.Element) reference.Element {
		m := grammar.Find(reTrailingLetter, el.Volume)
		if m == nil {
			return el
		}
		el.Volume = grammar.Group(m, "letter") + grammar.Group(m, "num") + string([]rune(el.Volume)[m.Length:])
		return el
	})
}

// ArxivURLsToReportNumbers turns arxiv.org abstract links into arXiv
// report numbers.
func ArxivURLsToReportNumbers(elements []reference.Element) []reference.Element {
	return mapKind(elements, reference.KindURL, func(el reference.Element) reference.Element {
		if !strings.HasPrefix(el.URL, arxivAbsPrefix) {
			return el
		}
		return reference.Element{
			Kind:      reference.KindReportNumber,
			MiscText:  el.MiscText,
			Recid:     el.Recid,
			ReportNum: "arXiv:" + strings.TrimPrefix(el.URL, arxivAbsPrefix),
		}
	})
}

// LookForHDL splits handle identifiers out of misc text into HDL
// elements placed right after the element that held them.
func LookForHDL(elements []reference.Element) []reference.Element {
	out := make([]reference.Element, 0, len(elements))
	for _, el := range elements {
		matches := grammar.FindAll(grammar.HDL, el.MiscText)
		if len(matches) == 0 {
			out = append(out, el)
			continue
		}
		misc := []rune(el.MiscText)
		var hdls []reference.Element
		// last match first, so earlier offsets stay valid
		for i := len(matches) - 1; i >= 0; i-- {
			m := matches[i]
			hdls = append(hdls, reference.Element{
				Kind:     reference.KindHDL,
				HDL:      grammar.Group(m, "hdl"),
				MiscText: string(misc[m.Index+m.Length:]),
			})
			misc = misc[:m.Index]
		}
		el.MiscText = string(misc)
		out = append(out, el)
		for i := len(hdls) - 1; i >= 0; i-- {
			out = append(out, hdls[i])
		}
	}
	return out
}

// LookForHDLURLs turns URL elements that point at a handle into HDL
// elements.
func LookForHDLURLs(elements []reference.Element) []reference.Element {
	return mapKind(elements, reference.KindURL, func(el reference.Element) reference.Element {
		m := grammar.Find(grammar.HDL, el.URL)
		if m == nil || m.Index != 0 {
			return el
		}
		return reference.Element{
			Kind:     reference.KindHDL,
			MiscText: el.MiscText,
			Recid:    el.Recid,
			HDL:      grammar.Group(m, "hdl"),
		}
	})
}
