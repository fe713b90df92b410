package split

import (
	"sort"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"

	"github.com/inspirehep/refextract/internal/grammar"
	"github.com/inspirehep/refextract/internal/kb"
	"github.com/inspirehep/refextract/internal/reference"
	"github.com/inspirehep/refextract/internal/tag"
)

// Passes run after splitting. Each returns new citations and leaves its
// input alone.

var reAuthorWord = regexp2.MustCompile(`[a-zA-Z]{4,}`, regexp2.None)

func clone(citations []reference.Citation) []reference.Citation {
	out := make([]reference.Citation, len(citations))
	for i, c := range citations {
		out[i] = make(reference.Citation, len(c))
		copy(out[i], c)
	}
	return out
}

// ImpliedIbids finds bare numeration in the misc text of a citation with
// no journal and turns it into an ibid of the previous citation's last
// journal.
func ImpliedIbids(citations []reference.Citation) []reference.Citation {
	out := clone(citations)
	var prev reference.Element
	hasPrev := false
	for ci := range out {
		c := out[ci]
		if hasPrev && !c.Has(reference.KindJournal) {
			for i := range c {
				if c[i].Kind != reference.KindMisc {
					continue
				}
				n, ok := tag.FindNumeration(c[i].MiscText)
				if !ok {
					continue
				}
				series := n.Series
				if series == "" {
					series = tag.SeriesFromVolume(prev.Volume)
				}
				c = append(c, reference.Element{
					Kind:    reference.KindJournal,
					Title:   prev.Title,
					Volume:  series + n.Volume,
					Year:    n.Year,
					Page:    n.Page,
					PageEnd: n.PageEnd,
					IsIbid:  true,
				})
				c[i].MiscText = grammar.Slice(c[i].MiscText, n.Len, grammar.Len(c[i].MiscText))
			}
			out[ci] = c
		}

		hasPrev = false
		for _, el := range out[ci] {
			if el.Kind == reference.KindJournal {
				prev, hasPrev = el, true
			}
		}
	}
	return out
}

// AddYears gives every citation without a YEAR element one, taken from
// its first journal or book, or else from a year in its misc text. The
// year is then removed from the misc text.
func AddYears(citations []reference.Citation) []reference.Citation {
	out := clone(citations)
	for ci, c := range out {
		if c.Has(reference.KindYear) {
			continue
		}
		year := citationYear(c)
		if year == "" {
			continue
		}
		c = append(c, reference.Element{Kind: reference.KindYear, Year: year})
		for i := range c {
			if strings.Contains(c[i].MiscText, year) {
				c[i].MiscText = removeYear(c[i].MiscText, year)
			}
		}
		out[ci] = c
	}
	return out
}

func citationYear(c reference.Citation) string {
	for _, el := range c {
		if el.Kind == reference.KindJournal || el.Kind == reference.KindBook {
			if el.Year != "" {
				return el.Year
			}
			break
		}
	}
	// the last element mentioning a year wins
	var year string
	for _, el := range c {
		if m := grammar.Find(grammar.YearInMisc, el.MiscText); m != nil {
			year = m.String()
		}
	}
	return year
}

// removeYear drops year from s, bracketed or bare, with the space around
// a bare one.
func removeYear(s, year string) string {
	y := regexp2.Escape(year)
	for _, expr := range []string{`\[\s*` + y + `\s*\]`, `\(\s*` + y + `\s*\)`, `\s*` + y + `\s*`} {
		s = grammar.ReplaceAll(regexp2.MustCompile(expr, regexp2.None), s, "")
	}
	return s
}

// FindBooksInMisc looks for known book titles in the misc text of
// citations that were not recognised as anything else. A title only
// counts when the citation's year is the book's and an author name is
// shared.
func FindBooksInMisc(citations []reference.Citation, books *kb.Books) []reference.Citation {
	out := clone(citations)
	if books == nil || len(books.ByTitle) == 0 {
		return out
	}
	titles := make([]string, 0, len(books.ByTitle))
	for t := range books.ByTitle {
		titles = append(titles, t)
	}
	sort.Strings(titles)

	for ci, c := range out {
		if c.Has(reference.KindBook, reference.KindJournal, reference.KindDOI, reference.KindISBN, reference.KindRecid) {
			continue
		}
		out[ci] = searchBook(c, books, titles)
	}
	return out
}

func searchBook(c reference.Citation, books *kb.Books, titles []string) reference.Citation {
	year := ""
	if i := c.Index(reference.KindYear); i >= 0 {
		year = c[i].Year
	}
	if year == "" {
		return c
	}
	for i := range c {
		misc := c[i].MiscText
		for _, title := range titles {
			start := indexLoose(misc, title)
			if start < 0 {
				continue
			}
			book := books.ByTitle[title]
			bookYear := strings.Trim(book.Year, ";")
			if bookYear != year || !sharesAuthor(c, book.Authors, misc) {
				continue
			}
			c[i].MiscText = removeYear(cutLoose(misc, title, start), bookYear)
			return append(c, reference.Element{
				Kind:    reference.KindBook,
				Authors: book.Authors,
				Title:   book.Title,
				Year:    bookYear,
			})
		}
	}
	return c
}

// sharesAuthor reports whether a name from the citation's first author
// group appears among the book's authors, or a book author's name appears
// in misc.
func sharesAuthor(c reference.Citation, bookAuthors, misc string) bool {
	if i := c.Index(reference.KindAuth); i >= 0 {
		for _, m := range grammar.FindAll(reAuthorWord, c[i].AuthText) {
			if indexLoose(bookAuthors, m.String()) >= 0 {
				return true
			}
		}
	}
	for _, m := range grammar.FindAll(reAuthorWord, bookAuthors) {
		if indexLoose(misc, m.String()) >= 0 {
			return true
		}
	}
	return false
}

func isLooseChar(r rune) bool {
	return r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}

// looseKey upper-cases s and keeps only ASCII letters and digits.
func looseKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r = unicode.ToUpper(r); isLooseChar(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// indexLoose finds sub in s ignoring case and everything but letters and
// digits. It returns the rune offset in s where the match starts, or -1.
func indexLoose(s, sub string) int {
	key := looseKey(sub)
	if key == "" {
		return -1
	}
	k := strings.Index(looseKey(s), key)
	if k < 0 {
		return -1
	}
	n := 0
	for i, r := range []rune(s) {
		if isLooseChar(unicode.ToUpper(r)) {
			if n == k {
				return i
			}
			n++
		}
	}
	return -1
}

// cutLoose removes the loose match of sub starting at rune offset start,
// with any punctuation trailing it.
func cutLoose(s, sub string, start int) string {
	runes := []rune(s)
	key := []rune(looseKey(sub))
	pos, end := 0, start
	for end < len(runes) && pos < len(key) {
		if unicode.ToUpper(runes[end]) == key[pos] {
			pos++
		}
		end++
	}
	for end < len(runes) && !endsCut(runes[end]) {
		end++
	}
	return strings.TrimSpace(string(runes[:start])) + " " + strings.TrimSpace(string(runes[end:]))
}

func endsCut(r rune) bool {
	switch r {
	case ' ', '[', '{', '(':
		return true
	}
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// DedupAuthors keeps the first author group of each citation and turns
// the others back into misc text.
func DedupAuthors(citations []reference.Citation) []reference.Citation {
	out := clone(citations)
	for _, c := range out {
		found := false
		for i, el := range c {
			if el.Kind != reference.KindAuth {
				continue
			}
			if found {
				c[i] = reference.Misc(el.MiscText + " " + el.AuthText)
			}
			found = true
		}
	}
	return out
}

// DedupDOIs keeps only the first DOI of each citation.
func DedupDOIs(citations []reference.Citation) []reference.Citation {
	out := make([]reference.Citation, len(citations))
	for ci, c := range citations {
		kept := make(reference.Citation, 0, len(c))
		found := false
		for _, el := range c {
			if el.Kind == reference.KindDOI {
				if found {
					continue
				}
				found = true
			}
			kept = append(kept, el)
		}
		out[ci] = kept
	}
	return out
}

// DedupCollaborations drops collaborations already named in the same
// citation.
func DedupCollaborations(citations []reference.Citation) []reference.Citation {
	out := make([]reference.Citation, len(citations))
	for ci, c := range citations {
		kept := make(reference.Citation, 0, len(c))
		seen := map[string]bool{}
		for _, el := range c {
			if el.Kind == reference.KindCollaboration {
				if seen[el.Collaboration] {
					continue
				}
				seen[el.Collaboration] = true
			}
			kept = append(kept, el)
		}
		out[ci] = kept
	}
	return out
}

// AddRecids appends a RECID element to each citation with a linked
// element, holding the first record id found.
func AddRecids(citations []reference.Citation) []reference.Citation {
	out := clone(citations)
	for ci, c := range out {
		for _, el := range c {
			if el.Recid != "" {
				out[ci] = append(c, reference.Element{Kind: reference.KindRecid, Recid: el.Recid})
				break
			}
		}
	}
	return out
}

func addMisc(el *reference.Element, text string) {
	if el.MiscText == "" {
		el.MiscText = text
		return
	}
	el.MiscText += " " + text
}

func nonEmpty(citations []reference.Citation) []reference.Citation {
	var out []reference.Citation
	for _, c := range citations {
		if len(c) > 0 {
			out = append(out, c)
		}
	}
	return out
}

func valid(citations []reference.Citation) []reference.Citation {
	var out []reference.Citation
	for _, c := range citations {
		if c.Valid() {
			out = append(out, c)
		}
	}
	return out
}

// RemoveInvalid drops citations holding only misc text. Their text is
// appended to the last element of the previous citation, or of the second
// one for a leading invalid citation.
func RemoveInvalid(citations []reference.Citation) []reference.Citation {
	cs := nonEmpty(clone(citations))
	if len(cs) > 1 {
		for i := range cs {
			if cs[i].Valid() {
				continue
			}
			into := 1
			if i > 0 {
				into = i - 1
			}
			target := cs[into]
			for _, el := range cs[i] {
				addMisc(&target[len(target)-1], el.MiscText)
			}
		}
	}
	return valid(cs)
}

// MergeInvalid drops citations holding only misc text, first merging the
// text of each one that follows another invalid citation into it.
func MergeInvalid(citations []reference.Citation) []reference.Citation {
	cs := nonEmpty(clone(citations))
	if len(cs) > 1 {
		prevValid := true
		for i := range cs {
			curValid := cs[i].Valid()
			if !curValid && !prevValid {
				target := cs[i-1]
				for _, el := range cs[i] {
					addMisc(&target[len(target)-1], el.MiscText)
				}
			}
			prevValid = curValid
		}
	}
	return valid(cs)
}
