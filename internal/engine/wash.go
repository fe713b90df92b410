package engine

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/inspirehep/refextract/internal/grammar"
)

// replacements maps characters that converted documents are full of to
// the plain ones the grammars expect. NFKC runs first and already folds
// ligatures, non-breaking spaces and full-width forms.
var replacements = map[rune]string{
	'\u2010': "-", // hyphen
	'\u2011': "-", // non-breaking hyphen
	'\u2012': "-", // figure dash
	'\u2013': "-", // en dash
	'\u2014': "-", // em dash
	'\u2015': "-", // horizontal bar
	'\u2212': "-", // minus sign
	'\u00ad': "",  // soft hyphen
	'\u2018': "'",
	'\u2019': "'",
	'\u201a': "'",
	'\u201b': "'",
	'\u2032': "'", // prime
	'\u201c': `"`,
	'\u201d': `"`,
	'\u201e': `"`,
	'\u201f': `"`,
	'\u00ab': `"`,
	'\u00bb': `"`,
	'`':      "'",
	'\u2022': " ", // bullet
	'\u00b7': " ",
	'\ufeff': "", // byte order mark
	'\u200b': "", // zero width space
}

var washer = transform.Chain(
	norm.NFKC,
	runes.Map(func(r rune) rune {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return ' '
		}
		return r
	}),
)

// Wash repairs a raw reference line before tagging: Unicode compatibility
// forms are folded, typographic dashes and quotes become ASCII, control
// characters become spaces and runs of spaces collapse to one.
func Wash(line string) string {
	washed, _, err := transform.String(washer, line)
	if err != nil {
		washed = line
	}
	var b []rune
	for _, r := range washed {
		if rep, ok := replacements[r]; ok {
			b = append(b, []rune(rep)...)
			continue
		}
		b = append(b, r)
	}
	return grammar.ReplaceAll(grammar.MultipleSpace, string(b), " ")
}
