package kb

import (
	"sort"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/inspirehep/refextract/internal/grammar"
)

// ReportNumbers holds one pattern per report-number category.
//
// The knowledge-base file groups categories under institutes:
//
//	*****CERN*****
//	< yy 999>
//	< yyyy 999>
//	CERN TH---CERN-TH
//	CERN EP---CERN-EP
//
// A numeration line "<...>" describes the numbering scheme shared by the
// categories of the current institute.
type ReportNumbers struct {
	Categories []ReportCategory
}

// ReportCategory is one report-number prefix and its standard form.
type ReportCategory struct {
	Key      string
	Pattern  *regexp2.Regexp
	Standard string
	order    int
}

var (
	reInstitute      = regexp2.MustCompile(`^\*{5}\s*(.+?)\s*\*{5}$`, regexp2.None)
	reClassification = regexp2.MustCompile(`^\s*(?<seek>\w.*?)\s*---\s*(?<repl>\w.*?)\s*$`, regexp2.None)
	reNumeration     = regexp2.MustCompile(`^<(?<num>.+)>$`, regexp2.None)
	reCharClass      = regexp2.MustCompile(`\[(?<class>[^\]]+)\]`, regexp2.None)
)

// BuildReportNumbers builds the report-number knowledge base.
//
// Categories sort by the line on which their institute block ended and
// then by seek text, which keeps file order between institutes.
func BuildReportNumbers(src Source) (*ReportNumbers, error) {
	lines, err := src.readLines()
	if err != nil {
		return nil, err
	}

	out := &ReportNumbers{}
	var (
		numerations []string
		pending     [][2]string
		lineNum     int
	)
	flush := func() error {
		defer func() { numerations, pending = nil, nil }()
		if len(numerations) == 0 {
			return nil
		}
		alternation := numerationAlternation(numerations)
		for _, p := range pending {
			re, err := regexp2.Compile(`(?:^|[^a-zA-Z0-9/.\-])(?<repnum>[\[(]?(?<categ>`+strings.TrimSpace(p[0])+`)`+
				alternation+`[\])]?)`, regexp2.None)
			if err != nil {
				return &FormatError{Source: src.Name(), Line: lineNum, Text: p[0]}
			}
			out.Categories = append(out.Categories, ReportCategory{
				Key:      p[0],
				Pattern:  re,
				Standard: p[1],
				order:    lineNum,
			})
		}
		return nil
	}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lineNum++
		if grammar.Match(reInstitute, line) {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		if m := grammar.Find(reClassification, line); m != nil {
			pending = append(pending, [2]string{grammar.Group(m, "seek"), grammar.Group(m, "repl")})
			continue
		}
		if m := grammar.Find(reNumeration, line); m != nil {
			numerations = append(numerations, grammar.Group(m, "num"))
			continue
		}
		return nil, &FormatError{Source: src.Name(), Line: i + 1, Text: raw}
	}
	lineNum++
	if err := flush(); err != nil {
		return nil, err
	}

	sort.SliceStable(out.Categories, func(a, b int) bool {
		ca, cb := out.Categories[a], out.Categories[b]
		if ca.order != cb.order {
			return ca.order < cb.order
		}
		return ca.Key < cb.Key
	})
	return out, nil
}

// numerationAlternation joins numeration templates into one named group,
// longest template first.
func numerationAlternation(templates []string) string {
	type tmpl struct {
		base  int
		regex string
	}
	ts := make([]tmpl, 0, len(templates))
	for _, t := range templates {
		base := grammar.ReplaceAll(reCharClass, t, "1")
		ts = append(ts, tmpl{base: len([]rune(base)), regex: NumerationPattern(t)})
	}
	sort.SliceStable(ts, func(a, b int) bool { return ts[a].base > ts[b].base })
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.regex
	}
	return `(?<numn>` + strings.Join(parts, "|") + `)`
}

// NumerationPattern translates a numeration template into a regular
// expression. In a template 9 stands for a digit, w+ for a word, a for a
// letter, v for a version mark, mm/yy/yyyy for dates and s for optional
// whitespace. "text" is matched literally and " [xy ]" is an optional
// space-prefixed character class.
func NumerationPattern(t string) string {
	var b strings.Builder
	plain := func(seg string) {
		for _, r := range numerationReplacements {
			seg = strings.ReplaceAll(seg, r[0], r[1])
		}
		b.WriteString(seg)
	}
	for t != "" {
		q := strings.IndexByte(t, '"')
		c := strings.Index(t, " [")
		switch {
		case q >= 0 && (c < 0 || q < c):
			j := strings.IndexByte(t[q+1:], '"')
			if j < 0 {
				plain(t)
				return b.String()
			}
			plain(t[:q])
			b.WriteString(regexp2.Escape(t[q+1 : q+1+j]))
			t = t[q+2+j:]
		case c >= 0:
			j := strings.Index(t[c+2:], " ]")
			if j < 0 || strings.Contains(t[c+2:c+2+j], "]") {
				plain(t[:c+2])
				t = t[c+2:]
				continue
			}
			plain(t[:c])
			b.WriteString(`(?: [` + t[c+2:c+2+j] + `])?`)
			t = t[c+4+j:]
		default:
			plain(t)
			return b.String()
		}
	}
	return b.String()
}

// numerationReplacements are applied in order; no replacement produces
// text that a later one rewrites.
var numerationReplacements = [][2]string{
	{"9", `\d`},
	{"w+", `\w+`},
	{"a", `[A-Za-z]`},
	{"v", `[Vv]`},
	{"mm", `(?:0[1-9]|1[0-2])`},
	{"yyyy", `[12]\d{3}`},
	{"yy", `\d\d`},
	{"s", `\s*`},
	{"/", `\/`},
}
