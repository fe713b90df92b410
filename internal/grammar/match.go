// Package grammar holds the compiled regular expressions shared by the
// tagging and parsing stages, together with small helpers around the
// regexp2 API.
//
// Every pattern is compiled once at package initialisation and is safe for
// concurrent use. regexp2 reports offsets in runes, so callers index rune
// slices, not byte strings.
package grammar

import (
	"github.com/dlclark/regexp2"
)

// Find returns the leftmost match of re in s, or nil.
func Find(re *regexp2.Regexp, s string) *regexp2.Match {
	m, err := re.FindStringMatch(s)
	if err != nil {
		return nil
	}
	return m
}

// FindAll returns every non-overlapping match of re in s.
func FindAll(re *regexp2.Regexp, s string) []*regexp2.Match {
	var out []*regexp2.Match
	m, err := re.FindStringMatch(s)
	for m != nil && err == nil {
		out = append(out, m)
		m, err = re.FindNextMatch(m)
	}
	return out
}

// Match reports whether re matches anywhere in s.
func Match(re *regexp2.Regexp, s string) bool {
	ok, err := re.MatchString(s)
	return err == nil && ok
}

// Replace substitutes every match of re in s with the result of fn.
// On a matcher timeout s is returned unchanged.
func Replace(re *regexp2.Regexp, s string, fn func(m *regexp2.Match) string) string {
	out, err := re.ReplaceFunc(s, func(m regexp2.Match) string {
		return fn(&m)
	}, -1, -1)
	if err != nil {
		return s
	}
	return out
}

// ReplaceAll substitutes every match of re in s with the literal repl.
func ReplaceAll(re *regexp2.Regexp, s, repl string) string {
	return Replace(re, s, func(*regexp2.Match) string { return repl })
}

// Group returns the text captured by the named group, or "".
func Group(m *regexp2.Match, name string) string {
	g := m.GroupByName(name)
	if g == nil || len(g.Captures) == 0 {
		return ""
	}
	return g.String()
}

// Matched reports whether the named group took part in the match.
func Matched(m *regexp2.Match, name string) bool {
	g := m.GroupByName(name)
	return g != nil && len(g.Captures) > 0
}

// GroupSpan returns the rune offsets of the named group, or -1, -1.
func GroupSpan(m *regexp2.Match, name string) (int, int) {
	g := m.GroupByName(name)
	if g == nil || len(g.Captures) == 0 {
		return -1, -1
	}
	return g.Index, g.Index + g.Length
}

// Span returns the rune offsets of the whole match.
func Span(m *regexp2.Match) (int, int) {
	return m.Index, m.Index + m.Length
}

// Slice returns the runes of s in [i, j), clamped to the string.
func Slice(s string, i, j int) string {
	r := []rune(s)
	if i < 0 {
		i = 0
	}
	if j > len(r) {
		j = len(r)
	}
	if i >= j {
		return ""
	}
	return string(r[i:j])
}

// Len returns the number of runes in s.
func Len(s string) int {
	return len([]rune(s))
}

func mustCompile(expr string, opt regexp2.RegexOptions) *regexp2.Regexp {
	return regexp2.MustCompile(expr, opt)
}

// anchored compiles expr so it only matches at the start of the input.
func anchored(expr string, opt regexp2.RegexOptions) *regexp2.Regexp {
	return regexp2.MustCompile(`\A(?:`+expr+`)`, opt)
}
