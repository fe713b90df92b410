package tag

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/inspirehep/refextract/internal/grammar"
	"github.com/inspirehep/refextract/internal/kb"
)

// Author grammar. A name is one or more initials followed by a surname;
// initials may lack their period ("A Model"), surnames may be hyphenated,
// carry a particle ("van der Bij") or extend with "of" ("Model of
// Leptons"). Names are joined by commas, "and" or "&".
const (
	authInitial  = `\p{Lu}(?:\.(?:\s?-\s?\p{Lu}\.)?\s?|\s)`
	authParticle = `(?:van|von|de|der|den|di|da|du|del|della|le|la|dos|das|'t)\s`
	authWord     = `\p{Lu}[\p{Ll}'’]+(?:-\p{Lu}[\p{Ll}'’]*)*`
	authSurname  = `(?:(?:Jr|Sr)\.|(?:` + authParticle + `)*` + authWord + `(?:\sof\s` + authWord + `)*)(?![\p{L}\p{N}])`
	authName     = authInitial + `+` + authSurname
	authSep      = `(?:,\s*(?:and\s+)?|\s+and\s+|\s*&\s*)`
	authList     = authName + `(?:` + authSep + authName + `)*`
	authEtAl     = `(?:,?\s*et\.?\s*al\.?)`
	authEditors  = `(?:,?\s*\(eds?\.?\s*\))`
)

var reAuthors = regexp2.MustCompile(`(?<![\p{L}\p{N}.'’-])(?:\((?<incl>`+authList+`)\)|(?<auth>`+authList+`)(?<etal>`+authEtAl+`)?(?<ed>`+authEditors+`)?)`, regexp2.None)

// tagAuthors tags author groups outside already tagged text. The authors
// knowledge base is applied to the line first.
func tagAuthors(line string, authors *kb.Authors) string {
	if authors != nil {
		for _, r := range authors.Replacements {
			line = strings.ReplaceAll(line, r.Seek, r.Repl)
		}
	}

	matches := grammar.FindAll(reAuthors, blankTags(line))
	if len(matches) == 0 {
		return line
	}
	runes := []rune(line)
	var b strings.Builder
	last := 0
	for _, m := range matches {
		kind, text := "stnd", string(runes[m.Index:m.Index+m.Length])
		switch {
		case grammar.Matched(m, "incl"):
			kind, text = "incl", grammar.Group(m, "incl")
		case grammar.Matched(m, "etal"):
			kind = "etal"
		}
		b.WriteString(string(runes[last:m.Index]))
		b.WriteString("<cds.AUTH" + kind + ">" + strings.TrimSpace(text) + "</cds.AUTH" + kind + ">")
		last = m.Index + m.Length
	}
	b.WriteString(string(runes[last:]))
	return b.String()
}

// tagCollaborations tags collaboration names with their standard form.
func tagCollaborations(line string, collabs *kb.Collaborations) string {
	if collabs == nil {
		return line
	}
	for _, c := range collabs.List {
		matches := grammar.FindAll(c.Pattern, blankTags(line))
		if len(matches) == 0 {
			continue
		}
		runes := []rune(line)
		for i := len(matches) - 1; i >= 0; i-- {
			g := matches[i].GroupByNumber(1)
			if g == nil || len(g.Captures) == 0 {
				continue
			}
			tagged := []rune("<cds.COLLABORATION>" + c.Name + "</cds.COLLABORATION>")
			runes = append(runes[:g.Index:g.Index], append(tagged, runes[g.Index+g.Length:]...)...)
		}
		line = string(runes)
	}
	return line
}
