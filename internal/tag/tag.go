// Package tag marks up the recognisable parts of a reference line.
//
// The output is the line with fragments wrapped in <cds.X>...</cds.X>
// tags: journal titles and their numeration, report numbers, arXiv
// identifiers, quoted titles, ISBNs, publishers, collaborations and
// author groups. DOIs and URLs are pulled out beforehand by TagDOIs and
// TagURLs and leave self-closing placeholders.
//
// Tagging never fails; text that is not recognised is left as it is.
package tag

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/inspirehep/refextract/internal/grammar"
	"github.com/inspirehep/refextract/internal/kb"
)

// Line tags one reference line, marker and identifiers already removed.
// titleCounts accumulates how often each journal phrase matched; a nil
// map is allocated. The updated map is returned.
func Line(line string, kbs *kb.Set, titleCounts map[string]int) (string, map[string]int) {
	if titleCounts == nil {
		titleCounts = make(map[string]int)
	}
	if kbs == nil {
		kbs = &kb.Set{}
	}

	line = washLine(line)
	line = tagPoS(line)
	line = washLine(line)
	line = tagQuoted(line)
	line = tagISBN(line)
	line = tagArxiv(line)
	line = tagOldArxiv(line)
	line = tagPoS(line)
	line = tagAtlasConf(line)
	line = tagJournalsRe(line, kbs.JournalsRe)

	var titles map[string]string
	if kbs.Journals != nil {
		titles = kbs.Journals.Titles
	}
	line = newWorkingLine(line).find(kbs, titleCounts).rebuild(line, titles)

	line = washVolumeTag(line)
	line = tagAuthors(line, kbs.Authors)
	line = tagCollaborations(line, kbs.Collaborations)
	return strings.ReplaceAll(line, "\n", ""), titleCounts
}

// tagJournalsRe tags titles known only by pattern. A title is tagged only
// when numeration follows it; many of these abbreviations are also common
// words or names.
func tagJournalsRe(line string, jre *kb.JournalsRe) string {
	if jre == nil {
		return line
	}
	for _, rw := range jre.Rewrites {
		line = tagJournalRe(line, rw)
	}
	return line
}

func tagJournalRe(line string, rw kb.Rewrite) string {
	matches := grammar.FindAll(rw.Re, blankTags(line))
	if len(matches) == 0 {
		return line
	}
	runes := []rune(line)
	// right to left keeps earlier offsets valid
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		end := m.Index + m.Length
		n, ok := FindNumeration(string(runes[end:]))
		if !ok {
			continue
		}
		tagged := []rune("<cds.JOURNAL>" + rw.Title + "</cds.JOURNAL>" + n.tag())
		tail := append([]rune{}, runes[end+n.Len:]...)
		runes = append(append(runes[:m.Index:m.Index], tagged...), tail...)
	}
	return string(runes)
}

// washVolumeTag joins a series letter to its volume ("B 212" -> "B212")
// and drops a stray "bf" bold marker before a volume.
func washVolumeTag(line string) string {
	line = grammar.Replace(grammar.WashVolumeTag, line, func(m *regexp2.Match) string {
		return "<cds.VOL>" + grammar.Group(m, "series") + grammar.Group(m, "num") + "</cds.VOL>"
	})
	return grammar.Replace(grammar.BoldBeforeVolume, line, func(m *regexp2.Match) string {
		return " " + grammar.Group(m, "rest")
	})
}
