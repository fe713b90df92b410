// Package split partitions the elements of one reference line into
// citations and cleans up the citations it produces.
//
// A physical line often cites several works with nothing but punctuation
// between them. Split starts a new citation when it sees a semicolon or a
// field that one citation cannot hold twice.
package split

import (
	"strings"

	"github.com/inspirehep/refextract/internal/reference"
)

// reason says why a citation was closed.
type reason int

const (
	noSplit reason = iota
	semicolon
	repeatedField
)

func (r reason) String() string {
	switch r {
	case semicolon:
		return "semicolon"
	case repeatedField:
		return "repeated field"
	}
	return "none"
}

type state int

const (
	accumulating state = iota
	splitPending
)

// noKind marks that the current citation has no typed element yet.
const noKind reference.Kind = -1

// repeatableIfAdjacent reports whether one citation may hold several
// elements of kind k in a row.
func repeatableIfAdjacent(k reference.Kind) bool {
	return k == reference.KindReportNumber || k == reference.KindCollaboration
}

// splitter carries the state of one pass over a line's elements.
type splitter struct {
	state   state
	pending reason

	current reference.Citation
	types   map[reference.Kind]bool
	last    reference.Kind
	numAuth int

	// pendingAuthor is the last author of the citation just closed. It
	// may really belong to the next one.
	pendingAuthor *reference.Element
	prevReason    reason

	out []reference.Citation
}

// Split groups elements into citations. It never drops an element and
// always returns at least one citation, possibly empty.
func Split(elements []reference.Element) []reference.Citation {
	s := &splitter{types: map[reference.Kind]bool{}, last: noKind}
	for i := 0; i < len(elements); {
		switch s.state {
		case accumulating:
			if r := s.needed(elements[i]); r != noSplit {
				s.state, s.pending = splitPending, r
				continue
			}
			s.add(elements[i])
			i++
		case splitPending:
			s.add(s.close(elements[i]))
			s.state = accumulating
			i++
		}
	}
	s.reinsertAuthor()
	return append(s.out, s.current)
}

// needed decides whether el starts a new citation.
func (s *splitter) needed(el reference.Element) reason {
	if strings.Contains(el.MiscText, ";") {
		return semicolon
	}
	k := el.SplitKind()
	if repeatableIfAdjacent(k) {
		return noSplit
	}
	if s.types[k] || s.last == k {
		return repeatedField
	}
	return noSplit
}

// add appends el to the current citation. Authors and misc text never
// count towards a split.
func (s *splitter) add(el reference.Element) {
	s.current = append(s.current, el)
	switch el.Kind {
	case reference.KindMisc:
		return
	case reference.KindAuth:
		s.numAuth++
		return
	}
	s.last = el.SplitKind()
	s.types[s.last] = true
}

// close ends the current citation before el and returns el, trimmed of
// the text that went to the closed citation.
func (s *splitter) close(el reference.Element) reference.Element {
	if s.pending == semicolon {
		before, after, _ := strings.Cut(el.MiscText, ";")
		s.current = append(s.current, reference.Misc(before))
		el.MiscText = after
	}
	s.reinsertAuthor()
	s.pendingAuthor = s.postponeLastAuthor()
	s.out = append(s.out, s.current)

	s.current = nil
	s.types = map[reference.Kind]bool{}
	s.last = noKind
	s.numAuth = 0
	s.prevReason, s.pending = s.pending, noSplit
	return el
}

// reinsertAuthor puts the postponed author at the front of the current
// citation when it has no author of its own or the previous split was on
// a repeated field.
func (s *splitter) reinsertAuthor() {
	if s.pendingAuthor == nil {
		return
	}
	if s.numAuth != 0 && s.prevReason != repeatedField {
		return
	}
	s.current = append(reference.Citation{*s.pendingAuthor}, s.current...)
	s.numAuth++
}

// postponeLastAuthor returns the last author of the current citation. A
// lone author stays where it is; with several, the last is removed.
func (s *splitter) postponeLastAuthor() *reference.Element {
	if s.numAuth == 0 {
		return nil
	}
	for i := len(s.current) - 1; i >= 0; i-- {
		if s.current[i].Kind != reference.KindAuth {
			continue
		}
		author := s.current[i]
		if s.numAuth > 1 {
			s.current = append(s.current[:i:i], s.current[i+1:]...)
		}
		return &author
	}
	return nil
}
