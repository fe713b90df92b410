package transform

import (
	"errors"
	"fmt"

	"github.com/inspirehep/refextract/internal/reference"
)

// ErrNotLinked is returned by a Linker that found no record for an
// element. Link treats it as a miss, not a failure.
var ErrNotLinked = errors.New("no linked record")

// Linker resolves an element to the id of a known record.
type Linker interface {
	Link(el reference.Element) (string, error)
}

// LinkerFunc adapts a function to Linker.
type LinkerFunc func(el reference.Element) (string, error)

// Link calls f(el).
func (f LinkerFunc) Link(el reference.Element) (string, error) { return f(el) }

// Link sets the record id of every element the linker resolves. Misses
// clear the id; any other linker error stops linking and is returned.
func Link(elements []reference.Element, linker Linker) ([]reference.Element, error) {
	out := make([]reference.Element, len(elements))
	for i, el := range elements {
		recid, err := linker.Link(el)
		switch {
		case errors.Is(err, ErrNotLinked):
			el.Recid = ""
		case err != nil:
			return nil, fmt.Errorf("linking %s element: %w", el.Kind, err)
		default:
			el.Recid = recid
		}
		out[i] = el
	}
	return out, nil
}
