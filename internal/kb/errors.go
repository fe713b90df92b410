package kb

import (
	"errors"
	"fmt"
)

// ErrBadFormat is wrapped by every FormatError.
var ErrBadFormat = errors.New("badly formatted knowledge base")

// FormatError reports a knowledge-base line that could not be parsed.
type FormatError struct {
	Source string
	Line   int
	Text   string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s:%d: badly formatted kb line %q", e.Source, e.Line, e.Text)
}

func (e *FormatError) Unwrap() error {
	return ErrBadFormat
}
