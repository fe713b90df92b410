package record

import (
	"errors"
	"fmt"
)

// ErrFormat is wrapped by every FormatError.
var ErrFormat = errors.New("bad reference format")

// FormatError reports a journal reference template that cannot be used.
type FormatError struct {
	Template string
	Offset   int // byte offset of the problem in Template
	Reason   string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("reference format %q at offset %d: %s", e.Template, e.Offset, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return ErrFormat
}
