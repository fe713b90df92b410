package document

import (
	"errors"
	"fmt"
)

var (
	// ErrFullTextNotAvailable indicates the document could not be read or
	// downloaded.
	ErrFullTextNotAvailable = errors.New("full text not available")

	// ErrUnknownDocumentType indicates the document is neither plain text
	// nor PDF.
	ErrUnknownDocumentType = errors.New("unknown document type")
)

// TypeError reports a document whose detected type cannot be read.
type TypeError struct {
	Path string
	MIME string
}

func (e *TypeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("unknown document type %s", e.MIME)
	}
	return fmt.Sprintf("unknown document type %s: %s", e.MIME, e.Path)
}

func (e *TypeError) Unwrap() error {
	return ErrUnknownDocumentType
}

// IsNotAvailable reports whether err means the document could not be
// found or fetched.
func IsNotAvailable(err error) bool {
	return errors.Is(err, ErrFullTextNotAvailable)
}
