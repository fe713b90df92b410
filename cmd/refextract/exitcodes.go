package main

import (
	"errors"

	"github.com/inspirehep/refextract/internal/config"
	"github.com/inspirehep/refextract/internal/document"
	"github.com/inspirehep/refextract/internal/engine"
	"github.com/inspirehep/refextract/internal/kb"
	"github.com/inspirehep/refextract/internal/record"
)

const (
	ExitSuccess      = 0 // Success
	ExitError        = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError  = 2 // Configuration error (bad config file, bad reference format)
	ExitDataError    = 3 // Data error (unknown document type, broken knowledge base, no journal)
	ExitNotAvailable = 4 // Full text not available (missing file, unreachable URL)
)

// exitCodeFor maps an extraction error to its exit code.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, document.ErrFullTextNotAvailable):
		return ExitNotAvailable
	case errors.Is(err, config.ErrInvalid), errors.Is(err, record.ErrFormat):
		return ExitConfigError
	case errors.Is(err, document.ErrUnknownDocumentType),
		errors.Is(err, engine.ErrNoJournal),
		errors.Is(err, kb.ErrBadFormat):
		return ExitDataError
	default:
		return ExitError
	}
}
