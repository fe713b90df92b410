// Package document turns full-text documents into reference lines: it
// reads plain text and PDF files, locates the reference section and
// rebuilds the reference lines that the text layout broke apart.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

const (
	mimeText = "text/plain"
	mimePDF  = "application/pdf"

	// PageBreak is the line emitted between two PDF pages.
	PageBreak = "\f"
)

var (
	pdfHeader  = []byte("%PDF-")
	pdfTrailer = []byte("%%EOF")
)

// textual lists detected types that are read as plain text. CSV and TSV
// are what text with a regular comma layout is often detected as.
var textual = []string{mimeText, "text/csv", "text/tab-separated-values"}

// Body returns the lines of the document at path. Plain text is split
// into lines; PDF is converted page by page, at most maxPages pages when
// maxPages is positive. Missing files return ErrFullTextNotAvailable and
// other types a *TypeError.
func Body(path string, maxPages int) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: file not found: %q", ErrFullTextNotAvailable, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrFullTextNotAvailable, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %q: %v", ErrFullTextNotAvailable, path, err)
	}
	lines, err := BodyBytes(data, maxPages)
	var te *TypeError
	if errors.As(err, &te) {
		te.Path = path
	}
	return lines, err
}

// BodyBytes is Body for a document already in memory.
func BodyBytes(data []byte, maxPages int) ([]string, error) {
	mime := mimetype.Detect(data)
	if isText(mime) {
		return Lines(string(data)), nil
	}
	data = trimPDF(data)
	mime = mimetype.Detect(data)
	if !mime.Is(mimePDF) {
		return nil, &TypeError{MIME: mime.String()}
	}
	return pdfLines(data, maxPages)
}

func isText(mime *mimetype.MIME) bool {
	for _, t := range textual {
		if mime.Is(t) {
			return true
		}
	}
	return false
}

// Lines splits text into lines, dropping the line terminators.
func Lines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// trimPDF strips junk before the PDF header and after the last end of
// file marker. Data without a header is returned unchanged.
func trimPDF(data []byte) []byte {
	start := bytes.Index(data, pdfHeader)
	if start < 0 {
		return data
	}
	end := bytes.LastIndex(data, pdfTrailer)
	if end < start {
		return data[start:]
	}
	return data[start : end+len(pdfTrailer)]
}

// pdfLines extracts the plain text of every page. Pages that cannot be
// decoded are skipped; PageBreak separates the pages.
func pdfLines(data []byte, maxPages int) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: reading pdf: %v", ErrFullTextNotAvailable, err)
	}

	n := r.NumPage()
	if maxPages <= 0 || maxPages > n {
		maxPages = n
	}

	var lines []string
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if len(lines) > 0 {
			lines = append(lines, PageBreak)
		}
		lines = append(lines, Lines(text)...)
	}
	return lines, nil
}
