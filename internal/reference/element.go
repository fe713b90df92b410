// Package reference defines the core domain types for extracted citations.
package reference

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a citation Element.
type Kind int

const (
	KindMisc Kind = iota
	KindJournal
	KindReportNumber
	KindURL
	KindDOI
	KindHDL
	KindAuth
	KindQuoted
	KindISBN
	KindPublisher
	KindCollaboration
	KindBook
	KindYear
	KindRecid

	// KindArxiv never labels a stored element: arXiv identifiers are
	// report numbers with IsArxiv set. It exists so the splitter can treat
	// them as a kind of their own.
	KindArxiv
)

var kindNames = [...]string{
	KindMisc:          "MISC",
	KindJournal:       "JOURNAL",
	KindReportNumber:  "REPORTNUMBER",
	KindURL:           "URL",
	KindDOI:           "DOI",
	KindHDL:           "HDL",
	KindAuth:          "AUTH",
	KindQuoted:        "QUOTED",
	KindISBN:          "ISBN",
	KindPublisher:     "PUBLISHER",
	KindCollaboration: "COLLABORATION",
	KindBook:          "BOOK",
	KindYear:          "YEAR",
	KindRecid:         "RECID",
	KindArxiv:         "ARXIV",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "UNKNOWN"
	}
	return kindNames[k]
}

// MarshalText encodes the kind by name so elements serialize readably.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name written by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	name := strings.ToUpper(string(b))
	for i, n := range kindNames {
		if n == name {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown element kind %q", b)
}

// AuthType distinguishes the three author-group markups.
type AuthType string

const (
	AuthStandard AuthType = "stnd"
	AuthEtAl     AuthType = "etal"
	AuthIncluded AuthType = "incl"
)

// Element is one typed fragment of a reference line.
//
// Only the fields belonging to Kind are meaningful. MiscText is the
// unstructured text that preceded the element in the line.
type Element struct {
	Kind     Kind   `json:"type"`
	MiscText string `json:"misc_txt"`
	Recid    string `json:"recid,omitempty"`

	// JOURNAL, and Title/Year for QUOTED and BOOK
	Title      string    `json:"title,omitempty"`
	Volume     string    `json:"volume,omitempty"`
	Year       string    `json:"year,omitempty"`
	Page       string    `json:"page,omitempty"`
	PageEnd    string    `json:"page_end,omitempty"`
	IsIbid     bool      `json:"is_ibid,omitempty"`
	ExtraIbids []Element `json:"extra_ibids,omitempty"`

	// REPORTNUMBER
	ReportNum string `json:"report_num,omitempty"`
	IsArxiv   bool   `json:"is_arxiv,omitempty"`

	// URL
	URL     string `json:"url_string,omitempty"`
	URLDesc string `json:"url_desc,omitempty"`

	DOI string `json:"doi_string,omitempty"`
	HDL string `json:"hdl_id,omitempty"`

	// AUTH
	AuthText string   `json:"auth_txt,omitempty"`
	AuthType AuthType `json:"auth_type,omitempty"`

	ISBN          string `json:"isbn,omitempty"`
	Publisher     string `json:"publisher,omitempty"`
	Collaboration string `json:"collaboration,omitempty"`

	// BOOK
	Authors string `json:"authors,omitempty"`
}

// SplitKind returns the kind used when deciding citation boundaries.
func (e Element) SplitKind() Kind {
	if e.Kind == KindReportNumber && e.IsArxiv {
		return KindArxiv
	}
	return e.Kind
}

// Misc returns a MISC element holding text.
func Misc(text string) Element {
	return Element{Kind: KindMisc, MiscText: text}
}
