// Package record turns split citations into output records.
package record

import (
	"strings"
	"time"

	"github.com/inspirehep/refextract/internal/reference"
)

// Record field names.
const (
	FieldLineMarker    = "linemarker"
	FieldRawRef        = "raw_ref"
	FieldMisc          = "misc"
	FieldJournalTitle  = "journal_title"
	FieldJournalVolume = "journal_volume"
	FieldJournalYear   = "journal_year"
	FieldJournalPage   = "journal_page"
	FieldJournalRef    = "journal_reference"
	FieldReportNumber  = "reportnumber"
	FieldURL           = "url"
	FieldURLDesc       = "urldesc"
	FieldDOI           = "doi"
	FieldHDL           = "hdl"
	FieldAuthor        = "author"
	FieldTitle         = "title"
	FieldISBN          = "isbn"
	FieldPublisher     = "publisher"
	FieldYear          = "year"
	FieldCollaboration = "collaboration"
	FieldRecid         = "recid"
)

// noise is stripped from misc text and markers before they are judged
// empty.
const noise = "., [](){}"

// Build returns one record per citation of lines, in order. format is a
// journal reference template; an empty one means DefaultFormat.
func Build(lines []reference.Line, format string) ([]reference.Record, error) {
	if format == "" {
		format = DefaultFormat
	}
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	var out []reference.Record
	for _, line := range lines {
		for _, c := range line.Citations {
			out = append(out, Fields(c, line.Marker, line.Raw, f))
		}
	}
	return out, nil
}

// Fields builds the record of a single citation.
func Fields(c reference.Citation, marker, raw string, f *Format) reference.Record {
	r := reference.Record{}
	if strings.Trim(marker, noise) != "" {
		r.Add(FieldLineMarker, strings.Trim(marker, "[](){}. "))
	}
	r[FieldRawRef] = []string{raw}

	for _, el := range c {
		if strings.Trim(el.MiscText, noise) != "" {
			misc := strings.TrimLeft(el.MiscText, "])} ,.")
			r.Add(FieldMisc, strings.TrimRight(misc, "[({ ,."))
		}

		switch el.Kind {
		case reference.KindJournal:
			r.Add(FieldJournalTitle, el.Title)
			r.Add(FieldJournalVolume, el.Volume)
			r.Add(FieldJournalYear, el.Year)
			r.Add(FieldJournalPage, el.Page)
			r.Add(FieldJournalRef, f.Apply(el))
		case reference.KindReportNumber:
			r.Add(FieldReportNumber, el.ReportNum)
		case reference.KindURL:
			r.Add(FieldURL, el.URL)
			if el.URLDesc != el.URL {
				r.Add(FieldURLDesc, el.URLDesc)
			}
		case reference.KindDOI:
			r.Add(FieldDOI, "doi:"+el.DOI)
		case reference.KindHDL:
			r.Add(FieldHDL, "hdl:"+el.HDL)
		case reference.KindAuth:
			if el.AuthType == reference.AuthIncluded {
				r.Add(FieldAuthor, "("+el.AuthText+")")
			} else {
				r.Add(FieldAuthor, el.AuthText)
			}
		case reference.KindQuoted, reference.KindBook:
			r.Add(FieldTitle, el.Title)
		case reference.KindISBN:
			r.Add(FieldISBN, el.ISBN)
		case reference.KindPublisher:
			r.Add(FieldPublisher, el.Publisher)
		case reference.KindYear:
			r.Add(FieldYear, el.Year)
		case reference.KindCollaboration:
			r.Add(FieldCollaboration, el.Collaboration)
		case reference.KindRecid:
			r.Add(FieldRecid, el.Recid)
		}
	}
	return r
}

// BuildStats summarises the counts gathered over a whole document.
func BuildStats(counts reference.Counts, now time.Time) reference.Stats {
	return reference.NewStats(counts, now)
}
