package reference

import (
	"fmt"
	"time"
)

// Citation is an ordered group of elements believed to describe one work.
type Citation []Element

// Valid reports whether the citation holds anything besides misc text.
func (c Citation) Valid() bool {
	for _, el := range c {
		if el.Kind != KindMisc {
			return true
		}
	}
	return false
}

// Has reports whether the citation contains an element of any given kind.
func (c Citation) Has(kinds ...Kind) bool {
	for _, el := range c {
		for _, k := range kinds {
			if el.Kind == k {
				return true
			}
		}
	}
	return false
}

// Index returns the position of the first element of kind k, or -1.
func (c Citation) Index(k Kind) int {
	for i, el := range c {
		if el.Kind == k {
			return i
		}
	}
	return -1
}

// Line is one processed reference line: its split citations together with
// the marker and the raw text it came from.
type Line struct {
	Citations []Citation `json:"citations"`
	Marker    string     `json:"line_marker"`
	Raw       string     `json:"raw_ref"`
}

// Counts tallies what was recognised in one or more lines.
type Counts struct {
	Misc      int `json:"misc"`
	Title     int `json:"title"`
	ReportNum int `json:"reportnum"`
	URL       int `json:"url"`
	DOI       int `json:"doi"`
	AuthGroup int `json:"auth_group"`
}

// Add returns the field-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{
		Misc:      c.Misc + o.Misc,
		Title:     c.Title + o.Title,
		ReportNum: c.ReportNum + o.ReportNum,
		URL:       c.URL + o.URL,
		DOI:       c.DOI + o.DOI,
		AuthGroup: c.AuthGroup + o.AuthGroup,
	}
}

// StatsDateLayout is the layout of Stats.Date.
const StatsDateLayout = "2006-01-02 15:04:05"

// Stats summarises an extraction run.
type Stats struct {
	Status      int    `json:"status"`
	ReportNum   int    `json:"reportnum"`
	Title       int    `json:"title"`
	Author      int    `json:"author"`
	URL         int    `json:"url"`
	DOI         int    `json:"doi"`
	Misc        int    `json:"misc"`
	OldStatsStr string `json:"old_stats_str"`
	Date        string `json:"date"`
}

// NewStats derives run statistics from accumulated counts.
func NewStats(c Counts, now time.Time) Stats {
	s := Stats{
		Status:    0,
		ReportNum: c.ReportNum,
		Title:     c.Title,
		Author:    c.AuthGroup,
		URL:       c.URL,
		DOI:       c.DOI,
		Misc:      c.Misc,
		Date:      now.Format(StatsDateLayout),
	}
	s.OldStatsStr = fmt.Sprintf("%d-%d-%d-%d-%d-%d-%d",
		s.Status, s.ReportNum, s.Title, s.Author, s.URL, s.DOI, s.Misc)
	return s
}

// Record is the structured output for one citation. Every field holds an
// insertion-ordered list of values.
type Record map[string][]string

// Add appends value to field, ignoring empty values.
func (r Record) Add(field, value string) {
	if value == "" {
		return
	}
	r[field] = append(r[field], value)
}

// First returns the first value of field, or "".
func (r Record) First(field string) string {
	if v := r[field]; len(v) > 0 {
		return v[0]
	}
	return ""
}
