package split

import (
	"reflect"
	"testing"

	"github.com/inspirehep/refextract/internal/kb"
	"github.com/inspirehep/refextract/internal/reference"
)

func auth(misc, text string) reference.Element {
	return reference.Element{Kind: reference.KindAuth, MiscText: misc, AuthText: text, AuthType: reference.AuthEtAl}
}

func journal(misc, title, volume, year, page string) reference.Element {
	return reference.Element{Kind: reference.KindJournal, MiscText: misc, Title: title, Volume: volume, Year: year, Page: page}
}

func TestSplit(t *testing.T) {
	ellis := auth("", "J. Ellis et al.")
	ellisJ := journal(", ", "Phys. Lett.", "B212", "1988", "375")
	ejiri := auth("; ", "H. Ejiri et al.")
	ejiriJ := journal(", ", "Phys. Lett.", "B317", "1993", "14")
	ejiriAfter := ejiri
	ejiriAfter.MiscText = " "

	smith := auth(", ", "J. Smith")
	jones := auth("", "K. Jones")
	j1 := journal("", "Phys. Lett.", "B1", "1990", "2")
	j2 := journal(", ", "Phys. Rev.", "D3", "1991", "4")

	cms1 := reference.Element{Kind: reference.KindCollaboration, Collaboration: "CMS Collaboration"}
	cms2 := reference.Element{Kind: reference.KindCollaboration, MiscText: " and ", Collaboration: "ATLAS Collaboration"}
	rep1 := reference.Element{Kind: reference.KindReportNumber, MiscText: ", ", ReportNum: "CMS-PAS-HIG-12-001"}
	rep2 := reference.Element{Kind: reference.KindReportNumber, MiscText: ", ", ReportNum: "CMS-PAS-HIG-12-002"}

	arx1 := reference.Element{Kind: reference.KindReportNumber, ReportNum: "hep-th/9906022", IsArxiv: true}
	arx2 := reference.Element{Kind: reference.KindReportNumber, MiscText: " ", ReportNum: "hep-th/9906023", IsArxiv: true}
	rep3 := reference.Element{Kind: reference.KindReportNumber, MiscText: " ", ReportNum: "CERN-TH-2000-001"}

	tests := []struct {
		name string
		in   []reference.Element
		want []reference.Citation
	}{
		{
			name: "semicolon between two citations",
			in:   []reference.Element{ellis, ellisJ, ejiri, ejiriJ},
			want: []reference.Citation{
				{ellis, ellisJ, reference.Misc("")},
				{ejiriAfter, ejiriJ},
			},
		},
		{
			name: "repeated journal copies a lone author forward",
			in:   []reference.Element{j1, smith, j2},
			want: []reference.Citation{
				{j1, smith},
				{smith, j2},
			},
		},
		{
			name: "repeated journal moves the last of several authors",
			in:   []reference.Element{jones, j1, smith, j2},
			want: []reference.Citation{
				{jones, j1},
				{smith, j2},
			},
		},
		{
			name: "adjacent report numbers and collaborations stay together",
			in:   []reference.Element{cms1, cms2, rep1, rep2},
			want: []reference.Citation{{cms1, cms2, rep1, rep2}},
		},
		{
			name: "arxiv identifiers do not repeat",
			in:   []reference.Element{arx1, arx2},
			want: []reference.Citation{{arx1}, {arx2}},
		},
		{
			name: "arxiv and report number are different kinds",
			in:   []reference.Element{arx1, rep3},
			want: []reference.Citation{{arx1, rep3}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split() =\n%+v\nwant\n%+v", got, tt.want)
			}
		})
	}
}

func TestSplit_Empty(t *testing.T) {
	got := Split(nil)
	if len(got) != 1 || len(got[0]) != 0 {
		t.Errorf("Split(nil) = %+v, want one empty citation", got)
	}
}

func TestSplit_KeepsEveryElement(t *testing.T) {
	in := []reference.Element{
		reference.Misc("see "),
		journal("", "Nature", "1", "2000", "1"),
		journal("x; also ", "Nature", "2", "2001", "2"),
		journal(" ", "Science", "3", "2002", "3"),
	}
	total := 0
	for _, c := range Split(in) {
		for _, el := range c {
			if el.Kind != reference.KindMisc || el.MiscText != "" {
				total++
			}
		}
	}
	// the semicolon adds one misc element holding the text before it
	if want := len(in) + 1; total != want {
		t.Errorf("Split() kept %d elements, want %d", total, want)
	}
}

func TestImpliedIbids(t *testing.T) {
	in := []reference.Citation{
		{journal("", "Phys. Lett.", "B212", "1988", "375")},
		{reference.Misc(" 317 (1993) 14")},
	}
	got := ImpliedIbids(in)
	want := reference.Citation{
		reference.Misc(""),
		{Kind: reference.KindJournal, Title: "Phys. Lett.", Volume: "B317", Year: "1993", Page: "14", IsIbid: true},
	}
	if !reflect.DeepEqual(got[1], want) {
		t.Errorf("ImpliedIbids() =\n%+v\nwant\n%+v", got[1], want)
	}
	if in[1][0].MiscText != " 317 (1993) 14" {
		t.Error("ImpliedIbids() modified its input")
	}

	alone := []reference.Citation{{reference.Misc(" 317 (1993) 14")}}
	if got := ImpliedIbids(alone); !reflect.DeepEqual(got, alone) {
		t.Errorf("ImpliedIbids() without a previous journal = %+v", got)
	}
}

func TestAddYears(t *testing.T) {
	tests := []struct {
		name string
		in   reference.Citation
		want reference.Citation
	}{
		{
			name: "from journal",
			in:   reference.Citation{journal("", "Nature", "1", "1988", "1"), reference.Misc(" (1988) end")},
			want: reference.Citation{
				journal("", "Nature", "1", "1988", "1"),
				reference.Misc("  end"),
				{Kind: reference.KindYear, Year: "1988"},
			},
		},
		{
			name: "last misc year wins",
			in:   reference.Citation{reference.Misc("a 2005"), auth("b 1999 c", "x")},
			want: reference.Citation{
				reference.Misc("a 2005"),
				auth("bc", "x"),
				{Kind: reference.KindYear, Year: "1999"},
			},
		},
		{
			name: "existing year kept",
			in:   reference.Citation{reference.Misc("a 2005"), {Kind: reference.KindYear, Year: "2004"}},
			want: reference.Citation{reference.Misc("a 2005"), {Kind: reference.KindYear, Year: "2004"}},
		},
		{
			name: "no year",
			in:   reference.Citation{reference.Misc("nothing here")},
			want: reference.Citation{reference.Misc("nothing here")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddYears([]reference.Citation{tt.in})
			if !reflect.DeepEqual(got[0], tt.want) {
				t.Errorf("AddYears() =\n%+v\nwant\n%+v", got[0], tt.want)
			}
		})
	}
}

func TestRemoveYear(t *testing.T) {
	tests := map[string]string{
		"Wiley [1999]":   "Wiley ",
		"Wiley ( 1999 )": "Wiley ",
		"Wiley 1999 NY":  "WileyNY",
		"Wiley 2000":     "Wiley 2000",
	}
	for in, want := range tests {
		if got := removeYear(in, "1999"); got != want {
			t.Errorf("removeYear(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFindBooksInMisc(t *testing.T) {
	books := &kb.Books{ByTitle: map[string]kb.Book{
		"CLASSICAL ELECTRODYNAMICS": {Authors: "J. D. Jackson", Title: "Classical Electrodynamics", Year: "1999;"},
	}}
	year := reference.Element{Kind: reference.KindYear, Year: "1999"}
	in := reference.Citation{
		{Kind: reference.KindAuth, AuthText: "J. D. Jackson", AuthType: reference.AuthStandard},
		reference.Misc(", Classical Electrodynamics, Wiley"),
		year,
	}
	got := FindBooksInMisc([]reference.Citation{in}, books)
	want := reference.Citation{
		in[0],
		reference.Misc(", Wiley"),
		year,
		{Kind: reference.KindBook, Authors: "J. D. Jackson", Title: "Classical Electrodynamics", Year: "1999"},
	}
	if !reflect.DeepEqual(got[0], want) {
		t.Errorf("FindBooksInMisc() =\n%+v\nwant\n%+v", got[0], want)
	}

	otherYear := reference.Citation{in[0], in[1], {Kind: reference.KindYear, Year: "1975"}}
	if got := FindBooksInMisc([]reference.Citation{otherYear}, books); !reflect.DeepEqual(got[0], otherYear) {
		t.Errorf("FindBooksInMisc() with another year = %+v", got[0])
	}

	known := reference.Citation{in[0], in[1], year, journal("", "Nature", "1", "1999", "1")}
	if got := FindBooksInMisc([]reference.Citation{known}, books); !reflect.DeepEqual(got[0], known) {
		t.Errorf("FindBooksInMisc() on a journal citation = %+v", got[0])
	}
}

func TestIndexLoose(t *testing.T) {
	tests := []struct {
		s, sub string
		want   int
	}{
		{"see: Classical  Electro-dynamics", "classical electrodynamics", 5},
		{"abc", "xyz", -1},
		{"abc", "--", -1},
	}
	for _, tt := range tests {
		if got := indexLoose(tt.s, tt.sub); got != tt.want {
			t.Errorf("indexLoose(%q, %q) = %d, want %d", tt.s, tt.sub, got, tt.want)
		}
	}
}

func TestDedup(t *testing.T) {
	doi := func(d string) reference.Element { return reference.Element{Kind: reference.KindDOI, DOI: d} }
	collab := func(n string) reference.Element {
		return reference.Element{Kind: reference.KindCollaboration, Collaboration: n}
	}

	got := DedupAuthors([]reference.Citation{{auth("", "A"), auth(", ", "B")}})
	if want := (reference.Citation{auth("", "A"), reference.Misc(",  B")}); !reflect.DeepEqual(got[0], want) {
		t.Errorf("DedupAuthors() = %+v, want %+v", got[0], want)
	}

	got = DedupDOIs([]reference.Citation{{doi("10.1/a"), doi("10.1/b")}})
	if want := (reference.Citation{doi("10.1/a")}); !reflect.DeepEqual(got[0], want) {
		t.Errorf("DedupDOIs() = %+v, want %+v", got[0], want)
	}

	got = DedupCollaborations([]reference.Citation{{collab("CMS"), collab("ATLAS"), collab("CMS")}})
	if want := (reference.Citation{collab("CMS"), collab("ATLAS")}); !reflect.DeepEqual(got[0], want) {
		t.Errorf("DedupCollaborations() = %+v, want %+v", got[0], want)
	}
}

func TestAddRecids(t *testing.T) {
	j := journal("", "Nature", "1", "2000", "1")
	j.Recid = "7"
	got := AddRecids([]reference.Citation{{reference.Misc("x"), j}, {reference.Misc("y")}})
	if n := len(got[0]); n != 3 || got[0][2].Kind != reference.KindRecid || got[0][2].Recid != "7" {
		t.Errorf("AddRecids()[0] = %+v", got[0])
	}
	if len(got[1]) != 1 {
		t.Errorf("AddRecids()[1] = %+v, want unchanged", got[1])
	}
}

func TestRemoveInvalid(t *testing.T) {
	j := journal("", "Nature", "1", "2000", "1")
	got := RemoveInvalid([]reference.Citation{{reference.Misc("a")}, {j}, {}, {reference.Misc("b")}})
	merged := j
	merged.MiscText = "a b"
	if want := []reference.Citation{{merged}}; !reflect.DeepEqual(got, want) {
		t.Errorf("RemoveInvalid() = %+v, want %+v", got, want)
	}
}

func TestMergeInvalid(t *testing.T) {
	j := journal("", "Nature", "1", "2000", "1")
	got := MergeInvalid([]reference.Citation{{j}, {reference.Misc("a")}, {reference.Misc("b")}})
	if want := []reference.Citation{{j}}; !reflect.DeepEqual(got, want) {
		t.Errorf("MergeInvalid() = %+v, want %+v", got, want)
	}
}
