package transform

import (
	"errors"
	"reflect"
	"testing"

	"github.com/inspirehep/refextract/internal/kb"
	"github.com/inspirehep/refextract/internal/reference"
)

func journal(title, volume, year, page string) reference.Element {
	return reference.Element{Kind: reference.KindJournal, Title: title, Volume: volume, Year: year, Page: page}
}

func report(num string) reference.Element {
	return reference.Element{Kind: reference.KindReportNumber, ReportNum: num}
}

func TestSplitVolumeFromTitle(t *testing.T) {
	got := SplitVolumeFromTitle([]reference.Element{journal("Phys. Lett.;B", "212", "1988", "375")})
	if got[0].Title != "Phys. Lett." || got[0].Volume != "B212" {
		t.Errorf("SplitVolumeFromTitle() = %q %q, want %q %q", got[0].Title, got[0].Volume, "Phys. Lett.", "B212")
	}
}

func TestRomanToArabic(t *testing.T) {
	tests := map[string]int{"I": 1, "iv": 4, "XLII": 42, "CXXII": 122, "MCMXC": 1990}
	for in, want := range tests {
		if got := RomanToArabic(in); got != want {
			t.Errorf("RomanToArabic(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestFormatVolume(t *testing.T) {
	got := FormatVolume([]reference.Element{journal("Nuovo Cim.", "XIV", "", "1"), journal("X", "12", "", "1")})
	if got[0].Volume != "14" || got[1].Volume != "12" {
		t.Errorf("FormatVolume() volumes = %q, %q", got[0].Volume, got[1].Volume)
	}
}

func TestSpecialJournals(t *testing.T) {
	special := &kb.SpecialJournals{Titles: map[string]struct{}{"JHEP": {}}}
	tests := []struct {
		name string
		in   reference.Element
		want reference.Element
	}{
		{
			name: "volume prefixed with year",
			in:   journal("JHEP", "1", "2003", "5"),
			want: journal("JHEP", "0301", "2003", "005"),
		},
		{
			name: "page that is a year",
			in:   journal("JHEP", "5", "", "2003"),
			want: reference.Element{Kind: reference.KindMisc, MiscText: "JHEP,5,2003", Title: "JHEP", Volume: "05", Page: "2003"},
		},
		{
			name: "full volume kept",
			in:   journal("JHEP", "9906", "1999", "028"),
			want: journal("JHEP", "9906", "1999", "028"),
		},
		{
			name: "other journal untouched",
			in:   journal("Phys. Rev.", "1", "2003", "5"),
			want: journal("Phys. Rev.", "1", "2003", "5"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SpecialJournals([]reference.Element{tt.in}, special)
			if !reflect.DeepEqual(got[0], tt.want) {
				t.Errorf("SpecialJournals() = %+v, want %+v", got[0], tt.want)
			}
		})
	}
}

func TestFormatReportNumber(t *testing.T) {
	tests := map[string]string{
		"CERNLHCC2003-01":  "CERNLHCC-2003-01",
		"CERNLCHH2003-01":  "CERNLCHH-2003-01",
		"CERN-LHCC-2003":   "CERN-LHCC-2003",
		"hep-th/9711200":   "hep-th/9711200",
		"CMS-PAS-HIG12-02": "CMS-PAS-HIG-12-02",
	}
	for in, want := range tests {
		got := FormatReportNumber([]reference.Element{report(in)})
		if got[0].ReportNum != want {
			t.Errorf("FormatReportNumber(%q) = %q, want %q", in, got[0].ReportNum, want)
		}
	}
}

func TestFormatHEP(t *testing.T) {
	tests := map[string]string{
		"hep-th-9711200":   "hep-th/9711200",
		"astro-ph-0101001": "astro-ph/0101001",
		"hep-th/9711200":   "hep-th/9711200",
	}
	for in, want := range tests {
		got := FormatHEP([]reference.Element{report(in)})
		if got[0].ReportNum != want {
			t.Errorf("FormatHEP(%q) = %q, want %q", in, got[0].ReportNum, want)
		}
	}
}

func TestFormatAuthorEd(t *testing.T) {
	in := []reference.Element{{Kind: reference.KindAuth, AuthText: "J. Smith (ed. ) and K. Lee (eds. )"}}
	got := FormatAuthorEd(in)
	if want := "J. Smith (ed.) and K. Lee (eds.)"; got[0].AuthText != want {
		t.Errorf("FormatAuthorEd() = %q, want %q", got[0].AuthText, want)
	}
	if in[0].AuthText != "J. Smith (ed. ) and K. Lee (eds. )" {
		t.Error("FormatAuthorEd() modified its input")
	}
}

func TestLookForBooks(t *testing.T) {
	books := &kb.Books{ByTitle: map[string]kb.Book{
		"CLASSICAL ELECTRODYNAMICS": {Authors: "J. D. Jackson", Title: "Classical Electrodynamics", Year: "1999"},
	}}
	in := []reference.Element{
		{Kind: reference.KindAuth, AuthText: "J. D. Jackson"},
		{Kind: reference.KindQuoted, MiscText: ", ", Title: "Classical electrodynamics"},
		reference.Misc(" Wiley"),
	}
	got := LookForBooks(in, books)
	want := []reference.Element{
		in[0],
		in[2],
		{Kind: reference.KindBook, Authors: "J. D. Jackson", Title: "Classical Electrodynamics", Year: "1999"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LookForBooks() = %+v, want %+v", got, want)
	}

	unknown := []reference.Element{{Kind: reference.KindQuoted, Title: "Unknown"}}
	if got := LookForBooks(unknown, books); !reflect.DeepEqual(got, unknown) {
		t.Errorf("LookForBooks(unknown) = %+v", got)
	}
}

func TestRemoveBForNuclPhys(t *testing.T) {
	got := RemoveBForNuclPhys([]reference.Element{journal("Nucl.Phys.Proc.Suppl.", "B117", "2003", "1")})
	if got[0].Volume != "117" {
		t.Errorf("RemoveBForNuclPhys() volume = %q, want %q", got[0].Volume, "117")
	}
}

func TestMangleVolume(t *testing.T) {
	tests := map[string]string{"100B": "B100", "B100": "B100", "12": "12"}
	for in, want := range tests {
		got := MangleVolume([]reference.Element{journal("X", in, "", "1")})
		if got[0].Volume != want {
			t.Errorf("MangleVolume(%q) = %q, want %q", in, got[0].Volume, want)
		}
	}
}

func TestArxivURLsToReportNumbers(t *testing.T) {
	in := []reference.Element{{Kind: reference.KindURL, MiscText: "see ", URL: "http://arxiv.org/abs/1205.0701", URLDesc: "x"}}
	got := ArxivURLsToReportNumbers(in)
	want := reference.Element{Kind: reference.KindReportNumber, MiscText: "see ", ReportNum: "arXiv:1205.0701"}
	if !reflect.DeepEqual(got[0], want) {
		t.Errorf("ArxivURLsToReportNumbers() = %+v, want %+v", got[0], want)
	}
}

func TestLookForHDL(t *testing.T) {
	in := []reference.Element{reference.Misc("see hdl:1234/5678 and hdl:4321/8765 end")}
	got := LookForHDL(in)
	want := []reference.Element{
		reference.Misc("see "),
		{Kind: reference.KindHDL, HDL: "1234/5678", MiscText: " and "},
		{Kind: reference.KindHDL, HDL: "4321/8765", MiscText: " end"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LookForHDL() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestLookForHDLURLs(t *testing.T) {
	in := []reference.Element{
		{Kind: reference.KindURL, URL: "http://hdl.handle.net/10013/epic.1234", URLDesc: "h"},
		{Kind: reference.KindURL, URL: "http://example.org/a/b", URLDesc: "e"},
	}
	got := LookForHDLURLs(in)
	if got[0].Kind != reference.KindHDL || got[0].HDL != "10013/epic.1234" || got[0].URL != "" {
		t.Errorf("LookForHDLURLs()[0] = %+v", got[0])
	}
	if got[1].Kind != reference.KindURL {
		t.Errorf("LookForHDLURLs()[1] = %+v, want URL kept", got[1])
	}
}

func TestApply_Idempotent(t *testing.T) {
	kbs, err := kb.Load(nil)
	if err != nil {
		t.Fatalf("kb.Load(nil) error = %v", err)
	}
	in := []reference.Element{
		{Kind: reference.KindAuth, AuthText: "A. Author (ed. )"},
		journal("Phys. Lett.;B", "212", "1988", "375"),
		journal("JHEP", "3", "2001", "12"),
		journal("Nuovo Cim.", "XIV", "1959", "1"),
		report("hep-th-9711200"),
		report("CERNLHCC2003-01"),
		{Kind: reference.KindURL, URL: "http://arxiv.org/abs/1205.0701", URLDesc: "a"},
		reference.Misc(" hdl:1234/5678 tail"),
	}
	once := Apply(in, kbs)
	twice := Apply(once, kbs)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Apply() not idempotent:\n%+v\n%+v", once, twice)
	}
	if once[1].Volume != "B212" || once[2].Volume != "0103" || once[2].Page != "012" || once[3].Volume != "14" {
		t.Errorf("Apply() journals = %+v", once[1:4])
	}
	if once[4].ReportNum != "hep-th/9711200" || once[5].ReportNum != "CERNLHCC-2003-01" || once[6].ReportNum != "arXiv:1205.0701" {
		t.Errorf("Apply() report numbers = %+v", once[4:7])
	}
	if len(once) != len(in)+1 || once[8].Kind != reference.KindHDL {
		t.Errorf("Apply() did not split out the handle: %+v", once)
	}
}

func TestLink(t *testing.T) {
	in := []reference.Element{journal("Phys. Rev.", "1", "2000", "1"), reference.Misc("x")}
	linker := LinkerFunc(func(el reference.Element) (string, error) {
		if el.Kind == reference.KindJournal {
			return "42", nil
		}
		return "", ErrNotLinked
	})
	got, err := Link(in, linker)
	if err != nil {
		t.Fatalf("Link() error = %v", err)
	}
	if got[0].Recid != "42" || got[1].Recid != "" {
		t.Errorf("Link() recids = %q, %q", got[0].Recid, got[1].Recid)
	}

	boom := errors.New("boom")
	_, err = Link(in, LinkerFunc(func(reference.Element) (string, error) { return "", boom }))
	if !errors.Is(err, boom) {
		t.Errorf("Link() error = %v, want %v", err, boom)
	}
}
