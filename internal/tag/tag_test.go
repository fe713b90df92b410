package tag

import (
	"reflect"
	"strings"
	"testing"

	"github.com/inspirehep/refextract/internal/kb"
)

func defaultKBs(t *testing.T) *kb.Set {
	t.Helper()
	kbs, err := kb.Load(nil)
	if err != nil {
		t.Fatalf("kb.Load(nil) error = %v", err)
	}
	return kbs
}

func TestStripMarker(t *testing.T) {
	tests := []struct {
		line       string
		wantMarker string
		wantRest   string
	}{
		{"[2] S. Weinberg", "[2]", "S. Weinberg"},
		{"  (14) CMS Collaboration", "(14)", "CMS Collaboration"},
		{"no marker here", " ", "no marker here"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			marker, rest := StripMarker(tt.line)
			if marker != tt.wantMarker || rest != tt.wantRest {
				t.Errorf("StripMarker(%q) = %q, %q, want %q, %q", tt.line, marker, rest, tt.wantMarker, tt.wantRest)
			}
		})
	}
}

func TestTagDOIs(t *testing.T) {
	tests := []struct {
		line     string
		wantLine string
		wantDOIs []string
	}{
		{"see doi:10.1234/abc.def here", "see <cds.DOI /> here", []string{"10.1234/abc.def"}},
		{"10.1000%2Fxyz", "<cds.DOI />", []string{"10.1000/xyz"}},
		{"nothing", "nothing", nil},
	}
	for _, tt := range tests {
		line, dois := TagDOIs(tt.line)
		if line != tt.wantLine {
			t.Errorf("TagDOIs(%q) line = %q, want %q", tt.line, line, tt.wantLine)
		}
		if !reflect.DeepEqual(dois, tt.wantDOIs) {
			t.Errorf("TagDOIs(%q) dois = %v, want %v", tt.line, dois, tt.wantDOIs)
		}
	}
}

func TestTagURLs(t *testing.T) {
	line, urls := TagURLs("see http://example.com/page. Next")
	if line != "see <cds.URL />. Next" {
		t.Errorf("TagURLs() line = %q", line)
	}
	want := []URL{{URL: "http://example.com/page", Desc: "http://example.com/page"}}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("TagURLs() urls = %v, want %v", urls, want)
	}

	line, urls = TagURLs(`<a href="http://x.org/a">X site</a> end`)
	if line != "<cds.URL /> end" {
		t.Errorf("TagURLs(anchor) line = %q", line)
	}
	want = []URL{{URL: "http://x.org/a", Desc: "X site"}}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("TagURLs(anchor) urls = %v, want %v", urls, want)
	}
}

func TestTagArxiv(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"arXiv:1205.0701.", "<cds.ARXIV>arXiv:1205.0701</cds.ARXIV>."},
		{"hep-th/9906022.", "<cds.ARXIV>hep-th/9906022</cds.ARXIV>."},
		{"no identifier", "no identifier"},
	}
	for _, tt := range tests {
		got := tagOldArxiv(tagArxiv(tt.line))
		if got != tt.want {
			t.Errorf("tagArxiv(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestTagQuoted(t *testing.T) {
	got := tagQuoted(`X, "A title," J. Phys.`)
	want := `X, <cds.QUOTED>A title</cds.QUOTED> J. Phys.`
	if got != want {
		t.Errorf("tagQuoted() = %q, want %q", got, want)
	}
}

func TestFindNumeration(t *testing.T) {
	tests := []struct {
		in   string
		want Numeration
	}{
		{" 19 (Nov, 1967) 1264-1266.", Numeration{Year: "1967", Volume: "19", Page: "1264", PageEnd: "1266", Len: 25}},
		{" 9906:028 (1999); rest", Numeration{Year: "1999", Volume: "9906", Page: "028", Len: 16}},
		{", vol. A308, pp. 143-152, 2001.", Numeration{Year: "2001", Series: "A", Volume: "308", Page: "143", PageEnd: "152", Len: 30}},
	}
	for _, tt := range tests {
		got, ok := FindNumeration(tt.in)
		if !ok {
			t.Errorf("FindNumeration(%q) found nothing", tt.in)
			continue
		}
		if got != tt.want {
			t.Errorf("FindNumeration(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}

	if _, ok := FindNumeration(" no numbers"); ok {
		t.Error("FindNumeration() matched text without numeration")
	}
}

func TestFindNumerationMore(t *testing.T) {
	got, ok := FindNumerationMore("1930 <cds.JOURNAL>J.Phys.</cds.JOURNAL> 24, 418")
	if !ok {
		t.Fatal("FindNumerationMore() found nothing")
	}
	want := Numeration{Year: "1930", Volume: "24", Page: "418", Len: 8}
	if got != want {
		t.Errorf("FindNumerationMore() = %+v, want %+v", got, want)
	}
}

func TestSeriesFromVolume(t *testing.T) {
	tests := map[string]string{"B 212": "B", "212B": "B", "A308": "A", "19": ""}
	for in, want := range tests {
		if got := SeriesFromVolume(in); got != want {
			t.Errorf("SeriesFromVolume(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIdentifyIbids(t *testing.T) {
	found, line := IdentifyIbids("PHYS LETT B 12 IBID 13")
	if !reflect.DeepEqual(found, map[int]string{15: "IBID"}) {
		t.Errorf("IdentifyIbids() found = %v", found)
	}
	if line != "PHYS LETT B 12 ____ 13" {
		t.Errorf("IdentifyIbids() line = %q", line)
	}
}

func TestWashVolumeTag(t *testing.T) {
	got := washVolumeTag("<cds.JOURNAL>Phys. Lett.</cds.JOURNAL> <cds.VOL>B 212</cds.VOL>")
	want := "<cds.JOURNAL>Phys. Lett.</cds.JOURNAL> <cds.VOL>B212</cds.VOL>"
	if got != want {
		t.Errorf("washVolumeTag() = %q, want %q", got, want)
	}
}

func TestTagAuthors(t *testing.T) {
	tests := []struct {
		line, want string
	}{
		{"S. Weinberg", "<cds.AUTHstnd>S. Weinberg</cds.AUTHstnd>"},
		{"J. Ellis et al., Nature", "<cds.AUTHetal>J. Ellis et al.</cds.AUTHetal>, Nature"},
		{"J. van der Bij and A. Ghinculov", "<cds.AUTHstnd>J. van der Bij and A. Ghinculov</cds.AUTHstnd>"},
		{"see (S. Weinberg)", "see <cds.AUTHincl>S. Weinberg</cds.AUTHincl>"},
		{"no authors here", "no authors here"},
	}
	for _, tt := range tests {
		if got := tagAuthors(tt.line, nil); got != tt.want {
			t.Errorf("tagAuthors(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestLine(t *testing.T) {
	kbs := defaultKBs(t)
	tests := []struct {
		name string
		line string
		want string
	}{
		{
			name: "journal with month in year",
			line: "S. Weinberg, A Model of Leptons, Phys. Rev. Lett. 19 (Nov, 1967) 1264-1266.",
			want: "<cds.AUTHstnd>S. Weinberg, A Model of Leptons</cds.AUTHstnd>, " +
				"<cds.JOURNAL>Phys. Rev. Lett.</cds.JOURNAL> <cds.VOL>19</cds.VOL> " +
				"<cds.YR>(1967)</cds.YR> <cds.PG>1264-1266</cds.PG>.",
		},
		{
			name: "journal then arxiv",
			line: "R. Bousso, JHEP 9906:028 (1999); hep-th/9906022.",
			want: "<cds.AUTHstnd>R. Bousso</cds.AUTHstnd>, <cds.JOURNAL>JHEP</cds.JOURNAL> " +
				"<cds.VOL>9906</cds.VOL> <cds.YR>(1999)</cds.YR> <cds.PG>028</cds.PG>; " +
				"<cds.ARXIV>hep-th/9906022</cds.ARXIV>.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Line(tt.line, kbs, nil)
			if got != tt.want {
				t.Errorf("Line(%q) =\n%q\nwant\n%q", tt.line, got, tt.want)
			}
		})
	}
}

func TestLine_QuotedTitleAndVolumeSeries(t *testing.T) {
	kbs := defaultKBs(t)
	line := `M. Papakyriacou, H. Mayer, C. Pypen, H. P. Jr., and S. Stanzl-Tschegg, ` +
		`"Influence of loading frequency on high cycle fatigue properties of b.c.c. and h.c.p. metals," ` +
		`Materials Science and Engineering, vol. A308, pp. 143-152, 2001.`
	got, counts := Line(line, kbs, nil)
	for _, want := range []string{
		"<cds.AUTHstnd>M. Papakyriacou, H. Mayer, C. Pypen, H. P. Jr., and S. Stanzl-Tschegg</cds.AUTHstnd>",
		"<cds.QUOTED>Influence of loading frequency on high cycle fatigue properties of b.c.c. and h.c.p. metals</cds.QUOTED>",
		"<cds.JOURNAL>Mat.Sci.Eng.</cds.JOURNAL> <cds.VOL>A308</cds.VOL> <cds.YR>(2001)</cds.YR> <cds.PG>143-152</cds.PG>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Line() = %q, missing %q", got, want)
		}
	}
	if counts["MATERIALS SCIENCE AND ENGINEERING"] != 1 {
		t.Errorf("title counts = %v", counts)
	}
}

func TestLine_ReportNumbersAndCollaborations(t *testing.T) {
	kbs := defaultKBs(t)
	line := "CMS Collaboration, CMS-PAS-HIG-12-002. CMS Collaboration, CMS-PAS-HIG-12-008. " +
		"ATLAS Collaboration, arXiv:1205.0701. ATLAS Collaboration, ATLAS-CONF-2012-078."
	got, _ := Line(line, kbs, nil)
	for _, want := range []string{
		"<cds.COLLABORATION>CMS Collaboration</cds.COLLABORATION>",
		"<cds.COLLABORATION>ATLAS Collaboration</cds.COLLABORATION>",
		"<cds.REPORTNUMBER>CMS-PAS-HIG-12-002</cds.REPORTNUMBER>",
		"<cds.REPORTNUMBER>CMS-PAS-HIG-12-008</cds.REPORTNUMBER>",
		"<cds.ARXIV>arXiv:1205.0701</cds.ARXIV>",
		"<cds.REPORTNUMBER>ATLAS-CONF-2012-078</cds.REPORTNUMBER>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Line() = %q, missing %q", got, want)
		}
	}
	if strings.Contains(got, "AUTH") {
		t.Errorf("Line() tagged a collaboration as authors: %q", got)
	}
}

func TestLine_NilKnowledgeBases(t *testing.T) {
	got, counts := Line("plain text only", nil, nil)
	if got != "plain text only" {
		t.Errorf("Line() = %q, want unchanged", got)
	}
	if counts == nil {
		t.Error("Line() returned nil title counts")
	}
}
