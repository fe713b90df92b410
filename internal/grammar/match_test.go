package grammar

import (
	"testing"

	"github.com/dlclark/regexp2"
)

func TestSlice(t *testing.T) {
	tests := []struct {
		s    string
		i, j int
		want string
	}{
		{"Phys. Rev.", 0, 4, "Phys"},
		{"Phys. Rev.", 6, 100, "Rev."},
		{"Phys. Rev.", -3, 2, "Ph"},
		{"Phys. Rev.", 5, 5, ""},
		{"Zürich", 1, 3, "ür"},
	}
	for _, tt := range tests {
		if got := Slice(tt.s, tt.i, tt.j); got != tt.want {
			t.Errorf("Slice(%q, %d, %d) = %q, want %q", tt.s, tt.i, tt.j, got, tt.want)
		}
	}
}

func TestGroups(t *testing.T) {
	re := regexp2.MustCompile(`(?<vol>\d+)(?:\s+\((?<year>\d{4})\))?`, regexp2.None)

	m := Find(re, "Lett. 19 (1967)")
	if m == nil {
		t.Fatal("Find() = nil")
	}
	if got := Group(m, "vol"); got != "19" {
		t.Errorf("Group(vol) = %q, want %q", got, "19")
	}
	if !Matched(m, "year") {
		t.Error("Matched(year) = false, want true")
	}
	if i, j := GroupSpan(m, "year"); i != 10 || j != 14 {
		t.Errorf("GroupSpan(year) = %d, %d, want 10, 14", i, j)
	}

	m = Find(re, "vol 12")
	if Matched(m, "year") || Group(m, "year") != "" {
		t.Errorf("year group took part in %q", m.String())
	}
	if i, j := GroupSpan(m, "nope"); i != -1 || j != -1 {
		t.Errorf("GroupSpan(nope) = %d, %d, want -1, -1", i, j)
	}
	if Find(re, "no digits") != nil {
		t.Error("Find() matched text without digits")
	}
}

func TestFindAllAndReplace(t *testing.T) {
	re := regexp2.MustCompile(`\d+`, regexp2.None)
	if got := len(FindAll(re, "1 22 333")); got != 3 {
		t.Errorf("FindAll() returned %d matches, want 3", got)
	}
	if got := ReplaceAll(re, "vol 19 p 1264", "N"); got != "vol N p N" {
		t.Errorf("ReplaceAll() = %q, want %q", got, "vol N p N")
	}
	got := Replace(re, "19 1264", func(m *regexp2.Match) string { return "<" + m.String() + ">" })
	if got != "<19> <1264>" {
		t.Errorf("Replace() = %q, want %q", got, "<19> <1264>")
	}
}

func TestNumeration_VolumePageYear(t *testing.T) {
	m := Find(Numeration[0], " 19, 1264 (1967) and more")
	if m == nil {
		t.Fatal("volume, page, year numeration did not match")
	}
	for group, want := range map[string]string{"vol_num": "19", "page": "1264", "year": "1967"} {
		if got := Group(m, group); got != want {
			t.Errorf("Group(%s) = %q, want %q", group, got, want)
		}
	}
	if Find(Numeration[0], "see 19, 1264 (1967)") != nil {
		t.Error("numeration matched away from the start of the text")
	}
}
