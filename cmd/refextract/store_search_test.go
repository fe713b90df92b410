package main

import "testing"

func TestParseYearRange(t *testing.T) {
	tests := []struct {
		expr     string
		from, to int
		wantErr  bool
	}{
		{"1967", 1967, 1967, false},
		{" 2012 ", 2012, 2012, false},
		{"1990:1999", 1990, 1999, false},
		{"2000:", 2000, 0, false},
		{":1970", 0, 1970, false},
		{":", 0, 0, false},
		{"", 0, 0, false},
		{"nineties", 0, 0, true},
		{"x:1999", 0, 0, true},
		{"1990:y", 0, 0, true},
	}
	for _, tt := range tests {
		from, to, err := parseYearRange(tt.expr)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseYearRange(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && (from != tt.from || to != tt.to) {
			t.Errorf("parseYearRange(%q) = %d, %d, want %d, %d", tt.expr, from, to, tt.from, tt.to)
		}
	}
}
