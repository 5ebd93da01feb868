package analysis

import (
	"strings"
	"testing"

	"github.com/amartel/scry/pkg/parser"
)

func TestCountLines_Python(t *testing.T) {
	src := strings.Join([]string{
		"# header",
		"import os",
		"",
		"# explain",
		"x = 1",
		"y = 2",
		"z = 3",
		"a = 4",
		"b = 5",
		"c = 6",
	}, "\n") + "\n"

	total, comment, ratio := countLines([]byte(src), parser.LangPython)
	if total != 10 {
		t.Errorf("total = %d, want 10", total)
	}
	if comment != 2 {
		t.Errorf("comment = %d, want 2", comment)
	}
	if ratio != 20.0 {
		t.Errorf("ratio = %v, want 20.0", ratio)
	}
}

func TestCountLines_Empty(t *testing.T) {
	total, comment, ratio := countLines(nil, parser.LangPython)
	if total != 0 || comment != 0 || ratio != 0 {
		t.Errorf("countLines(nil) = %d %d %v, want zeros", total, comment, ratio)
	}
}

func TestCountLines_CFamily(t *testing.T) {
	src := strings.Join([]string{
		"// line comment",
		"int x;",
		"/* block",
		"   still block",
		"*/",
		"int y; /* inline */",
	}, "\n") + "\n"

	total, comment, _ := countLines([]byte(src), parser.LangC)
	if total != 6 {
		t.Errorf("total = %d, want 6", total)
	}
	if comment != 4 {
		t.Errorf("comment = %d, want 4", comment)
	}
}

func TestCountLines_NoTrailingNewline(t *testing.T) {
	total, _, _ := countLines([]byte("a = 1\nb = 2"), parser.LangPython)
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{3.14159, 3.14},
		{2.0 / 3.0, 0.67},
		{20.0, 20.0},
	}
	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
