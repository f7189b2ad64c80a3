package report

import (
	"reflect"
	"testing"
)

func TestBalancedLinesMergesEmbeddedNewline(t *testing.T) {
	text := "\"CAL DONNA\",\"302/AB12\r\nSANDALO\",\"10\"\n\"next\",\"line\""
	lines := BalancedLines(text)
	if len(lines) != 2 {
		t.Fatalf("lines=%d want 2: %q", len(lines), lines)
	}
	if lines[0] != "\"CAL DONNA\",\"302/AB12\nSANDALO\",\"10\"" {
		t.Fatalf("first line %q", lines[0])
	}
	if lines[1] != `"next","line"` {
		t.Fatalf("second line %q", lines[1])
	}
}

func TestBalancedLinesKeepsDanglingTail(t *testing.T) {
	lines := BalancedLines("\"ok\"\n\"open")
	if len(lines) != 2 {
		t.Fatalf("lines=%d want 2", len(lines))
	}
}

func TestLineFields(t *testing.T) {
	cases := []struct {
		line string
		want []string
	}{
		{`"a","b c","d"`, []string{"a", "b c", "d"}},
		{`junk "a" mid "b" tail`, []string{"a", "b"}},
		{"a,b,c", []string{"a", "b", "c"}},
		{"a;b;c", []string{"a", "b", "c"}},
		{"a\tb\tc", []string{"a", "b", "c"}},
		{"no delimiters here", nil},
	}
	for _, c := range cases {
		if got := LineFields(c.line); !reflect.DeepEqual(got, c.want) {
			t.Errorf("LineFields(%q)=%v want %v", c.line, got, c.want)
		}
	}
}

func TestLineFieldsQuotedWinsOverCommas(t *testing.T) {
	got := LineFields(`"a,b","c"`)
	want := []string{"a,b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
