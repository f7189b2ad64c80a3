package report

import "testing"

func TestParseNumToken(t *testing.T) {
	fp := func(v float64) *float64 { return &v }
	cases := []struct {
		in   string
		want *float64
	}{
		{"", nil},
		{"%", nil},
		{"10", fp(10)},
		{" 10 ", fp(10)},
		{"12,50", fp(12.5)},
		{"12.50", fp(12.5)},
		{"-3", fp(-3)},
		{"+7", fp(7)},
		{"1.234", fp(1234)},
		{"1.234.567", fp(1234567)},
		{"1.234,50", fp(1234.5)},
		{"abc", nil},
		{"12a", nil},
		{"302/AB12", nil},
	}
	for _, c := range cases {
		got := ParseNumToken(c.in)
		switch {
		case got == nil && c.want == nil:
		case got == nil || c.want == nil:
			t.Errorf("ParseNumToken(%q)=%v want %v", c.in, got, c.want)
		case *got != *c.want:
			t.Errorf("ParseNumToken(%q)=%g want %g", c.in, *got, *c.want)
		}
	}
}
