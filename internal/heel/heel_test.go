package heel

import "testing"

func TestExtractMM(t *testing.T) {
	fp := func(v float64) *float64 { return &v }
	cases := []struct {
		descr string
		want  *float64
	}{
		{"SANDALO T30 NERO", fp(30)},
		{"DECOLLETE T 6,5", fp(65)},
		{"tacco 6,5 cm", fp(65)},
		{"misura 7", fp(70)},
		{"altezza 80", fp(80)},
		{"T 12.5 CAMOSCIO", fp(125)},
		{"STIVALE 100", fp(100)},
		{"nessun numero", nil},
		{"", nil},
		{"   ", nil},
	}
	for _, c := range cases {
		got := ExtractMM(c.descr)
		switch {
		case got == nil && c.want == nil:
		case got == nil || c.want == nil:
			t.Errorf("ExtractMM(%q)=%v want %v", c.descr, got, c.want)
		case *got != *c.want:
			t.Errorf("ExtractMM(%q)=%g want %g", c.descr, *got, *c.want)
		}
	}
}

func TestExtractMMPrefersSizeToken(t *testing.T) {
	got := ExtractMM("ART 12 SANDALO T30")
	if got == nil || *got != 30 {
		t.Fatalf("got %v want 30", got)
	}
}
