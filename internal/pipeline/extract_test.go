package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDetectInput(t *testing.T) {
	cases := []struct {
		blob []byte
		want InputKind
	}{
		{[]byte("%PDF-1.4 ..."), InputPDF},
		{[]byte("PK\x03\x04rest"), InputXLSX},
		{[]byte(`"CAL DONNA","302/AB12"`), InputText},
		{[]byte{}, InputText},
	}
	for _, c := range cases {
		if got := DetectInput(c.blob); got != c.want {
			t.Errorf("DetectInput(%q)=%v want %v", c.blob, got, c.want)
		}
	}
}

func TestNormalizeInputTextPassthrough(t *testing.T) {
	in := []byte("\"CAL DONNA\",\"302/AB12 SANDALO\",\"10\"\n")
	out, err := NormalizeInput(in)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(in, out) {
		t.Fatalf("text input mutated: %q", out)
	}
}

func TestNormalizeInputXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]string{
		{"CAL DONNA", "SAN SANDALO", "302 IMMA S.R.L.", "302/AB12 SANDALO", "10", "8", "5", "3"},
		{"", "", "", `15/ZZ99 DECOLLETE "LUX"`, "4", "4", "2", "2"},
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	out, err := NormalizeInput(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)
	if !strings.Contains(text, `"302/AB12 SANDALO"`) {
		t.Fatalf("missing quoted article field: %q", text)
	}
	// Embedded quotes cannot be escaped in the line format, they are dropped.
	if !strings.Contains(text, `"15/ZZ99 DECOLLETE LUX"`) {
		t.Fatalf("embedded quotes not stripped: %q", text)
	}
}
