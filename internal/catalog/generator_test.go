package catalog

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"barca/internal"
	"barca/internal/util"
)

type stubFetcher struct {
	blobs map[string][]byte
	miss  map[string]string
}

func (s *stubFetcher) FetchBest(_ context.Context, code string) (string, []byte, string) {
	if blob, ok := s.blobs[code]; ok {
		return "https://shop.test/" + code, blob, ""
	}
	return "", nil, s.miss[code]
}

func photoBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 300, 300))
	for y := 0; y < 300; y++ {
		for x := 0; x < 300; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 90, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func record(code string, giacenza int, perc float64) internal.ArticleRecord {
	return internal.ArticleRecord{
		Code:            code,
		Product:         "SANDALO " + code,
		Fornitore:       "302 IMMA S.R.L.",
		Consegnate:      10,
		Vendute:         8,
		Giacenza:        giacenza,
		PercVendutoCalc: util.FloatPtr(perc),
	}
}

func TestGenerateZipLayout(t *testing.T) {
	records := []internal.ArticleRecord{
		record("302/AB12", 100, 90),
		record("15/ZZ99", 120, 85),
	}
	fetcher := &stubFetcher{
		blobs: map[string][]byte{"302/AB12": photoBytes(t)},
		miss:  map[string]string{"15/ZZ99": internal.MissNotFound},
	}

	gen := NewGenerator(fetcher, "BARCA", 2)
	blob, err := gen.GenerateZip(context.Background(), records)
	if err != nil {
		t.Fatal(err)
	}

	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		t.Fatal(err)
	}

	names := map[string]*zip.File{}
	for _, f := range zr.File {
		names[f.Name] = f
	}

	for _, want := range []string{
		"BARCA/cards/001_302_AB12.jpg",
		"BARCA/cards/002_15_ZZ99.jpg",
		"BARCA/_raw/001_302_AB12.jpg",
		"BARCA/_missing_report.txt",
	} {
		if _, ok := names[want]; !ok {
			t.Fatalf("missing entry %s (have %v)", want, zr.File)
		}
	}
	if _, ok := names["BARCA/_raw/002_15_ZZ99.jpg"]; ok {
		t.Fatal("raw entry written for missing image")
	}

	rc, err := names["BARCA/_missing_report.txt"].Open()
	if err != nil {
		t.Fatal(err)
	}
	report, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatal(err)
	}
	if string(report) != "15/ZZ99\t"+internal.MissNotFound {
		t.Fatalf("missing report %q", report)
	}
}

func TestGenerateZipAllFound(t *testing.T) {
	records := []internal.ArticleRecord{record("302/AB12", 100, 90)}
	fetcher := &stubFetcher{blobs: map[string][]byte{"302/AB12": photoBytes(t)}}

	gen := NewGenerator(fetcher, "", 0)
	blob, err := gen.GenerateZip(context.Background(), records)
	if err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range zr.File {
		if strings.Contains(f.Name, "_missing_report") {
			t.Fatal("missing report written with no misses")
		}
		if !strings.HasPrefix(f.Name, "BARCA/") {
			t.Fatalf("entry outside default folder: %s", f.Name)
		}
	}
}
