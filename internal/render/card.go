// Package render draws the printable article cards consumed by the catalog
// packager: one A6 JPEG per record, photo on top, info box below.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"barca/internal"
)

// A6 at 300dpi: four cards per A4 sheet.
const (
	CanvasW = 1240
	CanvasH = 1748
	PhotoH  = 1120

	margin      = 40
	borderW     = 6
	infoBorderW = 8
	jpegQuality = 95
)

var (
	faceH1   = newFace(gobold.TTF, 56)
	faceH2   = newFace(goregular.TTF, 40)
	faceTxt  = newFace(goregular.TTF, 34)
	faceMiss = newFace(goregular.TTF, 28)
)

func newFace(ttf []byte, size float64) font.Face {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil
	}
	return truetype.NewFace(f, &truetype.Options{Size: size})
}

// Card renders one record at the given rank. imageBytes may be nil; the card
// is produced regardless, with the miss reason printed in the photo box.
func Card(rec internal.ArticleRecord, rank int, imageBytes []byte, missReason string) ([]byte, error) {
	dc := gg.NewContext(CanvasW, CanvasH)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)

	strokeRect(dc, 0, 0, CanvasW, CanvasH, borderW)
	strokeRect(dc, margin, margin, CanvasW-2*margin, PhotoH-margin, borderW)

	drawn := false
	if len(imageBytes) > 0 {
		if img, _, err := image.Decode(bytes.NewReader(imageBytes)); err == nil {
			pastePhoto(dc, img)
			drawn = true
		} else {
			missReason = internal.MissDecodeFailed
		}
	}
	if !drawn {
		setFace(dc, faceH1)
		dc.DrawString("IMMAGINE NON TROVATA", margin+30, margin+100)
		setFace(dc, faceH2)
		dc.DrawString(rec.Code, margin+30, margin+160)
		if missReason != "" {
			setFace(dc, faceMiss)
			dc.DrawString(missReason, margin+30, margin+210)
		}
	}

	infoTop := float64(PhotoH + margin)
	strokeRect(dc, margin, infoTop, CanvasW-2*margin, CanvasH-margin-infoTop, infoBorderW)

	x := float64(margin + 30)
	xR := float64(CanvasW/2 + 10)
	y := infoTop + 80

	setFace(dc, faceH1)
	dc.DrawString(fmt.Sprintf("#%03d   %s", rank, rec.Code), x, y)
	y += 62

	setFace(dc, faceH2)
	maxw := float64(CanvasW - 2*margin - 60)
	lines := wrapText(dc, strings.ToUpper(strings.TrimSpace(rec.Product)), maxw)
	if len(lines) > 2 {
		lines = lines[:2]
	}
	for _, ln := range lines {
		dc.DrawString(ln, x, y)
		y += 48
	}
	y += 10

	setFace(dc, faceTxt)
	yL := y
	for _, ln := range infoLines(rec) {
		dc.DrawString(ln, x, yL)
		yL += 46
	}

	setFace(dc, faceH2)
	yR := y
	if rec.PrzAcq != nil {
		dc.DrawString(fmt.Sprintf("ACQ %.2f", *rec.PrzAcq), xR, yR)
		yR += 48
	}
	if rec.PrzVend != nil {
		dc.DrawString(fmt.Sprintf("VEND %.2f", *rec.PrzVend), xR, yR)
		yR += 48
	}
	if rec.ValoreNetto != nil {
		dc.DrawString(fmt.Sprintf("VALORE NETTO %.2f", *rec.ValoreNetto), xR, yR)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dc.Image(), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode card: %w", err)
	}
	return out.Bytes(), nil
}

func infoLines(rec internal.ArticleRecord) []string {
	perc := ""
	if v := percVendita(rec); v != nil {
		perc = fmt.Sprintf("%.1f%%", *v)
	}
	lines := []string{
		"FORNITORE: " + rec.Fornitore,
		"% VENDITA: " + perc,
		fmt.Sprintf("CONSEGNATE: %d", rec.Consegnate),
		fmt.Sprintf("VENDUTE: %d", rec.Vendute),
		fmt.Sprintf("GIACENZA: %d", rec.Giacenza),
	}
	if rec.TaccoMM != nil {
		if v := *rec.TaccoMM; v == math.Trunc(v) {
			lines = append(lines, fmt.Sprintf("TACCO (mm): %d", int(v)))
		} else {
			lines = append(lines, fmt.Sprintf("TACCO (mm): %g", v))
		}
	}
	return lines
}

func percVendita(rec internal.ArticleRecord) *float64 {
	if rec.PercVendutoCalc != nil {
		return rec.PercVendutoCalc
	}
	return rec.PercVenduto
}

// pastePhoto centers the image in the photo box, scaling down only.
func pastePhoto(dc *gg.Context, img image.Image) {
	x0, y0 := margin, margin
	bw, bh := CanvasW-2*margin, PhotoH-margin
	iw, ih := img.Bounds().Dx(), img.Bounds().Dy()
	if iw == 0 || ih == 0 {
		return
	}

	scale := math.Min(math.Min(float64(bw)/float64(iw), float64(bh)/float64(ih)), 1.0)
	if scale < 1.0 {
		nw, nh := int(float64(iw)*scale), int(float64(ih)*scale)
		dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
		img = dst
		iw, ih = nw, nh
	}

	px := x0 + (bw-iw)/2
	py := y0 + (bh-ih)/2
	dc.DrawImage(img, px, py)
}

func wrapText(dc *gg.Context, text string, maxWidth float64) []string {
	words := strings.Fields(text)
	lines := []string{}
	cur := ""
	for _, w := range words {
		test := strings.TrimSpace(cur + " " + w)
		if tw, _ := dc.MeasureString(test); tw <= maxWidth {
			cur = test
			continue
		}
		if cur != "" {
			lines = append(lines, cur)
		}
		cur = w
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

func strokeRect(dc *gg.Context, x, y, w, h float64, lineWidth float64) {
	dc.SetLineWidth(lineWidth)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()
}

func setFace(dc *gg.Context, f font.Face) {
	if f != nil {
		dc.SetFontFace(f)
	}
}
