package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func uniformImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func noisyImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 7 % 256), uint8(y * 13 % 256), uint8((x + y) * 3 % 256), 255})
		}
	}
	return img
}

func TestIsPlaceholderUniform(t *testing.T) {
	blob := pngBytes(t, uniformImage(200, 200, color.RGBA{240, 240, 240, 255}))
	if !IsPlaceholder(blob) {
		t.Fatal("uniform image not flagged")
	}
}

func TestIsPlaceholderRealPhoto(t *testing.T) {
	blob := pngBytes(t, noisyImage(200, 200))
	if IsPlaceholder(blob) {
		t.Fatal("varied image flagged as placeholder")
	}
}

func TestIsPlaceholderUndecodable(t *testing.T) {
	if IsPlaceholder([]byte("not an image")) {
		t.Fatal("garbage flagged as placeholder")
	}
}
