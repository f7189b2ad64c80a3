package images

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

const (
	sampleSize   = 90
	varThreshold = 180
)

// IsPlaceholder flags the storefront's uniform "photo coming soon" asset:
// its grayscale variance over a 90x90 downsample sits far below any real
// product photograph. Undecodable bytes are not treated as placeholders.
func IsPlaceholder(blob []byte) bool {
	img, _, err := image.Decode(bytes.NewReader(blob))
	if err != nil {
		return false
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return false
	}

	var sum, sumSq float64
	for y := 0; y < sampleSize; y++ {
		for x := 0; x < sampleSize; x++ {
			sx := b.Min.X + x*b.Dx()/sampleSize
			sy := b.Min.Y + y*b.Dy()/sampleSize
			r, g, bl, _ := img.At(sx, sy).RGBA()
			gray := float64((r>>8 + g>>8 + bl>>8) / 3)
			sum += gray
			sumSq += gray * gray
		}
	}
	count := float64(sampleSize * sampleSize)
	mean := sum / count
	variance := sumSq/count - mean*mean
	return variance < varThreshold
}
