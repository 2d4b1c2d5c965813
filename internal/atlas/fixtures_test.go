package atlas

import (
	"image"
	"image/color"
	"testing"
)

var (
	skinTone = color.NRGBA{R: 0xc6, G: 0x8e, B: 0x6c, A: 0xff}
	black    = color.NRGBA{A: 0xff}
	white    = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	red      = color.NRGBA{R: 0xff, A: 0xff}
)

func buildAtlas(t testing.TB, w, h int, c color.NRGBA) *image.NRGBA {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	fill(img, img.Rect, c)
	return img
}

// buildNoise fills every pixel with a distinct opaque colour so copies and
// mirrors can be traced back to their source.
func buildNoise(t testing.TB, w, h int) *image.NRGBA {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x),
				G: uint8(y),
				B: uint8((x*7 + y*13) % 250),
				A: 0xff,
			})
		}
	}
	return img
}

func fill(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func clone(img *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Rect)
	copy(out.Pix, img.Pix)
	return out
}

func mustClassify(t testing.TB, w, h int) Format {
	t.Helper()

	f, err := Classify(w, h, w, h)
	if err != nil {
		t.Fatalf("classify %dx%d: %v", w, h, err)
	}
	return f
}

func inAny(x, y int, rects []image.Rectangle) bool {
	p := image.Pt(x, y)
	for _, r := range rects {
		if p.In(r) {
			return true
		}
	}
	return false
}
