package atlas

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func legacyCanvas(t *testing.T, w int) (*image.NRGBA, *image.NRGBA) {
	t.Helper()

	src := buildNoise(t, w, w/2)
	canvas := toNRGBA(src, w, w)
	return src, canvas
}

func TestRemapLegacyMirrorsAboutRightEdge(t *testing.T) {
	f := mustClassify(t, 64, 32)
	src, img := legacyCanvas(t, 64)

	RemapLegacy(img, f)

	// Arm front: source x 44..47, y 20..31 lands in x 36..39, y 52..63 reversed.
	for y := 0; y < 12; y++ {
		for i := 0; i < 4; i++ {
			want := src.NRGBAAt(44+i, 20+y)
			got := img.NRGBAAt(39-i, 52+y)
			if got != want {
				t.Fatalf("arm front column %d row %d: expected %v, got %v", i, y, want, got)
			}
		}
	}

	// Leg top: source (4..7, 16..19) lands in (20..23, 48..51) reversed.
	if got, want := img.NRGBAAt(23, 48), src.NRGBAAt(4, 16); got != want {
		t.Fatalf("leg top corner: expected %v, got %v", want, got)
	}
	if got, want := img.NRGBAAt(20, 51), src.NRGBAAt(7, 19); got != want {
		t.Fatalf("leg top opposite corner: expected %v, got %v", want, got)
	}
}

func TestRemapLegacyCoversEveryCopyRegion(t *testing.T) {
	for _, w := range []int{64, 128} {
		f := mustClassify(t, w, w/2)
		src, img := legacyCanvas(t, w)

		RemapLegacy(img, f)

		s := f.Scale
		for _, c := range legacyCopies {
			for y := 0; y < c.H*s; y++ {
				for x := 0; x < c.W*s; x++ {
					want := src.NRGBAAt(c.SrcX*s+x, c.SrcY*s+y)
					got := img.NRGBAAt(c.DstX*s+c.W*s-1-x, c.DstY*s+y)
					if got != want {
						t.Fatalf("width %d region %+v offset (%d,%d): expected %v, got %v", w, c, x, y, want, got)
					}
				}
			}
		}

		// The upper half is the untouched source.
		for y := 0; y < w/2; y++ {
			for x := 0; x < w; x++ {
				if img.NRGBAAt(x, y) != src.NRGBAAt(x, y) {
					t.Fatalf("width %d: source pixel (%d,%d) changed", w, x, y)
				}
			}
		}
	}
}

func TestRemapLegacySkipsSquare(t *testing.T) {
	f := mustClassify(t, 64, 64)
	img := buildNoise(t, 64, 64)
	before := clone(img)

	RemapLegacy(img, f)
	if !bytes.Equal(before.Pix, img.Pix) {
		t.Fatal("expected square atlas to be left untouched")
	}
}

func TestRemapLegacyLeavesUnmappedCellsEmpty(t *testing.T) {
	f := mustClassify(t, 64, 32)
	_, img := legacyCanvas(t, 64)

	RemapLegacy(img, f)

	for _, p := range []image.Point{{0, 32}, {0, 63}, {63, 63}, {15, 50}, {50, 50}} {
		if got := img.NRGBAAt(p.X, p.Y); got != (color.NRGBA{}) {
			t.Fatalf("expected %v to stay transparent, got %v", p, got)
		}
	}
}
