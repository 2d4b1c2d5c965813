package atlas

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func TestNormalizeOpacityKeysWhiteInOverlays(t *testing.T) {
	f := mustClassify(t, 64, 64)
	img := buildAtlas(t, 64, 64, skinTone)

	fill(img, hatOverlay.Bounds(f.Scale), white)
	img.SetNRGBA(33, 1, color.NRGBA{R: 0xfe, G: 0xff, B: 0xff, A: 0xff})
	fill(img, image.Rect(0, 0, 8, 8), white)
	fill(img, squareOverlays[2].Bounds(f.Scale), white)

	before := clone(img)
	NormalizeOpacity(img, f)

	overlays := []image.Rectangle{hatOverlay.Bounds(f.Scale)}
	for _, r := range squareOverlays {
		overlays = append(overlays, r.Bounds(f.Scale))
	}

	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			was := before.NRGBAAt(x, y)
			got := img.NRGBAAt(x, y)
			if was == white && inAny(x, y, overlays) {
				if got != (color.NRGBA{}) {
					t.Fatalf("expected white at (%d,%d) to be keyed out, got %v", x, y, got)
				}
				continue
			}
			if got != was {
				t.Fatalf("pixel (%d,%d) changed from %v to %v", x, y, was, got)
			}
		}
	}
}

func TestNormalizeOpacityNoopWhenTransparencyPresent(t *testing.T) {
	f := mustClassify(t, 64, 64)
	img := buildAtlas(t, 64, 64, white)
	img.SetNRGBA(63, 63, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x80})

	before := clone(img)
	NormalizeOpacity(img, f)
	if !bytes.Equal(before.Pix, img.Pix) {
		t.Fatal("expected atlas with transparency to be left untouched")
	}

	// A second run after keying is also a no-op.
	img = buildAtlas(t, 64, 64, white)
	NormalizeOpacity(img, f)
	once := clone(img)
	NormalizeOpacity(img, f)
	if !bytes.Equal(once.Pix, img.Pix) {
		t.Fatal("expected second normalization to change nothing")
	}
}

func TestNormalizeOpacityLegacyOnlyKeysHat(t *testing.T) {
	f := mustClassify(t, 64, 32)
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	fill(img, image.Rect(0, 0, 64, 32), white)
	// The lower half lies outside the primary area of a legacy atlas.
	fill(img, image.Rect(0, 32, 64, 64), white)
	img.SetNRGBA(0, 63, color.NRGBA{})

	NormalizeOpacity(img, f)

	hat := hatOverlay.Bounds(f.Scale)
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			got := img.NRGBAAt(x, y)
			switch {
			case image.Pt(x, y).In(hat):
				if got != (color.NRGBA{}) {
					t.Fatalf("expected hat pixel (%d,%d) keyed, got %v", x, y, got)
				}
			case x == 0 && y == 63:
			default:
				if got != white {
					t.Fatalf("expected pixel (%d,%d) untouched, got %v", x, y, got)
				}
			}
		}
	}
}
