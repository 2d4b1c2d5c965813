package atlas

import (
	"fmt"
	"image/color"
	"testing"
)

func TestEraseDeadRegionsOnlyClearsDocumentedCells(t *testing.T) {
	tests := []struct {
		wasSquare bool
		variant   LimbVariant
		regions   int
	}{
		{false, Classic, 8},
		{false, Slim, 12},
		{true, Classic, 18},
		{true, Slim, 22},
	}

	for _, size := range []int{64, 128} {
		for _, tt := range tests {
			t.Run(fmt.Sprintf("%d/square=%v/%s", size, tt.wasSquare, tt.variant), func(t *testing.T) {
				f := mustClassify(t, size, size)
				img := buildNoise(t, size, size)
				before := clone(img)

				dead := DeadRegions(f, tt.wasSquare, tt.variant)
				if len(dead) != tt.regions {
					t.Fatalf("expected %d dead regions, got %d", tt.regions, len(dead))
				}

				EraseDeadRegions(img, f, tt.wasSquare, tt.variant)

				for y := 0; y < size; y++ {
					for x := 0; x < size; x++ {
						got := img.NRGBAAt(x, y)
						if inAny(x, y, dead) {
							if got != (color.NRGBA{}) {
								t.Fatalf("expected (%d,%d) cleared, got %v", x, y, got)
							}
							continue
						}
						if want := before.NRGBAAt(x, y); got != want {
							t.Fatalf("pixel (%d,%d) outside dead regions changed from %v to %v", x, y, want, got)
						}
					}
				}
			})
		}
	}
}

func TestEraseDeadRegionsClearsSlimStrips(t *testing.T) {
	f := mustClassify(t, 64, 64)
	img := buildAtlas(t, 64, 64, skinTone)

	EraseDeadRegions(img, f, false, Slim)

	for _, r := range slimRegions {
		b := r.Bounds(f.Scale)
		if got := img.NRGBAAt(b.Min.X, b.Min.Y); got != (color.NRGBA{}) {
			t.Fatalf("expected slim strip %v cleared, got %v", b, got)
		}
	}

	// Body layer two stays for atlases that were legacy to begin with.
	b := body2Dead[0].Bounds(f.Scale)
	if got := img.NRGBAAt(b.Min.X, b.Min.Y); got != skinTone {
		t.Fatalf("expected body layer two untouched, got %v", got)
	}
}
