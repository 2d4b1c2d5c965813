package atlas

import "image"

// NormalizeOpacity turns the pure-white overlay placeholders of a fully opaque
// atlas into real transparency. Atlases that already use alpha anywhere in
// their primary area are left alone.
func NormalizeOpacity(img *image.NRGBA, f Format) {
	primary := image.Rect(0, 0, Grid*f.Scale, Grid*f.Scale)
	if !f.Square {
		primary.Max.Y = Grid / 2 * f.Scale
	}
	if hasTransparency(img, primary) {
		return
	}

	keyWhite(img, hatOverlay.Bounds(f.Scale))
	if !f.Square {
		return
	}
	for _, r := range squareOverlays {
		keyWhite(img, r.Bounds(f.Scale))
	}
}
