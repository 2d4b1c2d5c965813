package atlas

import "image"

// RemapLegacy fills the second limb layer of a legacy atlas that has already
// been placed on a square canvas. Square atlases are not touched.
func RemapLegacy(img *image.NRGBA, f Format) {
	if f.Square {
		return
	}

	scratch := image.NewNRGBA(image.Rect(0, 0, Grid*f.Scale, Grid*f.Scale))
	for _, c := range legacyCopies {
		copyMirrored(img, scratch, c, f.Scale)
	}
}

// copyMirrored captures the source slice into scratch, then writes it into the
// destination slice reflected about the destination's right edge.
func copyMirrored(img, scratch *image.NRGBA, c CopyRegion, scale int) {
	sx, sy := c.SrcX*scale, c.SrcY*scale
	w, h := c.W*scale, c.H*scale
	dx, dy := c.DstX*scale, c.DstY*scale

	for y := 0; y < h; y++ {
		si := img.PixOffset(sx, sy+y)
		ti := scratch.PixOffset(0, y)
		copy(scratch.Pix[ti:ti+4*w], img.Pix[si:si+4*w])
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ti := scratch.PixOffset(x, y)
			di := img.PixOffset(dx+w-1-x, dy+y)
			copy(img.Pix[di:di+4], scratch.Pix[ti:ti+4])
		}
	}
}
