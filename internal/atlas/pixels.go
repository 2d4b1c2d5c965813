package atlas

import "image"

// Pixel predicates operate on a 4-byte NRGBA slice.

func isOpaque(p []uint8) bool {
	return p[3] == 0xff
}

func isPureWhite(p []uint8) bool {
	return p[0] == 0xff && p[1] == 0xff && p[2] == 0xff
}

func isPureBlack(p []uint8) bool {
	return p[0] == 0 && p[1] == 0 && p[2] == 0
}

func clearPixel(p []uint8) {
	p[0], p[1], p[2], p[3] = 0, 0, 0, 0
}

// hasTransparency reports whether any pixel inside r has alpha below 255.
func hasTransparency(img *image.NRGBA, r image.Rectangle) bool {
	r = r.Intersect(img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := img.PixOffset(x, y)
			if !isOpaque(img.Pix[i : i+4]) {
				return true
			}
		}
	}
	return false
}

// keyWhite replaces every exactly-white pixel inside r with transparent black.
func keyWhite(img *image.NRGBA, r image.Rectangle) {
	r = r.Intersect(img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := img.PixOffset(x, y)
			p := img.Pix[i : i+4]
			if isPureWhite(p) {
				clearPixel(p)
			}
		}
	}
}

func clearRect(img *image.NRGBA, r image.Rectangle) {
	r = r.Intersect(img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := img.PixOffset(r.Min.X, y)
		row := img.Pix[i : i+4*r.Dx()]
		for j := range row {
			row[j] = 0
		}
	}
}

// toNRGBA copies src into a fresh NRGBA buffer of the given size anchored at
// the origin. Pixels outside src stay transparent.
func toNRGBA(src image.Image, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	b := src.Bounds()

	if s, ok := src.(*image.NRGBA); ok {
		rows := min(b.Dy(), height)
		cols := min(b.Dx(), width)
		for y := 0; y < rows; y++ {
			si := s.PixOffset(b.Min.X, b.Min.Y+y)
			di := dst.PixOffset(0, y)
			copy(dst.Pix[di:di+4*cols], s.Pix[si:si+4*cols])
		}
		return dst
	}

	for y := 0; y < min(b.Dy(), height); y++ {
		for x := 0; x < min(b.Dx(), width); x++ {
			dst.Set(x, y, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}
