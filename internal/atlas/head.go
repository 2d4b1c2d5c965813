package atlas

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

const (
	MinHeadSize     = 8
	DefaultHeadSize = 8
)

// Head renders the front face of the head with its hat overlay and rescales
// it to size x size with nearest-neighbour sampling.
func Head(src image.Image, declared image.Point, size int) (*image.NRGBA, error) {
	if size < MinHeadSize {
		return nil, fmt.Errorf("%w: got %d", ErrSizeTooSmall, size)
	}

	f, err := classifyImage(src, declared)
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	full := toNRGBA(src, b.Dx(), b.Dy())
	oneHead := f.Size() / 8

	face := crop(full, image.Rect(oneHead, oneHead, 2*oneHead, 2*oneHead))
	hat := transparentHat(crop(full, image.Rect(5*oneHead, oneHead, 6*oneHead, 2*oneHead)))
	draw.Draw(face, face.Bounds(), hat, image.Point{}, draw.Over)

	out := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.NearestNeighbor.Scale(out, out.Bounds(), face, face.Bounds(), draw.Src, nil)
	return out, nil
}

// transparentHat keys out the white "no hat" placeholder of opaque skins.
func transparentHat(hat *image.NRGBA) *image.NRGBA {
	if !hasTransparency(hat, hat.Rect) {
		keyWhite(hat, hat.Rect)
	}
	return hat
}

func crop(img *image.NRGBA, r image.Rectangle) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		si := img.PixOffset(r.Min.X, r.Min.Y+y)
		di := dst.PixOffset(0, y)
		copy(dst.Pix[di:di+4*r.Dx()], img.Pix[si:si+4*r.Dx()])
	}
	return dst
}
