package atlas

import (
	"errors"
	"fmt"
)

var (
	ErrDimensionMismatch = errors.New("decoded size does not match declared size")
	ErrInvalidDimensions = errors.New("invalid atlas dimensions")
	ErrSizeTooSmall      = errors.New("head size must be at least 8")
)

// Format describes a validated atlas. Scale is pixels per grid unit.
type Format struct {
	HighDefinition bool
	Square         bool
	Scale          int
}

// Classify validates raw atlas dimensions. declaredWidth and declaredHeight
// are the sizes reported by the image header; pass the decoded size when the
// decoder has no separate notion of one.
func Classify(width, height, declaredWidth, declaredHeight int) (Format, error) {
	if width != declaredWidth || height != declaredHeight {
		return Format{}, fmt.Errorf("%w: decoded %dx%d, declared %dx%d",
			ErrDimensionMismatch, width, height, declaredWidth, declaredHeight)
	}

	if width <= 0 || height <= 0 ||
		width%2 != 0 || height%2 != 0 ||
		width%64 != 0 || height%32 != 0 ||
		(width != height && width != 2*height) {
		return Format{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	return Format{
		HighDefinition: width > 64,
		Square:         width == height,
		Scale:          width / Grid,
	}, nil
}

// Size is the atlas width in pixels.
func (f Format) Size() int {
	return f.Scale * Grid
}
