package atlas

import "image"

// Grid is the logical width of every atlas: region coordinates are expressed
// in Grid units and multiplied by Format.Scale to reach pixels.
const Grid = 16

// fineDivisor converts Format.Scale into the pixel size of one fine unit.
// Fine regions live on the 64-unit grid of a base-resolution atlas.
const fineDivisor = 4

// Region is a rectangle in grid units, or in fine units when Fine is set.
type Region struct {
	X, Y, W, H int
	Fine       bool
}

// Bounds converts r to pixels for an atlas of the given scale.
func (r Region) Bounds(scale int) image.Rectangle {
	unit := scale
	if r.Fine {
		unit = scale / fineDivisor
	}
	return image.Rect(r.X*unit, r.Y*unit, (r.X+r.W)*unit, (r.Y+r.H)*unit)
}

// CopyRegion moves a W x H grid block from (SrcX, SrcY) to (DstX, DstY).
type CopyRegion struct {
	SrcX, SrcY, W, H int
	DstX, DstY       int
}

func grid(x, y, w, h int) Region {
	return Region{X: x, Y: y, W: w, H: h}
}

func fine(x, y, w, h int) Region {
	return Region{X: x, Y: y, W: w, H: h, Fine: true}
}

var (
	hatOverlay = grid(8, 0, 8, 4)

	squareOverlays = []Region{
		grid(0, 8, 15, 4),  // right leg, body and right arm second layer
		grid(0, 12, 4, 4),  // left leg second layer
		grid(12, 12, 4, 4), // left arm second layer
	}
)

var (
	rightArmTop  = fine(50, 16, 2, 4)
	rightArmSide = fine(54, 20, 2, 12)
	leftArmTop   = fine(42, 48, 2, 4)
	leftArmSide  = fine(46, 52, 2, 12)

	slimRegions = []Region{rightArmTop, rightArmSide, leftArmTop, leftArmSide}
)

var (
	headHatDead = []Region{
		grid(0, 0, 2, 2),
		grid(6, 0, 4, 2),
		grid(14, 0, 2, 2),
	}

	bodyDead = []Region{
		grid(0, 4, 1, 1),
		grid(3, 4, 2, 1),
		grid(9, 4, 2, 1),
		grid(13, 4, 1, 1),
		grid(14, 4, 2, 4),
	}

	body2Dead = []Region{
		grid(0, 8, 1, 1),
		grid(3, 8, 2, 1),
		grid(9, 8, 2, 1),
		grid(13, 8, 1, 1),
		grid(14, 8, 2, 4),
	}

	bottomDead = []Region{
		grid(0, 12, 1, 1),
		grid(3, 12, 2, 1),
		grid(7, 12, 2, 1),
		grid(11, 12, 2, 1),
		grid(15, 12, 1, 1),
	}
)

// Legacy limb slices, mirrored into the second-layer slots of the lower half.
var legacyCopies = []CopyRegion{
	{SrcX: 11, SrcY: 4, W: 1, H: 1, DstX: 9, DstY: 12},  // arm top
	{SrcX: 12, SrcY: 4, W: 1, H: 1, DstX: 10, DstY: 12}, // arm bottom
	{SrcX: 10, SrcY: 5, W: 1, H: 3, DstX: 10, DstY: 13}, // arm outer
	{SrcX: 11, SrcY: 5, W: 1, H: 3, DstX: 9, DstY: 13},  // arm front
	{SrcX: 12, SrcY: 5, W: 1, H: 3, DstX: 8, DstY: 13},  // arm inner
	{SrcX: 13, SrcY: 5, W: 1, H: 3, DstX: 11, DstY: 13}, // arm back

	{SrcX: 1, SrcY: 4, W: 1, H: 1, DstX: 5, DstY: 12}, // leg top
	{SrcX: 2, SrcY: 4, W: 1, H: 1, DstX: 6, DstY: 12}, // leg bottom
	{SrcX: 0, SrcY: 5, W: 1, H: 3, DstX: 6, DstY: 13}, // leg outer
	{SrcX: 1, SrcY: 5, W: 1, H: 3, DstX: 5, DstY: 13}, // leg front
	{SrcX: 2, SrcY: 5, W: 1, H: 3, DstX: 4, DstY: 13}, // leg inner
	{SrcX: 3, SrcY: 5, W: 1, H: 3, DstX: 7, DstY: 13}, // leg back
}

// DeadRegions returns every rectangle EraseDeadRegions may clear for the
// given shape and variant, in pixel coordinates.
func DeadRegions(f Format, wasSquare bool, variant LimbVariant) []image.Rectangle {
	var regions []Region
	regions = append(regions, headHatDead...)
	regions = append(regions, bodyDead...)
	if variant == Slim {
		regions = append(regions, slimRegions...)
	}
	if wasSquare {
		regions = append(regions, body2Dead...)
		regions = append(regions, bottomDead...)
	}

	out := make([]image.Rectangle, 0, len(regions))
	for _, r := range regions {
		out = append(out, r.Bounds(f.Scale))
	}
	return out
}
