package atlas

import "image"

// LimbVariant is the arm width a skin was drawn for.
type LimbVariant int

const (
	Classic LimbVariant = iota
	Slim
)

func (v LimbVariant) String() string {
	if v == Slim {
		return "slim"
	}
	return "classic"
}

const (
	topWeight          = 1
	sideWeight         = 2
	slimScoreThreshold = 4
)

type coverage struct {
	total       int
	transparent int
	black       int
	white       int
}

func (c coverage) unused() bool {
	return c.total > 0 && (c.transparent == c.total || c.black == c.total || c.white == c.total)
}

func measure(img *image.NRGBA, r image.Rectangle) coverage {
	r = r.Intersect(img.Rect)
	c := coverage{total: r.Dx() * r.Dy()}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := img.PixOffset(x, y)
			p := img.Pix[i : i+4]
			if !isOpaque(p) {
				c.transparent++
			}
			if isPureBlack(p) {
				c.black++
			}
			if isPureWhite(p) {
				c.white++
			}
		}
	}
	return c
}

// DetectVariant classifies the arm geometry of a canonical square atlas. A
// slim atlas leaves the outermost arm columns unpainted: fully transparent,
// pure black or pure white.
func DetectVariant(img *image.NRGBA, f Format) LimbVariant {
	score := 0
	for _, arm := range [][2]Region{
		{rightArmTop, rightArmSide},
		{leftArmTop, leftArmSide},
	} {
		if measure(img, arm[0].Bounds(f.Scale)).unused() {
			score += topWeight
		}
		if measure(img, arm[1].Bounds(f.Scale)).unused() {
			score += sideWeight
		}
	}

	if score >= slimScoreThreshold {
		return Slim
	}
	return Classic
}
