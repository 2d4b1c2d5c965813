package atlas

import "image"

// Atlas is a normalized skin texture in the canonical square layout.
type Atlas struct {
	Image   *image.NRGBA
	Format  Format
	Variant LimbVariant
}

// Normalize validates src and converts it into the canonical square layout.
// declared is the size reported by the image header; the zero point means the
// decoded bounds are authoritative.
func Normalize(src image.Image, declared image.Point) (*Atlas, error) {
	f, err := classifyImage(src, declared)
	if err != nil {
		return nil, err
	}

	img := toNRGBA(src, f.Size(), f.Size())

	NormalizeOpacity(img, f)
	RemapLegacy(img, f)
	variant := DetectVariant(img, f)
	EraseDeadRegions(img, f, f.Square, variant)

	return &Atlas{
		Image:   img,
		Format:  f,
		Variant: variant,
	}, nil
}

func classifyImage(src image.Image, declared image.Point) (Format, error) {
	size := src.Bounds().Size()
	if declared == (image.Point{}) {
		declared = size
	}
	return Classify(size.X, size.Y, declared.X, declared.Y)
}
