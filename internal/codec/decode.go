package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/dunamismax/skinflow/internal/atlas"
)

var ErrDecode = errors.New("decode image")

// MaxDimension bounds the header width of an accepted atlas, which keeps the
// decoded raster at or below 16 MiB.
const MaxDimension = 2048

type Decoded struct {
	Image  image.Image
	Format string
	// Declared is the size stored in the image header.
	Declared image.Point
}

// Decode checks the header geometry before allocating the raster, so a
// header describing an invalid or oversized atlas fails without decoding.
func Decode(data []byte) (Decoded, error) {
	if len(data) == 0 {
		return Decoded{}, fmt.Errorf("%w: empty input", ErrDecode)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Decoded{}, fmt.Errorf("%w: read header: %v", ErrDecode, err)
	}
	if _, err := atlas.Classify(cfg.Width, cfg.Height, cfg.Width, cfg.Height); err != nil {
		return Decoded{}, err
	}
	if cfg.Width > MaxDimension {
		return Decoded{}, fmt.Errorf("%w: %dx%d exceeds %d pixels", atlas.ErrInvalidDimensions, cfg.Width, cfg.Height, MaxDimension)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Decoded{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return Decoded{
		Image:    img,
		Format:   format,
		Declared: image.Pt(cfg.Width, cfg.Height),
	}, nil
}
