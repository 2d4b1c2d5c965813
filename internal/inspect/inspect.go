// Package inspect describes an uploaded skin without producing a new one:
// its detected atlas format, limb variant and a small dominant palette.
package inspect

import (
	"fmt"
	"image"
	"math"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dunamismax/skinflow/internal/atlas"
	"github.com/dunamismax/skinflow/internal/codec"
)

const DefaultPaletteSize = 5

type Swatch struct {
	Hex    string  `json:"hex"`
	Weight float64 `json:"weight"`
}

type Report struct {
	ContentType    string   `json:"content_type"`
	Codec          string   `json:"codec"`
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	Scale          int      `json:"scale"`
	HighDefinition bool     `json:"hd"`
	Legacy         bool     `json:"legacy"`
	Variant        string   `json:"variant"`
	Palette        []Swatch `json:"palette"`
}

// Inspect decodes data, runs the atlas normalizer and reports what it found.
// The palette is computed over the opaque pixels of the normalized atlas.
func Inspect(data []byte, paletteSize int) (Report, error) {
	if paletteSize <= 0 {
		paletteSize = DefaultPaletteSize
	}

	decoded, err := codec.Decode(data)
	if err != nil {
		return Report{}, err
	}

	a, err := atlas.Normalize(decoded.Image, decoded.Declared)
	if err != nil {
		return Report{}, fmt.Errorf("normalize atlas: %w", err)
	}

	return Report{
		ContentType:    codec.Sniff(data),
		Codec:          decoded.Format,
		Width:          decoded.Declared.X,
		Height:         decoded.Declared.Y,
		Scale:          a.Format.Scale,
		HighDefinition: a.Format.HighDefinition,
		Legacy:         !a.Format.Square,
		Variant:        a.Variant.String(),
		Palette:        Palette(a.Image, paletteSize),
	}, nil
}

// Palette returns up to n dominant colours of the opaque pixels in img,
// heaviest first, with weights summing to 1. Fully transparent images yield
// an empty palette.
func Palette(img *image.NRGBA, n int) []Swatch {
	packed := packOpaque(img)
	if packed == nil {
		return []Swatch{}
	}

	out := make([]Swatch, 0, n)
	seen := make(map[string]int, n)
	for _, c := range dominantcolor.FindWeight(packed, n) {
		col, _ := colorful.MakeColor(c.RGBA)
		hex := col.Clamped().Hex()
		if i, ok := seen[hex]; ok {
			out[i].Weight += c.Weight
			continue
		}
		seen[hex] = len(out)
		out = append(out, Swatch{Hex: hex, Weight: c.Weight})
	}

	// Weights come back relative to the packed area, padding included.
	total := 0.0
	for _, s := range out {
		total += s.Weight
	}
	if total > 0 {
		for i := range out {
			out[i].Weight /= total
		}
	}
	return out
}

// packOpaque copies the opaque pixels of img into a near-square image so the
// clustering never sees the transparent background. Cells past the last
// opaque pixel stay fully transparent, which the clustering skips.
func packOpaque(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.NRGBAAt(x, y).A == 0xff {
				n++
			}
		}
	}
	if n == 0 {
		return nil
	}

	side := int(math.Ceil(math.Sqrt(float64(n))))
	packed := image.NewNRGBA(image.Rect(0, 0, side, side))
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c := img.NRGBAAt(x, y); c.A == 0xff {
				packed.SetNRGBA(i%side, i/side, c)
				i++
			}
		}
	}
	return packed
}
