package pipeline

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/dunamismax/skinflow/internal/atlas"
	"github.com/dunamismax/skinflow/internal/codec"
	"github.com/dunamismax/skinflow/internal/domain"
)

type Transformer interface {
	Transform(ctx context.Context, input []byte, step domain.PipelineStep) (Rendition, error)
}

// Rendition is one encoded pipeline product.
type Rendition struct {
	Data           []byte
	Format         string
	Encoding       string
	Width          int
	Height         int
	Size           int
	Variant        string
	HighDefinition bool
}

func (r Rendition) output(step domain.PipelineStep, path string) Output {
	return Output{
		StepID:         step.ID,
		Action:         step.Action,
		Format:         r.Format,
		Encoding:       r.Encoding,
		Path:           path,
		Bytes:          len(r.Data),
		Width:          r.Width,
		Height:         r.Height,
		Size:           r.Size,
		Variant:        r.Variant,
		HighDefinition: r.HighDefinition,
		Success:        true,
	}
}

func NewTransformer() (Transformer, error) {
	return newTransformer()
}

// render runs the atlas engine for one step and returns the raw raster with
// the metadata the step produced.
func render(ctx context.Context, input []byte, step domain.PipelineStep) (image.Image, Rendition, error) {
	select {
	case <-ctx.Done():
		return nil, Rendition{}, ctx.Err()
	default:
	}

	decoded, err := codec.Decode(input)
	if err != nil {
		return nil, Rendition{}, err
	}

	r := Rendition{
		Format:   codec.NormalizeFormat(step.Format),
		Encoding: codec.NormalizeEncoding(step.Encoding),
	}

	var out image.Image
	switch strings.ToLower(strings.TrimSpace(step.Action)) {
	case domain.ActionConvert:
		a, err := atlas.Normalize(decoded.Image, decoded.Declared)
		if err != nil {
			return nil, Rendition{}, err
		}
		out = a.Image
		r.Variant = a.Variant.String()
		r.HighDefinition = a.Format.HighDefinition
	case domain.ActionHead:
		size := step.Size
		if size == 0 {
			size = atlas.DefaultHeadSize
		}
		head, err := atlas.Head(decoded.Image, decoded.Declared, size)
		if err != nil {
			return nil, Rendition{}, err
		}
		out = head
		r.Size = size
	default:
		return nil, Rendition{}, fmt.Errorf("%w: %q", ErrInvalidStepAction, step.Action)
	}

	bounds := out.Bounds()
	r.Width, r.Height = bounds.Dx(), bounds.Dy()
	return out, r, nil
}
