package pipeline

import (
	"context"

	"github.com/dunamismax/skinflow/internal/codec"
	"github.com/dunamismax/skinflow/internal/domain"
)

type stdlibTransformer struct{}

func (t stdlibTransformer) Transform(ctx context.Context, input []byte, step domain.PipelineStep) (Rendition, error) {
	img, r, err := render(ctx, input, step)
	if err != nil {
		return Rendition{}, err
	}

	data, err := codec.Encode(img, r.Format)
	if err != nil {
		return Rendition{}, err
	}
	r.Data = codec.Apply(data, r.Format, r.Encoding)
	return r, nil
}
