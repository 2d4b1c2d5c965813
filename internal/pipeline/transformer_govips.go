//go:build govips && cgo

package pipeline

import (
	"context"
	"fmt"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/dunamismax/skinflow/internal/codec"
	"github.com/dunamismax/skinflow/internal/domain"
)

type govipsTransformer struct{}

func (t govipsTransformer) Transform(ctx context.Context, input []byte, step domain.PipelineStep) (Rendition, error) {
	img, r, err := render(ctx, input, step)
	if err != nil {
		return Rendition{}, err
	}

	// The engine owns the pixels; vips only handles the final export.
	staged, err := codec.Encode(img, codec.FormatPNG)
	if err != nil {
		return Rendition{}, err
	}

	ref, err := vips.NewImageFromBuffer(staged)
	if err != nil {
		return Rendition{}, fmt.Errorf("load staged raster: %w", err)
	}
	defer ref.Close()

	data, err := exportGovipsImage(ref, r.Format)
	if err != nil {
		return Rendition{}, err
	}
	r.Data = codec.Apply(data, r.Format, r.Encoding)
	return r, nil
}

func exportGovipsImage(img *vips.ImageRef, format string) ([]byte, error) {
	switch format {
	case codec.FormatWebP:
		params := vips.NewWebpExportParams()
		params.Lossless = true
		data, _, err := img.ExportWebp(params)
		if err != nil {
			return nil, fmt.Errorf("encode webp: %w", err)
		}
		return data, nil
	case codec.FormatPNG:
		params := vips.NewPngExportParams()
		params.Compression = 9
		data, _, err := img.ExportPng(params)
		if err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
