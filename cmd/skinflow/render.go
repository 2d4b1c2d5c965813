package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dunamismax/skinflow/internal/domain"
	"github.com/dunamismax/skinflow/internal/pipeline"
	"github.com/spf13/cobra"
)

// renderStep runs one pipeline step over the input file and writes the
// result to the output path, or stdout when the path is "-".
func renderStep(cmd *cobra.Command, step domain.PipelineStep) (pipeline.Rendition, error) {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	step.Format, _ = cmd.Flags().GetString("format")
	step.Encoding, _ = cmd.Flags().GetString("encoding")

	if err := step.Validate(); err != nil {
		return pipeline.Rendition{}, err
	}

	inputData, err := os.ReadFile(inputPath)
	if err != nil {
		return pipeline.Rendition{}, fmt.Errorf("reading input: %w", err)
	}

	if err := pipeline.Startup(); err != nil {
		return pipeline.Rendition{}, fmt.Errorf("starting pipeline runtime: %w", err)
	}
	defer pipeline.Shutdown()

	transformer, err := pipeline.NewTransformer()
	if err != nil {
		return pipeline.Rendition{}, err
	}

	r, err := transformer.Transform(context.Background(), inputData, step)
	if err != nil {
		return pipeline.Rendition{}, fmt.Errorf("%s: %w", step.Action, err)
	}

	if outputPath == "-" {
		_, err = cmd.OutOrStdout().Write(r.Data)
		return r, err
	}
	if err := os.WriteFile(outputPath, r.Data, 0644); err != nil {
		return pipeline.Rendition{}, fmt.Errorf("writing output: %w", err)
	}
	return r, nil
}

func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "", "Input skin image (png, webp, gif, bmp, jpeg)")
	cmd.Flags().StringP("output", "o", "", `Output file, or "-" for stdout`)
	cmd.Flags().StringP("format", "f", "png", "Output format (png, webp)")
	cmd.Flags().String("encoding", "binary", "Output encoding (binary, data_uri)")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")
}
