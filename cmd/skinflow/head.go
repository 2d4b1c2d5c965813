package main

import (
	"fmt"

	"github.com/dunamismax/skinflow/internal/atlas"
	"github.com/dunamismax/skinflow/internal/domain"
	"github.com/spf13/cobra"
)

var headCmd = &cobra.Command{
	Use:   "head",
	Short: "Render the face of a skin as a square thumbnail",
	RunE:  runHead,
}

func init() {
	addRenderFlags(headCmd)
	headCmd.Flags().IntP("size", "s", atlas.DefaultHeadSize, "Thumbnail edge length in pixels")
	rootCmd.AddCommand(headCmd)
}

func runHead(cmd *cobra.Command, args []string) error {
	size, _ := cmd.Flags().GetInt("size")

	r, err := renderStep(cmd, domain.PipelineStep{ID: "head", Action: domain.ActionHead, Size: size})
	if err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Head: %dx%d %s (%d bytes)\n", r.Size, r.Size, r.Format, len(r.Data))
	}
	return nil
}
