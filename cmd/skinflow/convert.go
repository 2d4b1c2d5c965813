package main

import (
	"fmt"

	"github.com/dunamismax/skinflow/internal/domain"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Normalize a skin into a square atlas",
	RunE:  runConvert,
}

func init() {
	addRenderFlags(convertCmd)
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	r, err := renderStep(cmd, domain.PipelineStep{ID: "convert", Action: domain.ActionConvert})
	if err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Converted: %dx%d %s variant=%s hd=%t (%d bytes)\n",
			r.Width, r.Height, r.Format, r.Variant, r.HighDefinition, len(r.Data))
	}
	return nil
}
