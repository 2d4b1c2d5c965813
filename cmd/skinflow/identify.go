package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dunamismax/skinflow/internal/inspect"
	"github.com/spf13/cobra"
)

var identifyCmd = &cobra.Command{
	Use:   "identify [file]",
	Short: "Report atlas format, limb variant and dominant colours of a skin",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentify,
}

func init() {
	identifyCmd.Flags().Int("palette", inspect.DefaultPaletteSize, "Number of dominant colours to report")
	identifyCmd.Flags().Bool("json", false, "Print the report as JSON")
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	path := args[0]
	paletteSize, _ := cmd.Flags().GetInt("palette")
	asJSON, _ := cmd.Flags().GetBool("json")

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	report, err := inspect.Inspect(data, paletteSize)
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	layout := "square"
	if report.Legacy {
		layout = "legacy (2:1)"
	}

	fmt.Fprintf(out, "File:       %s\n", path)
	fmt.Fprintf(out, "Type:       %s (%s)\n", report.ContentType, report.Codec)
	fmt.Fprintf(out, "Dimensions: %d x %d\n", report.Width, report.Height)
	fmt.Fprintf(out, "Layout:     %s\n", layout)
	fmt.Fprintf(out, "Scale:      %d px/unit (hd=%t)\n", report.Scale, report.HighDefinition)
	fmt.Fprintf(out, "Variant:    %s\n", report.Variant)
	fmt.Fprintf(out, "Palette:\n")
	for _, s := range report.Palette {
		fmt.Fprintf(out, "  %s  %5.1f%%\n", s.Hex, s.Weight*100)
	}
	return nil
}
