package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jotingen/pendulum/internal/export"
	"github.com/spf13/cobra"
)

var (
	outPath string
	svgSize int
	pngKind string
)

func newExportJSONCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newExportSVGCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw the final state and trace of a run as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportSVG,
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&svgSize, "size", 600, "image size in pixels")
	return cmd
}

func newExportPNGCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "plot a run to PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportPNG,
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (required)")
	cmd.Flags().StringVar(&pngKind, "kind", "trace", "plot kind: trace, energy or angles")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// writeOutput runs fn against the output file, or stdout when none is set.
func writeOutput(fn func(io.Writer) error) error {
	if outPath == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info().Str("path", outPath).Msg("exported")
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, meta, frames, err := loadFrames(args)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(meta.ID)
	if err != nil {
		return err
	}

	data := export.NewData(*meta, frames, trace)
	return writeOutput(func(w io.Writer) error { return export.JSON(w, data) })
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st, meta, frames, err := loadFrames(args)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(meta.ID)
	if err != nil {
		return err
	}

	svg := export.TraceSVG(frames[len(frames)-1].Bodies, trace, svgSize)
	return writeOutput(func(w io.Writer) error {
		_, err := io.WriteString(w, svg)
		return err
	})
}

func exportPNG(cmd *cobra.Command, args []string) error {
	st, meta, frames, err := loadFrames(args)
	if err != nil {
		return err
	}

	var write func(io.Writer) error
	switch pngKind {
	case "trace":
		trace, err := st.LoadTrace(meta.ID)
		if err != nil {
			return err
		}
		write = func(w io.Writer) error { return export.TracePNG(w, trace, "tip trace "+meta.ID) }
	case "energy":
		write = func(w io.Writer) error { return export.EnergyPNG(w, frames, "energy "+meta.ID) }
	case "angles":
		write = func(w io.Writer) error { return export.AnglesPNG(w, frames, "angles "+meta.ID) }
	default:
		return fmt.Errorf("unknown plot kind %q (trace, energy or angles)", pngKind)
	}
	return writeOutput(write)
}
