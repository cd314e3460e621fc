package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/jotingen/pendulum/internal/analysis"
	"github.com/jotingen/pendulum/internal/config"
	"github.com/jotingen/pendulum/internal/metrics"
	"github.com/jotingen/pendulum/internal/pendulum"
	"github.com/jotingen/pendulum/internal/sim"
	"github.com/jotingen/pendulum/internal/storage"
	"github.com/spf13/cobra"
)

var (
	phaseBody    string
	poincare     bool
	lyapunovRuns int
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
}

func newPlotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot angles and energy of a run (default latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
}

func newPhaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot of a run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  phasePlot,
	}
	cmd.Flags().StringVar(&phaseBody, "body", "lower", "body to plot (upper or lower)")
	cmd.Flags().BoolVar(&poincare, "poincare", false, "plot the Poincaré section instead")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and chaos analysis of a run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}
	cmd.Flags().IntVar(&lyapunovRuns, "lyapunov-steps", 3000, "steps used for the Lyapunov estimate (0 skips it)")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm run_id...",
		Short: "delete saved runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(cfg.DataDir)
			for _, id := range args {
				if err := st.Remove(id); err != nil {
					return err
				}
				log.Info().Str("run", id).Msg("run removed")
			}
			return nil
		},
	}
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSTEPS\tSEED\tUPPER\tLOWER")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", name, p.Steps, p.Seed, describeBody(p.Upper), describeBody(p.Lower))
			}
			return w.Flush()
		},
	}
}

func describeBody(b config.BodyConfig) string {
	s := "random"
	if b.Length != 0 || b.Mass != 0 {
		s = fmt.Sprintf("l=%g m=%g", b.Length, b.Mass)
	}
	if b.Angle != nil {
		s += fmt.Sprintf(" θ=%g", *b.Angle)
	}
	return s
}

// loadRun resolves the optional run id argument, defaulting to the most
// recent run.
func loadRun(args []string) (*storage.Store, *storage.RunMetadata, error) {
	st := storage.New(cfg.DataDir)
	if len(args) == 0 || args[0] == "latest" {
		meta, err := st.Latest()
		return st, meta, err
	}
	meta, err := st.Load(args[0])
	return st, meta, err
}

func loadFrames(args []string) (*storage.Store, *storage.RunMetadata, []sim.Frame, error) {
	st, meta, err := loadRun(args)
	if err != nil {
		return nil, nil, nil, err
	}
	frames, err := st.LoadFrames(meta.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, nil, fmt.Errorf("run %s has no frames", meta.ID)
	}
	return st, meta, frames, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tSTEPS\tDT\tSEED\tDRIFT\tDIVERGED")
	for _, run := range runs {
		name := run.Preset
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%d\t%.6f\t%v\n",
			run.ID,
			name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.Seed,
			run.EnergyDrift,
			run.Diverged,
		)
	}
	return w.Flush()
}

// finiteOnly drops NaN and Inf, which asciigraph cannot scale.
func finiteOnly(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func plotRun(cmd *cobra.Command, args []string) error {
	_, meta, frames, err := loadFrames(args)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(frames))

	energy := make([]float64, len(frames))
	for i, f := range frames {
		energy[i] = f.Energy
	}
	series := []struct {
		caption string
		data    []float64
	}{
		{"θ1 (upper angle)", analysis.AngleSeries(frames, pendulum.Upper)},
		{"θ2 (lower angle)", analysis.AngleSeries(frames, pendulum.Lower)},
		{"total energy", energy},
	}

	for _, s := range series {
		data := finiteOnly(s.data)
		if len(data) == 0 {
			fmt.Printf("%s: no finite samples\n\n", s.caption)
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	_, meta, frames, err := loadFrames(args)
	if err != nil {
		return err
	}

	if poincare {
		points := analysis.PoincareSection(frames)
		fmt.Printf("poincaré section: %s (%d crossings)\n", meta.ID, len(points))
		if len(points) == 0 {
			fmt.Println("no crossings detected")
			return nil
		}
		fmt.Print(analysis.PlotASCII(points, 70, 24))
		fmt.Println("x: θ2  y: ω2  sampled when θ1 crosses 0 upward")
		return nil
	}

	role := pendulum.Lower
	if phaseBody == "upper" {
		role = pendulum.Upper
	} else if phaseBody != "lower" {
		return fmt.Errorf("unknown body %q (upper or lower)", phaseBody)
	}

	portrait := analysis.NewPhasePortrait(frames, role)
	fmt.Printf("phase portrait: %s, %s body\n", meta.ID, role)
	fmt.Print(analysis.PlotASCII(portrait.Points, 70, 24))
	fmt.Println("x: θ (wrapped)  y: ω")
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	_, meta, frames, err := loadFrames(args)
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(frames))

	dt := float64(meta.Dt)
	if len(frames) > 1 {
		dt = (frames[len(frames)-1].Time - frames[0].Time) / float64(len(frames)-1)
	}

	for _, role := range []pendulum.Role{pendulum.Upper, pendulum.Lower} {
		series := analysis.AngleSeries(frames, role)
		ps := analysis.PowerSpectrum(finiteOnly(series))
		if len(ps) > 4 {
			fmt.Println(asciigraph.Plot(ps[:len(ps)/4],
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("power spectrum (%s angle)", role)),
			))
			fmt.Println()
		}
		freq := analysis.DominantFrequency(finiteOnly(series), dt)
		fmt.Printf("%s dominant frequency: %.4f hz", role, freq)
		if freq > 0 {
			fmt.Printf(" (period %.3f s)", 1/freq)
		}
		fmt.Println()
	}

	stats := metrics.NewEnergyStats()
	for _, f := range frames {
		stats.Observe(f)
	}
	mean, std := stats.MeanStdDev()
	lo, hi := stats.Range()
	fmt.Printf("\nenergy mean: %.4f  stddev: %.4f  range: [%.4f, %.4f]\n", mean, std, lo, hi)

	initial := pendulum.NewSystem(meta.Bodies[0].Body(), meta.Bodies[1].Body())
	step := meta.Dt
	if step <= 0 {
		step = pendulum.DefaultDt
	}
	errSteps := min(meta.Steps, 600)
	fmt.Printf("integration error vs rk4 over %d steps: %.5f rad\n", errSteps, analysis.IntegrationError(initial, step, errSteps, 8))

	if lyapunovRuns > 0 {
		lambda := analysis.LyapunovExponent(initial, step, lyapunovRuns, 1e-6)
		verdict := "regular"
		if lambda > 0 {
			verdict = "chaotic"
		}
		fmt.Printf("largest lyapunov exponent: %.4f (%s)\n", lambda, verdict)
	}
	return nil
}
