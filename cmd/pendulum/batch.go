package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jotingen/pendulum/internal/automation"
	"github.com/jotingen/pendulum/internal/metrics"
	"github.com/jotingen/pendulum/internal/optim"
	"github.com/jotingen/pendulum/internal/storage"
	"github.com/spf13/cobra"
)

var (
	trials       int
	perturbation float64
	tuneParams   []string
	tuneMetric   string
	tuneMaximize bool
)

func newScenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario file.yaml",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
}

func newMonteCarloCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run many trials with perturbed starting angles",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	cmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	cmd.Flags().Float64Var(&perturbation, "perturbation", 0.01, "maximum angle perturbation (radians)")
	return cmd
}

func newTuneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search parameters for the best metric value",
		Long: "Tries every combination of --param values and reports the one with the\n" +
			"lowest (or with --max, highest) metric. Example:\n\n" +
			"  pendulum tune --preset gentle --param dt=0.01,0.03,0.066 --metric energy_drift\n\n" +
			"Parameters: " + strings.Join(optim.Params(), ", ") + "\n" +
			"Metrics: " + strings.Join(metrics.Names(), ", "),
		Args: cobra.NoArgs,
		RunE: runTune,
	}
	cmd.Flags().StringArrayVar(&tuneParams, "param", nil, "name=v1,v2,... (repeatable)")
	cmd.Flags().StringVar(&tuneMetric, "metric", "energy_drift", "metric to optimize")
	cmd.Flags().BoolVar(&tuneMaximize, "max", false, "maximize instead of minimize")
	_ = cmd.MarkFlagRequired("param")
	return cmd
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunScenario(ctx, sc, st, log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSEED\tSTEPS\tDRIFT\tDIVERGED\tRUN")
	for _, r := range results {
		id := r.RunID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%.6f\t%v\t%s\n", r.Name, r.Seed, r.Result.StepsTaken, r.Result.EnergyDrift, r.Result.Diverged, id)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturbation,
		NumTrials:    trials,
		Seed:         cfg.Seed,
	})
	if err != nil {
		return err
	}

	drifts := make([]float64, 0, len(results))
	for _, r := range results {
		if !r.Diverged {
			drifts = append(drifts, r.EnergyDrift)
		}
	}
	sort.Float64s(drifts)

	stable, diverged := automation.MonteCarloStats(results)
	fmt.Printf("trials: %d  stable: %d  diverged: %d\n", len(results), stable, diverged)
	if len(drifts) > 0 {
		fmt.Printf("energy drift: min %.6f  median %.6f  max %.6f\n",
			drifts[0], drifts[len(drifts)/2], drifts[len(drifts)-1])
	}
	return nil
}

// parseParam splits "name=v1,v2" into its name and values.
func parseParam(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("bad --param %q, want name=v1,v2,...", s)
	}
	var values []float64
	for _, field := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad --param %q: %w", s, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	names := make([]string, 0, len(tuneParams))
	ranges := make([][]float64, 0, len(tuneParams))
	for _, p := range tuneParams {
		name, values, err := parseParam(p)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	g, err := optim.NewGridSearch(cfg, names, ranges)
	if err != nil {
		return err
	}
	if tuneMaximize {
		g.Maximize()
	}
	log.Info().Int64("seed", g.Seed()).Strs("params", names).Str("metric", tuneMetric).Msg("grid search started")

	ctx, cancel := signalContext()
	defer cancel()

	best, val, err := g.Search(ctx, tuneMetric)
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("no combination produced a finite run")
	}

	fmt.Printf("best %s: %.6f (seed %d)\n", tuneMetric, val, g.Seed())
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, best[name])
	}
	return nil
}
