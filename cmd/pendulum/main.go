package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jotingen/pendulum/internal/config"
	"github.com/jotingen/pendulum/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	configFile string
	preset     string
	logFormat  string

	// set by the root PersistentPreRunE
	cfg *config.Config
	log zerolog.Logger
)

var v = config.NewViper()

// main executes the root command. With no subcommand it opens the
// interactive preset picker.
func main() {
	rootCmd, err := newRootCmd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:               "pendulum",
		Short:             "double pendulum simulator",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE:              runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "start from a preset: "+strings.Join(config.ListPresets(), ", "))
	pf.StringVar(&logFormat, "log-format", "auto", "log format: auto, console or json")
	pf.String("data", config.DefaultDataDir, "data directory")
	pf.String("log-level", config.DefaultLogLevel, "log level")
	pf.String("theme", config.DefaultTheme, "terminal colour theme")
	pf.Float32("dt", 0, "fixed timestep in seconds")
	pf.Int("steps", 0, "number of steps for batch runs")
	pf.Bool("variable", false, "use measured wall-clock dt")
	pf.Float32("time-scale", 0, "multiplier on measured dt")
	pf.Int64("seed", 0, "random seed (0 = time based)")
	pf.Bool("stop-on-divergence", false, "stop a run at the first non-finite state")
	for _, role := range []string{"upper", "lower"} {
		pf.Float32(role+"-length", 0, role+" rod length")
		pf.Float32(role+"-mass", 0, role+" mass")
		pf.Float32(role+"-angle", 0, role+" starting angle (radians)")
		pf.Float32(role+"-omega", 0, role+" starting angular velocity")
		pf.String(role+"-color", "", role+" colour (name or #rrggbb)")
	}
	if err := bindFlags(v, pf); err != nil {
		return nil, err
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newLiveCmd(),
		newWindowCmd(),
		newListCmd(),
		newPlotCmd(),
		newPhaseCmd(),
		newAnalyzeCmd(),
		newExportJSONCmd(),
		newExportSVGCmd(),
		newExportPNGCmd(),
		newPresetsCmd(),
		newCompareCmd(),
		newSweepCmd(),
		newBenchCmd(),
		newRemoveCmd(),
		newScenarioCmd(),
		newMonteCarloCmd(),
		newTuneCmd(),
	)
	return rootCmd, nil
}

// flagKeys maps config keys to the flag names that set them.
var flagKeys = map[string]string{
	"data_dir":           "data",
	"log_level":          "log-level",
	"theme":              "theme",
	"dt":                 "dt",
	"steps":              "steps",
	"variable":           "variable",
	"time_scale":         "time-scale",
	"seed":               "seed",
	"stop_on_divergence": "stop-on-divergence",

	"upper.length":           "upper-length",
	"upper.mass":             "upper-mass",
	"upper.angle":            "upper-angle",
	"upper.angular_velocity": "upper-omega",
	"upper.color":            "upper-color",

	"lower.length":           "lower-length",
	"lower.mass":             "lower-mass",
	"lower.angle":            "lower-angle",
	"lower.angular_velocity": "lower-omega",
	"lower.color":            "lower-color",
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for key, name := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return fmt.Errorf("bind %s: %w", name, err)
		}
	}
	return nil
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Resolve(v, preset, configFile)
	if err != nil {
		return err
	}

	format, err := logging.ParseFormat(logFormat)
	if err != nil {
		return err
	}
	log, err = logging.New(os.Stderr, cfg.LogLevel, format)
	if err != nil {
		return err
	}
	log.Debug().Str("cmd", cmd.Name()).Str("preset", preset).Str("config", configFile).Msg("config resolved")
	return nil
}

// withFileLog runs fn with a logger writing to the data directory, for
// hosts that take over the terminal.
func withFileLog(fn func(zerolog.Logger) error) error {
	f, err := logging.OpenFile(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	l, err := logging.New(f, cfg.LogLevel, logging.FormatJSON)
	if err != nil {
		return err
	}
	return fn(l)
}
