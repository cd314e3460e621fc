package main

import (
	"github.com/jotingen/pendulum/internal/sim"
	"github.com/jotingen/pendulum/internal/viz"
	"github.com/jotingen/pendulum/internal/window"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	gifPath      string
	windowWidth  int
	windowHeight int
)

func newLiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation in the terminal",
		Long: "Runs the pendulum in a braille terminal view. Without --preset or --config\n" +
			"a picker lets you choose and edit a preset first.",
		Args: cobra.NoArgs,
		RunE: runLive,
	}
	cmd.Flags().StringVar(&gifPath, "gif", "", "record frames and write them to this GIF on exit")
	return cmd
}

func newWindowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "window",
		Short: "run the simulation in a desktop window",
		Args:  cobra.NoArgs,
		RunE:  runWindow,
	}
	cmd.Flags().IntVar(&windowWidth, "width", window.DefaultWidth, "window width")
	cmd.Flags().IntVar(&windowHeight, "height", window.DefaultHeight, "window height")
	return cmd
}

func runInteractive(l zerolog.Logger) error {
	return viz.RunInteractive(cfg.Theme, l)
}

func runLive(cmd *cobra.Command, args []string) error {
	if preset == "" && configFile == "" && !cmd.Flags().Changed("seed") {
		return withFileLog(runInteractive)
	}

	seed := cfg.EffectiveSeed()
	sys, err := cfg.NewSystem(seed)
	if err != nil {
		return err
	}
	title := preset
	if title == "" {
		title = "pendulum"
	}

	return withFileLog(func(l zerolog.Logger) error {
		l.Info().Str("preset", preset).Int64("seed", seed).Msg("starting live view")
		return viz.RunLive(viz.NewModel(sys, viz.Options{
			Title:     title,
			Dt:        cfg.Dt,
			Variable:  cfg.Variable,
			TimeScale: cfg.TimeScale,
			Theme:     cfg.Theme,
			GIFPath:   gifPath,
			Logger:    l,
		}))
	})
}

func runWindow(cmd *cobra.Command, args []string) error {
	seed := cfg.EffectiveSeed()
	sys, err := cfg.NewSystem(seed)
	if err != nil {
		return err
	}

	var clock sim.Clock = sim.FixedClock(cfg.Dt)
	if cfg.Variable {
		clock = sim.NewMeasuredClock(cfg.TimeScale, 4*cfg.Dt)
	}

	title := "pendulum"
	if preset != "" {
		title += " - " + preset
	}
	log.Info().Int64("seed", seed).Msg("starting window")
	return window.Run(sys, window.Options{
		Title:  title,
		Width:  windowWidth,
		Height: windowHeight,
		Clock:  clock,
		Logger: log,
	})
}
