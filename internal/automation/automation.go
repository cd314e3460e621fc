package automation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"

	"github.com/jotingen/pendulum/internal/config"
	"github.com/jotingen/pendulum/internal/metrics"
	"github.com/jotingen/pendulum/internal/pendulum"
	"github.com/jotingen/pendulum/internal/sim"
	"github.com/jotingen/pendulum/internal/storage"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one run in a scenario. Zero fields fall back to the preset, or
// to the defaults when no preset is named.
type Step struct {
	Name   string            `yaml:"name"`
	Preset string            `yaml:"preset"`
	Seed   int64             `yaml:"seed"`
	Steps  int               `yaml:"steps"`
	Dt     float32           `yaml:"dt"`
	Upper  config.BodyConfig `yaml:"upper"`
	Lower  config.BodyConfig `yaml:"lower"`
	Save   bool              `yaml:"save"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	return &scenario, nil
}

// Config resolves the step against its preset.
func (s Step) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", config.ErrInvalidConfig, s.Preset)
		}
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if s.Steps != 0 {
		cfg.Steps = s.Steps
	}
	if s.Dt != 0 {
		cfg.Dt = s.Dt
	}
	overlay(&cfg.Upper, s.Upper)
	overlay(&cfg.Lower, s.Lower)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overlay(dst *config.BodyConfig, src config.BodyConfig) {
	if src.Length != 0 {
		dst.Length = src.Length
	}
	if src.Mass != 0 {
		dst.Mass = src.Mass
	}
	if src.Angle != nil {
		dst.Angle = src.Angle
	}
	if src.AngularVelocity != nil {
		dst.AngularVelocity = src.AngularVelocity
	}
	if src.Color != "" {
		dst.Color = src.Color
	}
}

// StepResult is the outcome of one scenario step. RunID is empty when the
// step was not saved.
type StepResult struct {
	Name   string
	Seed   int64
	RunID  string
	Result *sim.Result
}

// RunScenario executes all steps in order. Steps marked save are written
// to store, which may be nil when no step saves.
func RunScenario(ctx context.Context, scenario *Scenario, store *storage.Store, log zerolog.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		log.Info().Str("scenario", scenario.Name).Str("step", name).Int("index", i+1).Int("of", len(scenario.Steps)).Msg("running step")

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		seed := cfg.EffectiveSeed()
		sys, err := cfg.NewSystem(seed)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		initial := sys.Bodies()

		s := sim.New(sys, nil)
		s.SetLogger(log)
		for _, m := range metrics.All() {
			s.AddMetric(m)
		}
		result, err := s.Run(ctx, cfg.SimConfig())
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: name, Seed: seed, Result: result}
		if step.Save {
			if store == nil {
				return results, fmt.Errorf("step %d: save requested without a store", i+1)
			}
			sr.RunID, err = store.Save(storage.RunMetadata{
				Preset: step.Preset,
				Seed:   seed,
				Dt:     cfg.Dt,
				Bodies: [2]storage.BodyMeta{storage.BodyMetaOf(initial[0]), storage.BodyMetaOf(initial[1])},
			}, result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// MonteCarloConfig perturbs both starting angles of Base uniformly within
// ±Perturbation radians, once per trial.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
}

// Trial is one perturbed run.
type Trial struct {
	ID          int
	Angles      [2]float32
	EnergyDrift float64
	Stability   float64
	Diverged    bool
}

// RunMonteCarlo runs the trials concurrently. The base bodies are drawn
// once from Base's seed so that only the angles differ between trials.
func RunMonteCarlo(ctx context.Context, mc MonteCarloConfig) ([]Trial, error) {
	if mc.Base == nil || mc.NumTrials <= 0 {
		return nil, fmt.Errorf("%w: monte carlo needs a base config and at least one trial", config.ErrInvalidConfig)
	}
	base, err := mc.Base.NewSystem(mc.Base.EffectiveSeed())
	if err != nil {
		return nil, err
	}
	bodies := base.Bodies()

	seed := mc.Seed
	if seed == 0 {
		seed = mc.Base.EffectiveSeed()
	}

	// each trial derives its perturbation from its own seed
	perturbed := func(trialSeed int64) [2]pendulum.Body {
		rng := rand.New(rand.NewSource(trialSeed))
		b := bodies
		for i := range b {
			b[i].Angle += float32((rng.Float64() - 0.5) * 2 * mc.Perturbation)
		}
		return b
	}
	factory := func(trialSeed int64) *pendulum.System {
		b := perturbed(trialSeed)
		return pendulum.NewSystem(b[0], b[1])
	}

	simCfg := mc.Base.SimConfig()
	simCfg.RecordEvery = 0
	simCfg.StopOnDivergence = false

	results, err := sim.NewEnsemble(factory, mc.NumTrials, seed).
		WithMetrics(func() []sim.Metric { return []sim.Metric{metrics.NewStability(0.01)} }).
		Run(ctx, simCfg)
	if err != nil {
		return nil, err
	}

	trials := make([]Trial, len(results))
	for i, r := range results {
		b := perturbed(seed + int64(i))
		trials[i] = Trial{
			ID:          i,
			Angles:      [2]float32{b[0].Angle, b[1].Angle},
			EnergyDrift: r.EnergyDrift,
			Stability:   r.Metrics["stability"],
			Diverged:    r.Diverged,
		}
	}
	return trials, nil
}

// MonteCarloStats counts trials that stayed finite and those that diverged.
func MonteCarloStats(trials []Trial) (stable, diverged int) {
	for _, t := range trials {
		if t.Diverged {
			diverged++
		} else {
			stable++
		}
	}
	return
}
