package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/jotingen/pendulum/internal/pendulum"
	"github.com/rs/zerolog"
)

type Simulator struct {
	sys       *pendulum.System
	clock     Clock
	metrics   []Metric
	observers []Observer
	log       zerolog.Logger
}

// New returns a simulator driving sys. A nil clock is replaced by one
// derived from the run config.
func New(sys *pendulum.System, clock Clock) *Simulator {
	return &Simulator{
		sys:       sys,
		clock:     clock,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       zerolog.Nop(),
	}
}

func (s *Simulator) AddMetric(m Metric)         { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)     { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l zerolog.Logger) { s.log = l.With().Str("component", "sim").Logger() }
func (s *Simulator) System() *pendulum.System   { return s.sys }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	clock := s.clock
	if clock == nil {
		if cfg.Variable {
			clock = NewMeasuredClock(cfg.TimeScale, 4*cfg.Dt)
		} else {
			clock = FixedClock(cfg.Dt)
		}
	}

	every := cfg.RecordEvery
	result := &Result{
		Metrics: make(map[string]float64),
	}
	if every > 0 {
		result.Frames = make([]Frame, 0, cfg.Steps/every+1)
	}

	start := FrameOf(s.sys, 0)
	for _, m := range s.metrics {
		m.Reset()
		if b, ok := m.(Baseliner); ok {
			b.Baseline(start)
		}
	}

	initialEnergy := start.Energy
	scale := EnergyScale(start.Bodies)

	s.log.Debug().
		Int("steps", cfg.Steps).
		Float32("dt", cfg.Dt).
		Bool("variable", cfg.Variable).
		Float64("energy", initialEnergy).
		Msg("run started")

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			result.Trace = s.sys.Trace()
			return result, ctx.Err()
		default:
		}

		dt := clock.Next()
		s.sys.Step(dt)
		f := FrameOf(s.sys, dt)
		result.StepsTaken++

		for _, m := range s.metrics {
			m.Observe(f)
		}
		for _, obs := range s.observers {
			obs.OnStep(f)
		}
		if every > 0 && (i%every == 0 || i == cfg.Steps-1) {
			result.Frames = append(result.Frames, f)
		}

		if !result.Diverged && !f.IsFinite() {
			result.Diverged = true
			role := pendulum.Lower
			if !f.Bodies[pendulum.Upper].IsFinite() {
				role = pendulum.Upper
			}
			err := &DivergenceError{Step: f.Step, Time: f.Time, Body: role}
			s.log.Warn().Err(err).Msg("non-finite state")
			if cfg.StopOnDivergence {
				result.Trace = s.sys.Trace()
				s.collect(result)
				return result, err
			}
		}
	}

	result.EnergyDrift = math.Abs(s.sys.Energy()-initialEnergy) / scale
	result.Trace = s.sys.Trace()
	s.collect(result)

	s.log.Debug().
		Int("steps", result.StepsTaken).
		Float64("energy_drift", result.EnergyDrift).
		Msg("run finished")

	return result, nil
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, cfg.Steps)
	}
	if s.clock == nil && !(cfg.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Variable && !(cfg.TimeScale > 0) {
		return fmt.Errorf("%w: time scale must be positive for variable stepping", ErrInvalidConfig)
	}
	if cfg.RecordEvery < 0 {
		return fmt.Errorf("%w: record interval must not be negative", ErrInvalidConfig)
	}
	return nil
}

// EnergyScale is the energy above the hanging rest state, used to express
// drift relative to how much the system actually swings. It falls back to 1
// for a system already at rest.
func EnergyScale(bodies [2]pendulum.Body) float64 {
	swing := pendulum.Energy(bodies) - pendulum.RestEnergy(bodies)
	if swing > 0 && !math.IsInf(swing, 0) {
		return swing
	}
	return 1
}
