package metrics

import (
	"math"

	"github.com/jotingen/pendulum/internal/sim"
)

// Stability is the fraction of frames whose energy stays within tolerance
// of the starting energy. Tolerance is a fraction of the swing energy above
// rest, the same scale EnergyDrift uses. Non-finite frames never count as
// stable.
type Stability struct {
	name          string
	tolerance     float64
	initialEnergy float64
	scale         float64
	started       bool
	stable        int
	samples       int
}

func NewStability(tolerance float64) *Stability {
	return &Stability{
		name:      "stability",
		tolerance: tolerance,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Baseline(f sim.Frame) {
	s.initialEnergy = f.Energy
	s.scale = sim.EnergyScale(f.Bodies)
	s.started = true
}

func (s *Stability) Observe(f sim.Frame) {
	if !s.started {
		s.Baseline(f)
	}
	s.samples++
	if !f.IsFinite() {
		return
	}
	if math.Abs(f.Energy-s.initialEnergy) <= s.tolerance*s.scale {
		s.stable++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return float64(s.stable) / float64(s.samples)
}

func (s *Stability) Reset() {
	s.initialEnergy = 0
	s.scale = 0
	s.started = false
	s.stable = 0
	s.samples = 0
}
