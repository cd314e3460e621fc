package metrics

import (
	"math"

	"github.com/jotingen/pendulum/internal/sim"
)

// Energy reports the total energy of the last observed frame.
type Energy struct {
	name string
	last float64
	seen bool
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(f sim.Frame) {
	e.last = f.Energy
	e.seen = true
}

func (e *Energy) Value() float64 {
	if !e.seen {
		return 0
	}
	return e.last
}

func (e *Energy) Reset() {
	e.last = 0
	e.seen = false
}

// EnergyDrift is the largest deviation from the starting energy, relative
// to the swing energy above rest. The start is the baseline frame when the
// simulator provides one and the first observed frame otherwise.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	scale         float64
	maxDrift      float64
	started       bool
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Baseline(f sim.Frame) {
	e.initialEnergy = f.Energy
	e.scale = sim.EnergyScale(f.Bodies)
	e.started = true
}

func (e *EnergyDrift) Observe(f sim.Frame) {
	if !e.started {
		e.Baseline(f)
	}

	drift := math.Abs(f.Energy-e.initialEnergy) / e.scale
	if math.IsNaN(drift) {
		e.maxDrift = math.Inf(1)
		return
	}
	e.maxDrift = math.Max(e.maxDrift, drift)
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.scale = 0
	e.maxDrift = 0
	e.started = false
}
