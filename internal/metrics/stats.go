package metrics

import (
	"math"

	"github.com/jotingen/pendulum/internal/sim"
	"gonum.org/v1/gonum/stat"
)

// EnergyStats keeps every observed energy and reports its standard
// deviation. A conservative integrator keeps this small relative to the
// swing energy.
type EnergyStats struct {
	name     string
	energies []float64
}

func NewEnergyStats() *EnergyStats {
	return &EnergyStats{name: "energy_stddev"}
}

func (e *EnergyStats) Name() string { return e.name }

func (e *EnergyStats) Observe(f sim.Frame) {
	if math.IsNaN(f.Energy) || math.IsInf(f.Energy, 0) {
		return
	}
	e.energies = append(e.energies, f.Energy)
}

func (e *EnergyStats) Value() float64 {
	_, std := e.MeanStdDev()
	return std
}

// MeanStdDev returns the sample mean and standard deviation. Both are zero
// with fewer than two samples.
func (e *EnergyStats) MeanStdDev() (mean, std float64) {
	if len(e.energies) < 2 {
		return 0, 0
	}
	return stat.MeanStdDev(e.energies, nil)
}

// Range returns the smallest and largest observed energies.
func (e *EnergyStats) Range() (lo, hi float64) {
	if len(e.energies) == 0 {
		return 0, 0
	}
	lo, hi = e.energies[0], e.energies[0]
	for _, v := range e.energies[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func (e *EnergyStats) Reset() {
	e.energies = e.energies[:0]
}
