package metrics

import (
	"math"
	"testing"

	"github.com/jotingen/pendulum/internal/sim"
)

func TestEnergyStats(t *testing.T) {
	m := NewEnergyStats()
	if m.Value() != 0 {
		t.Error("expected zero stddev with no samples")
	}

	for _, e := range []float64{2, 4, 4, 4, 5, 5, 7, 9, math.NaN(), math.Inf(-1)} {
		m.Observe(sim.Frame{Energy: e})
	}

	mean, std := m.MeanStdDev()
	if mean != 5 {
		t.Errorf("expected mean 5, got %v", mean)
	}
	// Sample (n-1) standard deviation of the eight finite values.
	want := math.Sqrt(32.0 / 7.0)
	if math.Abs(std-want) > 1e-12 {
		t.Errorf("expected stddev %v, got %v", want, std)
	}

	lo, hi := m.Range()
	if lo != 2 || hi != 9 {
		t.Errorf("expected range [2, 9], got [%v, %v]", lo, hi)
	}

	m.Reset()
	if lo, hi := m.Range(); lo != 0 || hi != 0 {
		t.Error("expected empty range after reset")
	}
}
