package metrics

import (
	"math"
	"testing"

	"github.com/jotingen/pendulum/internal/pendulum"
	"github.com/jotingen/pendulum/internal/sim"
)

func TestAngularSpeed(t *testing.T) {
	m := NewAngularSpeed()
	m.Observe(sim.Frame{Bodies: [2]pendulum.Body{{AngularVelocity: 1}, {AngularVelocity: -2}}})
	m.Observe(sim.Frame{Bodies: [2]pendulum.Body{{AngularVelocity: 0}, {AngularVelocity: 1}}})

	if got := m.Value(); got != 2 {
		t.Errorf("expected mean speed 2, got %v", got)
	}
}

func TestTipReach(t *testing.T) {
	m := NewTipReach()
	for _, p := range []pendulum.Vec2{
		{X: 3, Y: 4},
		{X: -6, Y: 8},
		{X: 1, Y: -2},
		{X: float32(math.NaN()), Y: 0},
	} {
		m.Observe(sim.Frame{Tip: p})
	}

	if got := m.Value(); math.Abs(got-10) > 1e-6 {
		t.Errorf("expected reach 10, got %v", got)
	}
	lo, hi := m.Bounds()
	if lo != (pendulum.Vec2{X: -6, Y: -2}) || hi != (pendulum.Vec2{X: 3, Y: 8}) {
		t.Errorf("unexpected bounds %v %v", lo, hi)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero reach after reset")
	}
}

func TestRegistry(t *testing.T) {
	names := Names()
	if len(names) != 6 {
		t.Fatalf("expected 6 metrics, got %v", names)
	}
	for _, m := range All() {
		if m.Name() == "" {
			t.Error("metric with empty name")
		}
	}

	ms, err := New("energy_drift", "stability")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if ms[0].Name() != "energy_drift" || ms[1].Name() != "stability" {
		t.Errorf("unexpected metrics %s, %s", ms[0].Name(), ms[1].Name())
	}

	if _, err := New("nope"); err == nil {
		t.Error("expected error for unknown metric")
	}
}
