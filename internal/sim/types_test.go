package sim

import (
	"math"
	"testing"

	"github.com/jotingen/pendulum/internal/pendulum"
)

func TestFrame_IsFinite(t *testing.T) {
	ok := pendulum.Body{Length: 100, Mass: 10, Angle: 0.5}
	nan := ok
	nan.AngularVelocity = float32(math.NaN())

	tests := []struct {
		name  string
		frame Frame
		want  bool
	}{
		{"normal", Frame{Bodies: [2]pendulum.Body{ok, ok}}, true},
		{"NaN body", Frame{Bodies: [2]pendulum.Body{ok, nan}}, false},
		{"Inf tip", Frame{Bodies: [2]pendulum.Body{ok, ok}, Tip: pendulum.Vec2{X: float32(math.Inf(1))}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.frame.IsFinite(); got != tt.want {
				t.Errorf("IsFinite() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrameOf(t *testing.T) {
	sys := swingingSystem()
	sys.Step(pendulum.DefaultDt)

	f := FrameOf(sys, pendulum.DefaultDt)
	if f.Step != 1 || f.Dt != pendulum.DefaultDt {
		t.Errorf("unexpected frame header %+v", f)
	}
	if f.Tip != sys.Tip() || f.Bodies != sys.Bodies() {
		t.Error("frame does not mirror system state")
	}
	if f.Energy != sys.Energy() {
		t.Errorf("energy %v != %v", f.Energy, sys.Energy())
	}
}

func TestEnergyScale(t *testing.T) {
	rest := [2]pendulum.Body{{Length: 100, Mass: 10}, {Length: 100, Mass: 10}}
	if got := EnergyScale(rest); got != 1 {
		t.Errorf("expected fallback scale 1 at rest, got %v", got)
	}

	raised := rest
	raised[0].Angle = math.Pi / 2
	if got := EnergyScale(raised); got < 1000 {
		t.Errorf("expected large swing energy, got %v", got)
	}
}
