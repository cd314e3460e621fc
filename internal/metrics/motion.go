package metrics

import (
	"math"

	"github.com/jotingen/pendulum/internal/pendulum"
	"github.com/jotingen/pendulum/internal/sim"
)

// AngularSpeed is the mean of |ω1| + |ω2| over the run.
type AngularSpeed struct {
	name    string
	sum     float64
	samples int
}

func NewAngularSpeed() *AngularSpeed {
	return &AngularSpeed{name: "angular_speed"}
}

func (a *AngularSpeed) Name() string {
	return a.name
}

func (a *AngularSpeed) Observe(f sim.Frame) {
	for _, b := range f.Bodies {
		a.sum += math.Abs(float64(b.AngularVelocity))
	}
	a.samples++
}

func (a *AngularSpeed) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.sum / float64(a.samples)
}

func (a *AngularSpeed) Reset() {
	a.sum = 0
	a.samples = 0
}

// TipReach is the farthest distance of the tip from the pivot. It also
// tracks the bounding box of every tip position seen.
type TipReach struct {
	name     string
	min, max pendulum.Vec2
	reach    float64
	samples  int
}

func NewTipReach() *TipReach {
	return &TipReach{name: "tip_reach"}
}

func (r *TipReach) Name() string { return r.name }

func (r *TipReach) Observe(f sim.Frame) {
	if !f.Tip.IsFinite() {
		return
	}
	if r.samples == 0 {
		r.min, r.max = f.Tip, f.Tip
	}
	r.samples++
	r.min.X = min(r.min.X, f.Tip.X)
	r.min.Y = min(r.min.Y, f.Tip.Y)
	r.max.X = max(r.max.X, f.Tip.X)
	r.max.Y = max(r.max.Y, f.Tip.Y)
	r.reach = math.Max(r.reach, float64(f.Tip.Dist(pendulum.Pivot)))
}

func (r *TipReach) Value() float64 { return r.reach }

// Bounds returns the corners of the tip's bounding box.
func (r *TipReach) Bounds() (lo, hi pendulum.Vec2) { return r.min, r.max }

func (r *TipReach) Reset() {
	r.min, r.max = pendulum.Vec2{}, pendulum.Vec2{}
	r.reach = 0
	r.samples = 0
}
