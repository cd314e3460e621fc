package analysis

import (
	"math"

	"github.com/jotingen/pendulum/internal/pendulum"
)

// state is (θ1, ω1, θ2, ω2) in float64.
type state [4]float64

// Reference integrates the same equations of motion as pendulum.System with
// classical RK4 in float64. It serves as a yardstick for the semi-implicit
// Euler step the hosts use.
type Reference struct {
	upper, lower pendulum.Link
	x            state
	time         float64
}

func NewReference(bodies [2]pendulum.Body) *Reference {
	s := pendulum.SnapshotOf(bodies)
	return &Reference{
		upper: s.Upper,
		lower: s.Lower,
		x:     state{s.Upper.Angle, s.Upper.Omega, s.Lower.Angle, s.Lower.Omega},
	}
}

func (r *Reference) derive(x state) state {
	s := pendulum.Snapshot{Upper: r.upper, Lower: r.lower}
	s.Upper.Angle, s.Upper.Omega = x[0], x[1]
	s.Lower.Angle, s.Lower.Omega = x[2], x[3]
	return state{x[1], pendulum.UpperAcceleration(s), x[3], pendulum.LowerAcceleration(s)}
}

func (r *Reference) Step(dt float64) {
	x := r.x
	k1 := r.derive(x)
	var tmp state
	for i := range tmp {
		tmp[i] = x[i] + dt*0.5*k1[i]
	}
	k2 := r.derive(tmp)
	for i := range tmp {
		tmp[i] = x[i] + dt*0.5*k2[i]
	}
	k3 := r.derive(tmp)
	for i := range tmp {
		tmp[i] = x[i] + dt*k3[i]
	}
	k4 := r.derive(tmp)

	dt6 := dt / 6.0
	for i := range x {
		r.x[i] = x[i] + dt6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	r.time += dt
}

// Angles returns the current upper and lower angles.
func (r *Reference) Angles() (float64, float64) { return r.x[0], r.x[2] }

func (r *Reference) Time() float64 { return r.time }

// IntegrationError steps a copy of sys and an RK4 reference side by side
// for steps steps of dt and returns the largest angle difference seen. The
// reference takes substeps RK4 steps per dt. sys itself is not advanced.
func IntegrationError(sys *pendulum.System, dt float32, steps, substeps int) float64 {
	if substeps < 1 {
		substeps = 1
	}
	euler := sys.Clone()
	ref := NewReference(sys.Bodies())
	h := float64(dt) / float64(substeps)

	worst := 0.0
	for i := 0; i < steps; i++ {
		euler.Step(dt)
		for j := 0; j < substeps; j++ {
			ref.Step(h)
		}
		a1, a2 := ref.Angles()
		b := euler.Bodies()
		d := math.Max(math.Abs(float64(b[0].Angle)-a1), math.Abs(float64(b[1].Angle)-a2))
		if math.IsNaN(d) {
			return math.Inf(1)
		}
		worst = math.Max(worst, d)
	}
	return worst
}
