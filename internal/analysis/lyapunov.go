package analysis

import (
	"math"

	"github.com/jotingen/pendulum/internal/pendulum"
)

// LyapunovExponent estimates the largest Lyapunov exponent of sys by running
// it beside a copy whose upper angle is shifted by perturbation. A positive
// value indicates chaos. sys itself is not advanced.
//
// The separation is measured in (θ1, ω1, θ2, ω2). After every step the copy
// is pulled back along the separation vector to the initial distance and the
// log growth of that step is accumulated.
func LyapunovExponent(sys *pendulum.System, dt float32, steps int, perturbation float64) float64 {
	if steps <= 0 || dt <= 0 || perturbation <= 0 {
		return 0
	}

	ref := sys.Clone()
	other := sys.Clone()
	upper := other.Body(pendulum.Upper)
	other.SetBody(pendulum.Upper, upper.WithAngle(upper.Angle+float32(perturbation)))

	// float32 state rounds the shift, so measure what was actually applied.
	d0 := separation(ref.Bodies(), other.Bodies())
	if d0 == 0 {
		return 0
	}

	prev := d0
	sumLog := 0.0
	count := 0
	for i := 0; i < steps; i++ {
		ref.Step(dt)
		other.Step(dt)
		if !ref.IsFinite() || !other.IsFinite() {
			break
		}

		sep := separation(ref.Bodies(), other.Bodies())
		if sep == 0 {
			break
		}
		sumLog += math.Log(sep / prev)
		count++

		renormalize(ref, other, d0/sep)
		if prev = separation(ref.Bodies(), other.Bodies()); prev == 0 {
			break
		}
	}

	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * float64(dt))
}

// Separation returns the phase space distance between two frames of the
// same pendulum, one step at a time. It is the curve LyapunovExponent
// integrates, without renormalization.
func Separation(a, b *pendulum.System, dt float32, steps int) []float64 {
	a, b = a.Clone(), b.Clone()
	out := make([]float64, 0, steps)
	for i := 0; i < steps; i++ {
		a.Step(dt)
		b.Step(dt)
		out = append(out, separation(a.Bodies(), b.Bodies()))
	}
	return out
}

func separation(a, b [2]pendulum.Body) float64 {
	sum := 0.0
	for i := range a {
		da := float64(a[i].Angle - b[i].Angle)
		dw := float64(a[i].AngularVelocity - b[i].AngularVelocity)
		sum += da*da + dw*dw
	}
	return math.Sqrt(sum)
}

func renormalize(ref, other *pendulum.System, scale float64) {
	rb := ref.Bodies()
	ob := other.Bodies()
	for i, r := range []pendulum.Role{pendulum.Upper, pendulum.Lower} {
		b := ob[i]
		b.Angle = rb[i].Angle + float32(float64(b.Angle-rb[i].Angle)*scale)
		b.AngularVelocity = rb[i].AngularVelocity + float32(float64(b.AngularVelocity-rb[i].AngularVelocity)*scale)
		other.SetBody(r, b)
	}
}
