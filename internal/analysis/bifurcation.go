package analysis

import (
	"github.com/jotingen/pendulum/internal/pendulum"
)

// SweepPoint is the set of lower-arm angles seen at Poincaré crossings for
// one value of the swept parameter.
type SweepPoint struct {
	Param  float64
	Values []float64
}

// Sweep builds a system for each of n evenly spaced parameter values in
// [lo, hi], discards the first transient steps, then records the wrapped
// lower angle at each upward zero crossing of the upper angle over the
// following record steps. Plotting the result against Param shows where the
// motion stops being periodic.
func Sweep(build func(param float64) *pendulum.System, lo, hi float64, n int, dt float32, transient, record int) []SweepPoint {
	if n <= 1 {
		n = 2
	}
	step := (hi - lo) / float64(n-1)
	out := make([]SweepPoint, 0, n)

	for i := 0; i < n; i++ {
		param := lo + float64(i)*step
		sys := build(param)
		for j := 0; j < transient; j++ {
			sys.Step(dt)
		}

		pt := SweepPoint{Param: param}
		prev := WrapAngle(float64(sys.Body(pendulum.Upper).Angle))
		for j := 0; j < record; j++ {
			sys.Step(dt)
			if !sys.IsFinite() {
				break
			}
			curr := WrapAngle(float64(sys.Body(pendulum.Upper).Angle))
			if crossedZero(prev, curr) {
				pt.Values = append(pt.Values, WrapAngle(float64(sys.Body(pendulum.Lower).Angle)))
			}
			prev = curr
		}
		out = append(out, pt)
	}
	return out
}
