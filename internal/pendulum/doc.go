// Package pendulum implements the physics core of a planar double pendulum.
//
// A [System] owns exactly two [Body] values arranged as a chain: body 0
// hangs from a fixed pivot and body 1 hangs from the free end of body 0.
// Each call to [System.Step] computes both angular accelerations from the
// closed-form Lagrangian equations of motion, advances both bodies with
// semi-implicit (symplectic) Euler and records the free end of body 1 in a
// bounded [Trace].
//
// # Coordinates
//
// Angles are measured from the downward vertical. The physics frame has its
// origin at the pivot with +Y pointing down, so an angle of zero places a
// rod's free end at (0, length) and increasing the angle rotates it toward
// +X. Renderers translate this frame to screen space themselves.
//
// # Degenerate configurations
//
// Lengths and masses are expected to be strictly positive. The core does
// not guard against degenerate bodies: a zero upper length or a vanishing
// denominator yields NaN or ±Inf, which then propagates through the state
// and the trace. Use [Body.Validate] at the edges where configurations are
// read from users.
//
// # Example
//
//	rng := rand.New(rand.NewSource(1))
//	sys := pendulum.NewRandomSystem(rng)
//	for i := 0; i < 100; i++ {
//	    sys.Step(pendulum.DefaultDt)
//	}
//	tip := sys.Tip()
package pendulum
