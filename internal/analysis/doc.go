// Package analysis provides chaos and dynamics analysis tools for the double
// pendulum.
//
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [Separation]: raw phase space distance between two runs
//   - [Sweep]: parameter sweep sampled at Poincaré crossings
//   - [NewPhasePortrait]: (θ, ω) projection of recorded frames
//   - [PoincareSection]: lower arm state each time the upper arm passes zero
//   - [PowerSpectrum], [DominantFrequency]: spectrum of an angle series
//   - [IntegrationError]: drift of the semi-implicit Euler step from an RK4 reference
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda := analysis.LyapunovExponent(sys, pendulum.DefaultDt, 3000, 1e-6)
//	if lambda > 0 {
//	    // System is chaotic
//	}
package analysis
