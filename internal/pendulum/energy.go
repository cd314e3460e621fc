package pendulum

import "math"

// Kinetic returns the kinetic energy of the two point masses.
func Kinetic(bodies [2]Body) float64 {
	s := SnapshotOf(bodies)
	l1, l2 := s.Upper.Length, s.Lower.Length
	w1, w2 := s.Upper.Omega, s.Lower.Omega

	v1sq := l1 * l1 * w1 * w1
	v2sq := l1*l1*w1*w1 + l2*l2*w2*w2 +
		2*l1*l2*w1*w2*math.Cos(s.Upper.Angle-s.Lower.Angle)

	return 0.5*s.Upper.Mass*v1sq + 0.5*s.Lower.Mass*v2sq
}

// Potential returns the gravitational potential energy relative to the pivot.
// +Y points down, so a mass below the pivot has negative potential.
func Potential(bodies [2]Body) float64 {
	s := SnapshotOf(bodies)
	y1 := s.Upper.Length * math.Cos(s.Upper.Angle)
	y2 := y1 + s.Lower.Length*math.Cos(s.Lower.Angle)
	return -s.Upper.Mass*Gravity*y1 - s.Lower.Mass*Gravity*y2
}

// Energy returns the total mechanical energy.
func Energy(bodies [2]Body) float64 {
	return Kinetic(bodies) + Potential(bodies)
}

// RestEnergy is the energy of the chain hanging straight down at rest, the
// minimum Energy can take for these lengths and masses.
func RestEnergy(bodies [2]Body) float64 {
	m1, m2 := float64(bodies[0].Mass), float64(bodies[1].Mass)
	l1, l2 := float64(bodies[0].Length), float64(bodies[1].Length)
	return -m1*Gravity*l1 - m2*Gravity*(l1+l2)
}
