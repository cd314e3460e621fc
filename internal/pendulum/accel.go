package pendulum

import "math"

// Gravity is the gravitational acceleration used by the equations of motion.
const Gravity = 9.81

// Role names a body's position in the chain.
type Role int

const (
	Upper Role = iota
	Lower
)

func (r Role) String() string {
	switch r {
	case Upper:
		return "upper"
	case Lower:
		return "lower"
	default:
		return "unknown"
	}
}

// Index returns the body index for the role.
func (r Role) Index() int { return int(r) }

// Link is the pre-step kinematic state of one body.
type Link struct {
	Length, Mass, Angle, Omega float64
}

// Snapshot holds both bodies' state as read at the start of a step. Both
// accelerations are computed from the same snapshot so the result does not
// depend on which body is updated first.
type Snapshot struct {
	Upper, Lower Link
}

func linkOf(b Body) Link {
	return Link{
		Length: float64(b.Length),
		Mass:   float64(b.Mass),
		Angle:  float64(b.Angle),
		Omega:  float64(b.AngularVelocity),
	}
}

// SnapshotOf captures the current state of a two-body chain.
func SnapshotOf(bodies [2]Body) Snapshot {
	return Snapshot{Upper: linkOf(bodies[0]), Lower: linkOf(bodies[1])}
}

// denominator is shared by both equations of motion.
func (s Snapshot) denominator() float64 {
	m1, m2 := s.Upper.Mass, s.Lower.Mass
	t1, t2 := s.Upper.Angle, s.Lower.Angle
	return s.Upper.Length * (2*m1 + m2 - m2*math.Cos(2*t1-2*t2))
}

// UpperAcceleration returns the angular acceleration of the body hanging from the pivot.
func UpperAcceleration(s Snapshot) float64 {
	m1, m2 := s.Upper.Mass, s.Lower.Mass
	l1, l2 := s.Upper.Length, s.Lower.Length
	t1, t2 := s.Upper.Angle, s.Lower.Angle
	w1, w2 := s.Upper.Omega, s.Lower.Omega
	g := Gravity

	num := -g*(2*m1+m2)*math.Sin(t1) -
		m2*g*math.Sin(t1-2*t2) -
		2*math.Sin(t1-t2)*m2*(w2*w2*l2+w1*w1*l1*math.Cos(t1-t2))
	return num / s.denominator()
}

// LowerAcceleration returns the angular acceleration of the body hanging from the upper body.
func LowerAcceleration(s Snapshot) float64 {
	m1, m2 := s.Upper.Mass, s.Lower.Mass
	l1, l2 := s.Upper.Length, s.Lower.Length
	t1, t2 := s.Upper.Angle, s.Lower.Angle
	w1, w2 := s.Upper.Omega, s.Lower.Omega
	g := Gravity

	num := 2 * math.Sin(t1-t2) *
		(w1*w1*l1*(m1+m2) + g*(m1+m2)*math.Cos(t1) + w2*w2*l2*m2*math.Cos(t1-t2))
	return num / s.denominator()
}

// Acceleration dispatches to the equation for role.
func (s Snapshot) Acceleration(r Role) float64 {
	if r == Lower {
		return LowerAcceleration(s)
	}
	return UpperAcceleration(s)
}
