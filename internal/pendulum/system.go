package pendulum

import "math/rand"

// DefaultDt is the fixed step used by the interactive hosts.
const DefaultDt float32 = 1.0 / 15.0

// Pivot is the fixed anchor of the upper body in the physics frame.
var Pivot = Vec2{}

// System is a double pendulum: two bodies in a fixed parent→child chain and
// the trace of the lower body's free end.
//
// A System is not safe for concurrent use.
type System struct {
	bodies [2]Body
	trace  *Trace
	steps  int
	time   float64
}

// NewSystem returns a system with upper hanging from the pivot and lower
// hanging from upper's free end.
func NewSystem(upper, lower Body) *System {
	return &System{
		bodies: [2]Body{upper, lower},
		trace:  NewTrace(TraceCapacity),
	}
}

// NewRandomSystem returns a system of two randomized bodies drawn from rng.
func NewRandomSystem(rng *rand.Rand) *System {
	return NewSystem(NewBody(rng), NewBody(rng))
}

// Step advances the system by dt and appends the new tip position to the trace.
func (s *System) Step(dt float32) {
	snap := SnapshotOf(s.bodies)
	s.bodies[Upper].AngularAcceleration = float32(UpperAcceleration(snap))
	s.bodies[Lower].AngularAcceleration = float32(LowerAcceleration(snap))

	s.bodies[Upper].Integrate(dt)
	s.bodies[Lower].Integrate(dt)

	s.trace.Push(s.Tip())
	s.steps++
	s.time += float64(dt)
}

// Bodies returns a copy of both bodies, upper first.
func (s *System) Bodies() [2]Body { return s.bodies }

// Body returns the body playing role r.
func (s *System) Body(r Role) Body { return s.bodies[r.Index()] }

// SetBody replaces the body playing role r. The trace and step count are
// kept, so a host can retune lengths or masses mid-run.
func (s *System) SetBody(r Role, b Body) { s.bodies[r.Index()] = b }

// Joints returns the free ends of the upper and lower bodies.
func (s *System) Joints() (Vec2, Vec2) {
	elbow := s.bodies[Upper].EndPoint(Pivot)
	return elbow, s.bodies[Lower].EndPoint(elbow)
}

// Tip returns the free end of the lower body.
func (s *System) Tip() Vec2 {
	_, tip := s.Joints()
	return tip
}

// Trace returns the recorded tip positions, oldest first.
func (s *System) Trace() []Vec2 { return s.trace.Points() }

// AppendTrace appends the recorded tip positions to dst. Render loops use it
// to reuse a buffer across frames.
func (s *System) AppendTrace(dst []Vec2) []Vec2 { return s.trace.AppendTo(dst) }

// TraceLen returns the number of recorded tip positions.
func (s *System) TraceLen() int { return s.trace.Len() }

// Steps returns how many times Step has been called.
func (s *System) Steps() int { return s.steps }

// Time returns the sum of all dt passed to Step.
func (s *System) Time() float64 { return s.time }

// Energy returns the total mechanical energy of the current state.
func (s *System) Energy() float64 { return Energy(s.bodies) }

// IsFinite reports whether both bodies still hold finite state.
func (s *System) IsFinite() bool {
	return s.bodies[Upper].IsFinite() && s.bodies[Lower].IsFinite()
}

// Clone returns an independent copy, including the trace.
func (s *System) Clone() *System {
	c := &System{
		bodies: s.bodies,
		trace:  &Trace{buf: make([]Vec2, len(s.trace.buf)), head: s.trace.head, size: s.trace.size},
		steps:  s.steps,
		time:   s.time,
	}
	copy(c.trace.buf, s.trace.buf)
	return c
}
