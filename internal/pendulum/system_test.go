package pendulum

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func fixedBody(length, mass, angle float32) Body {
	return Body{Color: White}.WithLength(length).WithMass(mass).WithAngle(angle)
}

func isNonFinite(f float32) bool {
	x := float64(f)
	return math.IsNaN(x) || math.IsInf(x, 0)
}

var _ = Describe("System", func() {
	Describe("accelerations", func() {
		It("reduces to a single pendulum when both bodies are aligned at rest", func() {
			sys := NewSystem(fixedBody(100, 20, 0.3), fixedBody(100, 20, 0.3))
			snap := SnapshotOf(sys.Bodies())

			single := -Gravity * math.Sin(float64(float32(0.3))) / 100
			Expect(UpperAcceleration(snap)).To(BeNumerically("~", single, 1e-6))
			Expect(UpperAcceleration(snap)).To(BeNumerically("~", -0.02896, 1e-4))
			// sin(θ1-θ2) factors the whole lower equation.
			Expect(LowerAcceleration(snap)).To(BeZero())
		})

		It("dispatches on role", func() {
			snap := SnapshotOf([2]Body{fixedBody(120, 15, 1.1), fixedBody(80, 30, -0.4)})
			Expect(snap.Acceleration(Upper)).To(Equal(UpperAcceleration(snap)))
			Expect(snap.Acceleration(Lower)).To(Equal(LowerAcceleration(snap)))
		})

		It("reads the pre-step state of both bodies", func() {
			upper := fixedBody(120, 15, 1.1).WithAngularVelocity(0.2)
			lower := fixedBody(80, 30, -0.4).WithAngularVelocity(-0.1)
			snap := SnapshotOf([2]Body{upper, lower})

			sys := NewSystem(upper, lower)
			sys.Step(DefaultDt)
			bodies := sys.Bodies()

			Expect(bodies[0].AngularAcceleration).To(Equal(float32(UpperAcceleration(snap))))
			Expect(bodies[1].AngularAcceleration).To(Equal(float32(LowerAcceleration(snap))))
		})

		It("is zero at the hanging equilibrium", func() {
			snap := SnapshotOf([2]Body{fixedBody(100, 20, 0), fixedBody(60, 10, 0)})
			Expect(UpperAcceleration(snap)).To(BeZero())
			Expect(LowerAcceleration(snap)).To(BeZero())
		})
	})

	Describe("Step", func() {
		It("leaves the state unchanged for a zero step but still records the tip", func() {
			upper := fixedBody(100, 20, 0.7).WithAngularVelocity(0.05)
			lower := fixedBody(150, 35, -1.2).WithAngularVelocity(0.3)
			sys := NewSystem(upper, lower)
			tip := sys.Tip()

			sys.Step(0)

			bodies := sys.Bodies()
			Expect(bodies[0].Angle).To(Equal(upper.Angle))
			Expect(bodies[0].AngularVelocity).To(Equal(upper.AngularVelocity))
			Expect(bodies[1].Angle).To(Equal(lower.Angle))
			Expect(bodies[1].AngularVelocity).To(Equal(lower.AngularVelocity))
			Expect(sys.Trace()).To(Equal([]Vec2{tip}))
		})

		It("integrates the upper body before the lower one from the same snapshot", func() {
			upper := fixedBody(100, 20, 0.5)
			lower := fixedBody(100, 20, 0.2)
			snap := SnapshotOf([2]Body{upper, lower})
			dt := DefaultDt

			sys := NewSystem(upper, lower)
			sys.Step(dt)

			want := upper
			want.AngularAcceleration = float32(UpperAcceleration(snap))
			want.Integrate(dt)
			Expect(sys.Body(Upper)).To(Equal(want))

			want = lower
			want.AngularAcceleration = float32(LowerAcceleration(snap))
			want.Integrate(dt)
			Expect(sys.Body(Lower)).To(Equal(want))
		})

		It("appends the chained end point to the trace", func() {
			sys := NewSystem(fixedBody(100, 20, 0.5), fixedBody(70, 10, 2.0))
			sys.Step(DefaultDt)

			b := sys.Bodies()
			want := b[1].EndPoint(b[0].EndPoint(Pivot))
			last, ok := sys.trace.Last()
			Expect(ok).To(BeTrue())
			Expect(last).To(Equal(want))
			Expect(sys.Tip()).To(Equal(want))
		})

		It("tracks steps and elapsed time", func() {
			sys := NewSystem(fixedBody(100, 20, 0.5), fixedBody(70, 10, 2.0))
			for i := 0; i < 15; i++ {
				sys.Step(DefaultDt)
			}
			Expect(sys.Steps()).To(Equal(15))
			Expect(sys.Time()).To(BeNumerically("~", 1.0, 1e-6))
		})
	})

	Describe("trace", func() {
		It("holds min(N, 200) points and evicts the oldest first", func() {
			sys := NewSystem(fixedBody(100, 20, 2.5), fixedBody(90, 25, 1.0))
			tips := make([]Vec2, 0, 260)
			for n := 1; n <= 260; n++ {
				sys.Step(DefaultDt)
				tips = append(tips, sys.Tip())

				Expect(sys.TraceLen()).To(Equal(min(n, TraceCapacity)))
				if n > TraceCapacity {
					Expect(sys.Trace()[0]).To(Equal(tips[n-TraceCapacity]))
				}
			}
			Expect(sys.Trace()).To(Equal(tips[len(tips)-TraceCapacity:]))
		})
	})

	Describe("energy", func() {
		It("stays within a bounded band under symplectic Euler", func() {
			upper := fixedBody(100, 20, 0.5)
			lower := fixedBody(100, 20, 0.3)
			sys := NewSystem(upper, lower)

			e0 := sys.Energy()
			swing := e0 - RestEnergy(sys.Bodies())
			Expect(swing).To(BeNumerically(">", 0))

			maxDrift := 0.0
			for i := 0; i < 3000; i++ {
				sys.Step(DefaultDt)
				maxDrift = math.Max(maxDrift, math.Abs(sys.Energy()-e0))
			}
			Expect(maxDrift / swing).To(BeNumerically("<", 0.1))
		})

		It("drifts far less than explicit Euler on the same configuration", func() {
			upper := fixedBody(100, 20, 0.5)
			lower := fixedBody(100, 20, 0.3)

			sym := NewSystem(upper, lower)
			naive := [2]Body{upper, lower}
			e0 := sym.Energy()

			for i := 0; i < 3000; i++ {
				sym.Step(DefaultDt)

				snap := SnapshotOf(naive)
				for r, alpha := range [2]float64{UpperAcceleration(snap), LowerAcceleration(snap)} {
					b := &naive[r]
					b.Angle += b.AngularVelocity * DefaultDt
					b.AngularVelocity += float32(alpha) * DefaultDt
				}
			}

			symDrift := math.Abs(sym.Energy() - e0)
			naiveDrift := math.Abs(Energy(naive) - e0)
			Expect(naiveDrift).To(BeNumerically(">", 10*symDrift))
		})
	})

	Describe("degenerate configurations", func() {
		It("produces NaN rather than a finite value when the upper mass is zero", func() {
			sys := NewSystem(fixedBody(100, 0, 0.3), fixedBody(100, 20, 0.3))
			snap := SnapshotOf(sys.Bodies())

			Expect(math.IsNaN(UpperAcceleration(snap)) || math.IsInf(UpperAcceleration(snap), 0)).To(BeTrue())
			Expect(math.IsNaN(LowerAcceleration(snap)) || math.IsInf(LowerAcceleration(snap), 0)).To(BeTrue())

			sys.Step(DefaultDt)
			Expect(sys.IsFinite()).To(BeFalse())
			Expect(sys.Tip().IsFinite()).To(BeFalse())
		})

		It("produces infinity when the upper length is zero", func() {
			snap := SnapshotOf([2]Body{fixedBody(0, 20, 0.5), fixedBody(100, 20, 0.2)})
			Expect(math.IsInf(UpperAcceleration(snap), 0)).To(BeTrue())
			Expect(math.IsInf(LowerAcceleration(snap), 0)).To(BeTrue())
		})

		It("propagates non-finite values into the body state", func() {
			sys := NewSystem(fixedBody(0, 20, 0.5), fixedBody(100, 20, 0.2))
			sys.Step(DefaultDt)
			b := sys.Bodies()
			Expect(isNonFinite(b[0].AngularVelocity)).To(BeTrue())
			Expect(isNonFinite(b[1].Angle)).To(BeTrue())
		})
	})

	Describe("Clone", func() {
		It("does not share the trace", func() {
			sys := NewSystem(fixedBody(100, 20, 1.0), fixedBody(100, 20, 0.5))
			sys.Step(DefaultDt)
			c := sys.Clone()
			c.Step(DefaultDt)

			Expect(sys.TraceLen()).To(Equal(1))
			Expect(c.TraceLen()).To(Equal(2))
			Expect(c.Trace()[0]).To(Equal(sys.Trace()[0]))
		})
	})

	Describe("SetBody", func() {
		It("replaces one body and keeps the trace", func() {
			sys := NewSystem(fixedBody(100, 20, 1.0), fixedBody(100, 20, 0.5))
			sys.Step(DefaultDt)

			lower := sys.Body(Lower).WithLength(150)
			sys.SetBody(Lower, lower)

			Expect(sys.Body(Lower).Length).To(Equal(float32(150)))
			Expect(sys.Body(Upper).Length).To(Equal(float32(100)))
			Expect(sys.TraceLen()).To(Equal(1))
			Expect(sys.Steps()).To(Equal(1))
		})
	})
})
