package sim

import "github.com/jotingen/pendulum/internal/pendulum"

// Frame is the observable state after one step.
type Frame struct {
	Step   int
	Time   float64
	Dt     float32
	Bodies [2]pendulum.Body
	Tip    pendulum.Vec2
	Energy float64
}

// FrameOf captures sys after a step of dt.
func FrameOf(sys *pendulum.System, dt float32) Frame {
	return Frame{
		Step:   sys.Steps(),
		Time:   sys.Time(),
		Dt:     dt,
		Bodies: sys.Bodies(),
		Tip:    sys.Tip(),
		Energy: sys.Energy(),
	}
}

// IsFinite reports whether the frame holds no NaN or Inf values.
func (f Frame) IsFinite() bool {
	return f.Bodies[0].IsFinite() && f.Bodies[1].IsFinite() && f.Tip.IsFinite()
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

// Baseliner is implemented by metrics that compare against the state before
// the first step. Run calls Baseline once, after Reset.
type Baseliner interface {
	Baseline(f Frame)
}

type Observer interface {
	OnStep(f Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Frame)

func (fn ObserverFunc) OnStep(f Frame) { fn(f) }

type Config struct {
	Dt               float32
	Steps            int
	Variable         bool
	TimeScale        float32
	StopOnDivergence bool
	RecordEvery      int
}

func DefaultConfig() Config {
	return Config{
		Dt:          pendulum.DefaultDt,
		Steps:       1500,
		TimeScale:   1,
		RecordEvery: 1,
	}
}

type Result struct {
	Frames      []Frame
	Trace       []pendulum.Vec2
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Diverged    bool
}
