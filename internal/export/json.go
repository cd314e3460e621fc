package export

import (
	"encoding/json"
	"io"
	"math"

	"github.com/jotingen/pendulum/internal/pendulum"
	"github.com/jotingen/pendulum/internal/sim"
	"github.com/jotingen/pendulum/internal/storage"
)

type FrameData struct {
	Step   int        `json:"step"`
	Time   float64    `json:"time"`
	Theta  [2]float32 `json:"theta"`
	Omega  [2]float32 `json:"omega"`
	Tip    [2]float32 `json:"tip"`
	Energy *float64   `json:"energy"`
}

type Data struct {
	Run    storage.RunMetadata `json:"run"`
	Frames []FrameData         `json:"frames"`
	Trace  [][2]float32        `json:"trace"`
}

func NewData(meta storage.RunMetadata, frames []sim.Frame, trace []pendulum.Vec2) Data {
	d := Data{
		Run:    meta,
		Frames: make([]FrameData, len(frames)),
		Trace:  make([][2]float32, len(trace)),
	}
	for i, f := range frames {
		fd := FrameData{
			Step:  f.Step,
			Time:  f.Time,
			Theta: [2]float32{f.Bodies[0].Angle, f.Bodies[1].Angle},
			Omega: [2]float32{f.Bodies[0].AngularVelocity, f.Bodies[1].AngularVelocity},
			Tip:   [2]float32{f.Tip.X, f.Tip.Y},
		}
		// encoding/json rejects NaN and Inf, so a diverged frame exports
		// with a null energy.
		if !math.IsNaN(f.Energy) && !math.IsInf(f.Energy, 0) {
			e := f.Energy
			fd.Energy = &e
		}
		d.Frames[i] = fd
	}
	for i, p := range trace {
		d.Trace[i] = [2]float32{p.X, p.Y}
	}
	return d
}

// JSON writes d as indented JSON. Frames whose angles are no longer finite
// are dropped because JSON cannot represent them.
func JSON(w io.Writer, d Data) error {
	kept := d.Frames[:0:0]
	for _, f := range d.Frames {
		if finite32(f.Theta[0], f.Theta[1], f.Omega[0], f.Omega[1], f.Tip[0], f.Tip[1]) {
			kept = append(kept, f)
		}
	}
	d.Frames = kept

	trace := d.Trace[:0:0]
	for _, p := range d.Trace {
		if finite32(p[0], p[1]) {
			trace = append(trace, p)
		}
	}
	d.Trace = trace

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

func finite32(vs ...float32) bool {
	for _, v := range vs {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
