package pendulum

import "math"

// Vec2 is a point or displacement in the physics frame.
type Vec2 struct {
	X, Y float32
}

func (v Vec2) Add(o Vec2) Vec2        { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2        { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float32) Vec2   { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Len() float32           { return float32(math.Hypot(float64(v.X), float64(v.Y))) }
func (v Vec2) Dist(o Vec2) float32    { return v.Sub(o).Len() }
func (v Vec2) IsFinite() bool         { return finite32(v.X) && finite32(v.Y) }
func (v Vec2) XY() (float64, float64) { return float64(v.X), float64(v.Y) }

func finite32(f float32) bool {
	x := float64(f)
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
