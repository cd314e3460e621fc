package viz

import (
	"math"
	"testing"

	"github.com/jotingen/pendulum/internal/pendulum"
)

func TestDrawSystem(t *testing.T) {
	upper := pendulum.Body{Length: 100, Mass: 10, Color: pendulum.White}
	lower := pendulum.Body{Length: 100, Mass: 10, Color: pendulum.White}
	bodies := [2]pendulum.Body{upper, lower}

	c := NewCanvas(40, 20)
	vp := FitViewport(c, Reach(bodies))
	trace := []pendulum.Vec2{{X: -150, Y: 0}, {X: float32(math.NaN()), Y: 0}}

	DrawSystem(c, vp, bodies, trace, ThemeCyberpunk.Trace)

	// Hanging straight down: pivot, elbow and tip share a column.
	px, py := vp.Project(pendulum.Pivot)
	ex, ey := vp.Project(pendulum.Vec2{Y: 100})
	tx, ty := vp.Project(pendulum.Vec2{Y: 200})
	for _, p := range [][2]int{{px, py}, {ex, ey}, {tx, ty}, {px, (py + ey) / 2}, {ex, (ey + ty) / 2}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("expected (%d,%d) to be drawn", p[0], p[1])
		}
	}

	if x, y := vp.Project(trace[0]); !c.IsSet(x, y) {
		t.Error("trace point not drawn")
	}
	if c.Ink[ty/4][tx/2] != "#ffffff" {
		t.Errorf("tip should use the body colour, got %q", c.Ink[ty/4][tx/2])
	}
}

func TestDrawSystemNonFinite(t *testing.T) {
	nan := pendulum.Body{Length: 100, Mass: 10, Angle: float32(math.NaN())}
	c := NewCanvas(10, 5)
	DrawSystem(c, FitViewport(c, 200), [2]pendulum.Body{nan, nan}, nil, "")

	w, h := c.Dots()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if c.IsSet(x, y) {
				t.Fatalf("non-finite system drew pixel (%d,%d)", x, y)
			}
		}
	}
}
