package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/jotingen/pendulum/internal/pendulum"
)

// massRadius is the mass radius in sub-pixels.
const massRadius = 2

// DrawSystem draws one frame: the trace as dots, the two rods, and a filled
// circle for each mass. Rods and masses use the body colours; the trace uses
// traceInk. Non-finite points are skipped.
func DrawSystem(c *Canvas, vp Viewport, bodies [2]pendulum.Body, trace []pendulum.Vec2, traceInk lipgloss.Color) {
	c.SetPen(traceInk)
	for _, p := range trace {
		if !p.IsFinite() {
			continue
		}
		c.Set(vp.Project(p))
	}

	elbow := bodies[pendulum.Upper].EndPoint(pendulum.Pivot)
	tip := bodies[pendulum.Lower].EndPoint(elbow)
	if !elbow.IsFinite() || !tip.IsFinite() {
		return
	}

	px, py := vp.Project(pendulum.Pivot)
	ex, ey := vp.Project(elbow)
	tx, ty := vp.Project(tip)

	c.SetPen(HexColor(bodies[pendulum.Upper].Color))
	c.DrawLine(px, py, ex, ey)
	c.FillCircle(ex, ey, massRadius)

	c.SetPen(HexColor(bodies[pendulum.Lower].Color))
	c.DrawLine(ex, ey, tx, ty)
	c.FillCircle(tx, ty, massRadius)

	c.SetPen("")
	c.Set(px, py)
}

// Reach is the longest distance the tip can be from the pivot.
func Reach(bodies [2]pendulum.Body) float32 {
	return bodies[0].Length + bodies[1].Length
}
