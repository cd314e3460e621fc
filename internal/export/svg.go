package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/jotingen/pendulum/internal/pendulum"
	"github.com/jotingen/pendulum/internal/viz"
)

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2   // 2 sub-pixels per char
	height := float64(canvas.Height) * scale * 4 // 4 sub-pixels per char

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	dotRadius := scale * 0.4
	w, h := canvas.Dots()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TraceSVG draws one frame of the pendulum at size x size pixels: the trace
// as dots, both rods and both masses, with the pivot at the centre.
func TraceSVG(bodies [2]pendulum.Body, trace []pendulum.Vec2, size int) string {
	reach := float64(bodies[0].Length + bodies[1].Length)
	scale := 1.0
	if reach > 0 {
		scale = 0.45 * float64(size) / reach
	}
	c := float64(size) / 2
	project := func(p pendulum.Vec2) (float64, float64) {
		x, y := p.XY()
		return c + x*scale, c + y*scale
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, size, size, size, size)

	sb.WriteString(`<g fill="#888888">` + "\n")
	for _, p := range trace {
		if !p.IsFinite() {
			continue
		}
		x, y := project(p)
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"1\"/>\n", x, y)
	}
	sb.WriteString("</g>\n")

	elbow := bodies[0].EndPoint(pendulum.Pivot)
	tip := bodies[1].EndPoint(elbow)
	if elbow.IsFinite() && tip.IsFinite() {
		radius := math.Max(2, 10*scale)
		anchor := pendulum.Pivot
		for i, end := range []pendulum.Vec2{elbow, tip} {
			col := viz.HexColor(bodies[i].Color)
			x0, y0 := project(anchor)
			x1, y1 := project(end)
			fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\" stroke=\"%s\" stroke-width=\"2\"/>\n", x0, y0, x1, y1, col)
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", x1, y1, radius, col)
			anchor = end
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}
