package analysis

import (
	"math"
	"strings"

	"github.com/jotingen/pendulum/internal/pendulum"
	"github.com/jotingen/pendulum/internal/sim"
)

// Point is one sample in a 2D projection of phase space.
type Point struct{ X, Y float64 }

// PhasePortrait holds angle against angular velocity for one body.
type PhasePortrait struct {
	Role   pendulum.Role
	Points []Point
}

// WrapAngle maps a to (-π, π].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// NewPhasePortrait projects recorded frames onto (θ, ω) of body r. Angles
// are wrapped and non-finite frames are skipped.
func NewPhasePortrait(frames []sim.Frame, r pendulum.Role) *PhasePortrait {
	p := &PhasePortrait{Role: r, Points: make([]Point, 0, len(frames))}
	for _, f := range frames {
		b := f.Bodies[r.Index()]
		if !b.IsFinite() {
			continue
		}
		p.Points = append(p.Points, Point{
			X: WrapAngle(float64(b.Angle)),
			Y: float64(b.AngularVelocity),
		})
	}
	return p
}

// PoincareSection records (θ2, ω2) each time the upper angle crosses zero
// moving in the positive direction.
func PoincareSection(frames []sim.Frame) []Point {
	var out []Point
	for i := 1; i < len(frames); i++ {
		prev := WrapAngle(float64(frames[i-1].Bodies[0].Angle))
		curr := WrapAngle(float64(frames[i].Bodies[0].Angle))
		if crossedZero(prev, curr) {
			lower := frames[i].Bodies[1]
			out = append(out, Point{
				X: WrapAngle(float64(lower.Angle)),
				Y: float64(lower.AngularVelocity),
			})
		}
	}
	return out
}

// crossedZero reports an upward pass through zero. A jump across ±π is a
// wrap, not a crossing.
func crossedZero(prev, curr float64) bool {
	return prev < 0 && curr >= 0 && curr-prev < math.Pi
}

// PlotASCII draws points on a width x height character grid with axes where
// they fall inside the visible area.
func PlotASCII(points []Point, width, height int) string {
	if len(points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && grid[row][col] == ' ' {
				grid[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && grid[row][col] == ' ' {
				grid[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
