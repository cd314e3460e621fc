package export

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/jotingen/pendulum/internal/pendulum"
	"github.com/jotingen/pendulum/internal/sim"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var ErrNoData = errors.New("export: nothing to plot")

const dpi = 96

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)
	p.X.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)
	p.X.Padding = vg.Points(8)
	p.Y.Padding = vg.Points(8)
	p.Add(plotter.NewGrid())
}

func writePNG(w io.Writer, p *plot.Plot, widthIn, heightIn float64) error {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(dpi),
	)
	p.Draw(draw.New(c))

	bw := bufio.NewWriter(w)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return bw.Flush()
}

// TracePNG plots the tip trace in the physics frame. The Y axis is flipped
// so the picture matches the screen, where +Y points down.
func TracePNG(w io.Writer, trace []pendulum.Vec2, title string) error {
	pts := make(plotter.XYs, 0, len(trace))
	for _, p := range trace {
		if !p.IsFinite() {
			continue
		}
		x, y := p.XY()
		pts = append(pts, plotter.XY{X: x, Y: -y})
	}
	if len(pts) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "-y"
	stylePlot(p)

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	scatter.GlyphStyle.Color = color.RGBA{R: 30, G: 120, B: 220, A: 255}
	p.Add(scatter)

	if len(pts) > 1 {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(0.5)
		line.LineStyle.Color = color.Gray{Y: 160}
		p.Add(line)
	}

	return writePNG(w, p, 6, 6)
}

// EnergyPNG plots total energy against time.
func EnergyPNG(w io.Writer, frames []sim.Frame, title string) error {
	return SeriesPNG(w, frames, title, "energy", func(f sim.Frame) float64 { return f.Energy })
}

// AnglesPNG plots both angles against time.
func AnglesPNG(w io.Writer, frames []sim.Frame, title string) error {
	if len(frames) == 0 {
		return ErrNoData
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "angle (rad)"
	stylePlot(p)

	for i, col := range []color.RGBA{{R: 220, G: 60, B: 60, A: 255}, {R: 30, G: 120, B: 220, A: 255}} {
		pts := make(plotter.XYs, len(frames))
		for j, f := range frames {
			pts[j] = plotter.XY{X: f.Time, Y: float64(f.Bodies[i].Angle)}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Color = col
		line.LineStyle.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("θ%d", i+1), line)
	}

	return writePNG(w, p, 8, 5)
}

// SeriesPNG plots one value per frame against time.
func SeriesPNG(w io.Writer, frames []sim.Frame, title, ylabel string, value func(sim.Frame) float64) error {
	pts := make(plotter.XYs, 0, len(frames))
	for _, f := range frames {
		pts = append(pts, plotter.XY{X: f.Time, Y: value(f)})
	}
	if len(pts) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = ylabel
	stylePlot(p)

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)

	return writePNG(w, p, 8, 5)
}
