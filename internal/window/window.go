package window

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jotingen/pendulum/internal/pendulum"
	"github.com/jotingen/pendulum/internal/sim"
	"github.com/rs/zerolog"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600

	massRadius = 10
	rodWidth   = 2
	dotSize    = 2
)

var (
	background = color.RGBA{R: 10, G: 10, B: 14, A: 255}
	pivotColor = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	traceColor = color.RGBA{R: 200, G: 200, B: 200, A: 160}
)

type Options struct {
	Title         string
	Width, Height int
	Clock         sim.Clock
	Logger        zerolog.Logger
}

// Game drives a pendulum system from ebiten's update loop and draws it with
// the pivot at the centre of the window. +Y points down in both the physics
// frame and screen space, so positions are only translated.
type Game struct {
	sys     *pendulum.System
	initial *pendulum.System
	clock   sim.Clock
	log     zerolog.Logger

	width, height int
	paused        bool
	stepOnce      bool
	trace         []pendulum.Vec2
}

func NewGame(sys *pendulum.System, opts Options) *Game {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Clock == nil {
		opts.Clock = sim.FixedClock(pendulum.DefaultDt)
	}
	return &Game{
		sys:     sys,
		initial: sys.Clone(),
		clock:   opts.Clock,
		log:     opts.Logger,
		width:   opts.Width,
		height:  opts.Height,
	}
}

// Run opens the window and blocks until it is closed.
func Run(sys *pendulum.System, opts Options) error {
	g := NewGame(sys, opts)
	title := opts.Title
	if title == "" {
		title = "pendulum"
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(g.width, g.height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	g.log.Info().Int("width", g.width).Int("height", g.height).Msg("opening window")
	err := ebiten.RunGame(g)
	if err == ebiten.Termination {
		err = nil
	}
	g.log.Info().Int("steps", g.sys.Steps()).Float64("time", g.sys.Time()).Msg("window closed")
	return err
}

func (g *Game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.paused = !g.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.sys = g.initial.Clone()
		g.log.Debug().Msg("reset")
	case inpututil.IsKeyJustPressed(ebiten.KeyN), inpututil.IsKeyJustPressed(ebiten.KeyPeriod):
		g.stepOnce = g.paused
	}

	dt := g.clock.Next()
	if g.paused && !g.stepOnce {
		return nil
	}
	if g.stepOnce {
		dt = pendulum.DefaultDt
		g.stepOnce = false
	}
	if dt > 0 {
		wasFinite := g.sys.IsFinite()
		g.sys.Step(dt)
		if wasFinite && !g.sys.IsFinite() {
			g.log.Warn().Int("step", g.sys.Steps()).Msg("state diverged")
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	cx, cy := float32(w)/2, float32(h)/2
	project := func(p pendulum.Vec2) (float32, float32) { return cx + p.X, cy + p.Y }

	g.trace = g.sys.AppendTrace(g.trace[:0])
	for _, p := range g.trace {
		if !p.IsFinite() {
			continue
		}
		x, y := project(p)
		vector.DrawFilledRect(screen, x-dotSize/2, y-dotSize/2, dotSize, dotSize, traceColor, false)
	}

	bodies := g.sys.Bodies()
	elbow, tip := g.sys.Joints()
	if elbow.IsFinite() && tip.IsFinite() {
		px, py := project(pendulum.Pivot)
		ex, ey := project(elbow)
		tx, ty := project(tip)
		vector.StrokeLine(screen, px, py, ex, ey, rodWidth, bodies[0].Color, true)
		vector.StrokeLine(screen, ex, ey, tx, ty, rodWidth, bodies[1].Color, true)
		vector.DrawFilledCircle(screen, ex, ey, massRadius, bodies[0].Color, true)
		vector.DrawFilledCircle(screen, tx, ty, massRadius, bodies[1].Color, true)
	}
	vector.DrawFilledCircle(screen, cx, cy, 3, pivotColor, true)

	ebitenutil.DebugPrint(screen, g.hud())
}

func (g *Game) hud() string {
	state := "running"
	if g.paused {
		state = "paused"
	}
	if !g.sys.IsFinite() {
		state = "diverged"
	}
	return fmt.Sprintf("t=%.2fs  step=%d  E=%.1f  %s\nspace pause  n step  r reset  q quit",
		g.sys.Time(), g.sys.Steps(), g.sys.Energy(), state)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
