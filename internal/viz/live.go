package viz

import (
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/jotingen/pendulum/internal/pendulum"
	"github.com/jotingen/pendulum/internal/sim"
	"github.com/rs/zerolog"
)

const (
	defaultWidth    = 80
	defaultHeight   = 24
	panelWidth      = 48
	historyCapacity = 600
	frameRate       = 60
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Options configure a live Model.
type Options struct {
	Title     string
	Dt        float32
	Variable  bool
	TimeScale float32
	Theme     string
	GIFPath   string
	Logger    zerolog.Logger
}

// param is one tunable body quantity.
type param struct {
	name string
	role pendulum.Role
	get  func(pendulum.Body) float32
	set  func(pendulum.Body, float32) pendulum.Body
}

var params = []param{
	{"upper len", pendulum.Upper, func(b pendulum.Body) float32 { return b.Length }, pendulum.Body.WithLength},
	{"upper mass", pendulum.Upper, func(b pendulum.Body) float32 { return b.Mass }, pendulum.Body.WithMass},
	{"lower len", pendulum.Lower, func(b pendulum.Body) float32 { return b.Length }, pendulum.Body.WithLength},
	{"lower mass", pendulum.Lower, func(b pendulum.Body) float32 { return b.Mass }, pendulum.Body.WithMass},
}

// Model steps a System once per tick and draws it on a braille canvas.
type Model struct {
	sys     *pendulum.System
	initial *pendulum.System
	clock   sim.Clock
	opts    Options

	width, height int
	canvas        *Canvas
	traceBuf      []pendulum.Vec2
	theme         Theme
	styles        Styles

	running       bool
	diverged      bool
	energyHistory []float64
	baseEnergy    float64
	scale         float64
	history       []*pendulum.System
	playHead      int
	selected      int
	showHelp      bool

	recording bool
	frames    []*image.Paletted

	log zerolog.Logger
}

// NewModel takes ownership of sys. Reset returns to the state sys had here.
func NewModel(sys *pendulum.System, opts Options) Model {
	if opts.Dt <= 0 {
		opts.Dt = pendulum.DefaultDt
	}
	if opts.Title == "" {
		opts.Title = "double pendulum"
	}
	if opts.GIFPath == "" {
		opts.GIFPath = "pendulum.gif"
	}
	theme := GetTheme(opts.Theme)

	m := Model{
		sys:           sys,
		initial:       sys.Clone(),
		opts:          opts,
		width:         defaultWidth - panelWidth,
		height:        defaultHeight - 2,
		theme:         theme,
		styles:        NewStyles(theme),
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
		baseEnergy:    sys.Energy(),
		scale:         sim.EnergyScale(sys.Bodies()),
		history:       make([]*pendulum.System, 0, historyCapacity),
		playHead:      -1,
		log:           opts.Logger.With().Str("component", "live").Logger(),
	}
	m.canvas = NewCanvas(m.width, m.height)
	m.clock = m.newClock()
	return m
}

func (m Model) newClock() sim.Clock {
	if m.opts.Variable {
		scale := m.opts.TimeScale
		if scale <= 0 {
			scale = 1
		}
		return sim.NewMeasuredClock(scale, 4*m.opts.Dt)
	}
	return sim.FixedClock(m.opts.Dt)
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// System returns the live system.
func (m Model) System() *pendulum.System { return m.sys }

func (m Model) Running() bool { return m.running }

func (m Model) Theme() Theme { return m.theme }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.recording {
				m.saveGIF()
			}
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n", ".":
			if !m.running && m.playHead == -1 {
				m.step()
			}
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.selected = (m.selected + 1) % len(params)
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.styles = NewStyles(m.theme)
			m.log.Debug().Str("theme", m.theme.Name).Msg("theme changed")
		case "g":
			if m.recording {
				m.saveGIF()
				m.recording = false
				m.frames = nil
			} else {
				m.recording = true
				m.frames = make([]*image.Paletted, 0)
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		if m.recording {
			m.draw()
			m.frames = append(m.frames, canvasImage(m.canvas))
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	m.width = max(w-panelWidth, 20)
	m.height = max(h-2, 10)
	m.canvas = NewCanvas(m.width, m.height)
}

// step advances the live system by one clock tick.
func (m *Model) step() {
	dt := m.clock.Next()
	m.sys.Step(dt)

	if !m.diverged && !m.sys.IsFinite() {
		m.diverged = true
		m.log.Warn().Int("step", m.sys.Steps()).Float64("time", m.sys.Time()).Msg("state is no longer finite")
	}

	m.energyHistory = append(m.energyHistory, m.sys.Energy())
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}

	m.history = append(m.history, m.sys.Clone())
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset restores the system captured by NewModel.
func (m *Model) reset() {
	m.sys = m.initial.Clone()
	m.clock = m.newClock()
	m.energyHistory = m.energyHistory[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.diverged = false
	m.rebase()
	m.log.Debug().Msg("reset")
}

func (m *Model) adjustParam(factor float32) {
	p := params[m.selected]
	b := m.sys.Body(p.role)
	m.sys.SetBody(p.role, p.set(b, p.get(b)*factor))
	m.rebase()
}

// rebase measures drift from the current state, which changes energy
// whenever a body is retuned.
func (m *Model) rebase() {
	m.baseEnergy = m.sys.Energy()
	m.scale = sim.EnergyScale(m.sys.Bodies())
}

// drift is the relative energy change of the displayed system since the
// last reset or retune.
func (m *Model) drift() float64 {
	return math.Abs(m.displayed().Energy()-m.baseEnergy) / m.scale
}

// displayed is the system shown: the live one, or a replayed snapshot.
func (m *Model) displayed() *pendulum.System {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	return m.sys
}

func (m *Model) draw() {
	disp := m.displayed()
	m.canvas.Clear()
	bodies := disp.Bodies()
	m.traceBuf = disp.AppendTrace(m.traceBuf[:0])
	DrawSystem(m.canvas, FitViewport(m.canvas, Reach(bodies)), bodies, m.traceBuf, m.theme.Trace)
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	disp := m.displayed()
	st := m.styles

	var s strings.Builder
	s.WriteString(st.Header.Render(strings.ToUpper(m.opts.Title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(st.Graph.Render(chart) + "\n")
	}

	bodies := disp.Bodies()
	row := func(label, value string) {
		s.WriteString(st.Label.Render(label) + st.Value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", disp.Time()))
	row("Step", fmt.Sprintf("%d", disp.Steps()))
	row("Energy", fmt.Sprintf("%.1f", disp.Energy()))
	row("Drift", fmt.Sprintf("%.2f%%", 100*m.drift()))
	row("θ1 / ω1", fmt.Sprintf("%7.3f %7.3f", bodies[0].Angle, bodies[0].AngularVelocity))
	row("θ2 / ω2", fmt.Sprintf("%7.3f %7.3f", bodies[1].Angle, bodies[1].AngularVelocity))
	row("Trace", fmt.Sprintf("%d/%d", disp.TraceLen(), pendulum.TraceCapacity))
	row("Theme", m.theme.Name)

	s.WriteString("\nPARAMETERS\n")
	for i, p := range params {
		line := fmt.Sprintf("%-10s %7.1f", p.name, p.get(m.sys.Body(p.role)))
		if i == m.selected {
			s.WriteString(st.Selected.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.Label.Width(0).Render(line) + "\n")
		}
	}

	s.WriteString("\n" + st.Subtle.Render(Separator(30)) + "\n")
	s.WriteString(st.KeyHint.Render("SP:Pause N:Step R:Reset Q:Quit\nT:Theme  G:Record ?:Help\n[ ]:Time-Travel Tab ↑↓:Tune"))

	panel := st.Panel.Render(s.String())
	main := lipgloss.JoinHorizontal(lipgloss.Top, m.canvas.Render(), panel)
	if m.showHelp {
		return helpText + "\n\n" + main
	}
	return main
}

func (m Model) status() string {
	st := m.styles
	var s string
	switch {
	case m.playHead != -1:
		offset := m.history[m.playHead].Time() - m.sys.Time()
		label := "REPLAY"
		if !m.running {
			label = "REPLAY PAUSED"
		}
		s = st.Paused.Render(fmt.Sprintf("%s (%.1fs)", label, offset)) + " " +
			ProgressBar(float64(m.playHead+1)/float64(len(m.history)), 12)
	case !m.running:
		s = st.Paused.Render("PAUSED")
	default:
		s = st.Running.Render("RUNNING")
	}
	if m.diverged {
		s += " " + st.Recording.UnsetBlink().Render("DIVERGED")
	}
	if m.recording {
		s += " " + st.Recording.Render(fmt.Sprintf("● REC %d", len(m.frames)))
	}
	return s
}

func (m *Model) saveGIF() {
	if err := writeGIF(m.opts.GIFPath, m.frames); err != nil {
		m.log.Error().Err(err).Str("path", m.opts.GIFPath).Msg("save recording")
		return
	}
	m.log.Info().Str("path", m.opts.GIFPath).Int("frames", len(m.frames)).Msg("recording saved")
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  N        - Single step when paused  ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  [        - Rewind (time travel)     ║
║  ]        - Forward (time travel)    ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`
