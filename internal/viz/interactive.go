package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jotingen/pendulum/internal/config"
	"github.com/rs/zerolog"
)

var presetInfo = map[string]string{
	"gentle":    "small swing, near-periodic",
	"symmetric": "both arms level, released",
	"chaos":     "both arms near upright",
	"reference": "seeded random bodies",
	"random":    "fresh random bodies",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// field is one editable value on the config screen.
type field struct {
	name string
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}

func bodyField(name string, body func(*config.Config) *config.BodyConfig, which string) field {
	return field{
		name: name,
		get: func(c *config.Config) float64 {
			b := body(c)
			switch which {
			case "length":
				return float64(b.Length)
			case "mass":
				return float64(b.Mass)
			default:
				if b.Angle == nil {
					return 0
				}
				return float64(*b.Angle)
			}
		},
		set: func(c *config.Config, v float64) {
			b := body(c)
			switch which {
			case "length":
				b.Length = float32(v)
			case "mass":
				b.Mass = float32(v)
			default:
				a := float32(v)
				b.Angle = &a
			}
		},
	}
}

var fields = []field{
	bodyField("upper len", func(c *config.Config) *config.BodyConfig { return &c.Upper }, "length"),
	bodyField("upper mass", func(c *config.Config) *config.BodyConfig { return &c.Upper }, "mass"),
	bodyField("upper θ", func(c *config.Config) *config.BodyConfig { return &c.Upper }, "angle"),
	bodyField("lower len", func(c *config.Config) *config.BodyConfig { return &c.Lower }, "length"),
	bodyField("lower mass", func(c *config.Config) *config.BodyConfig { return &c.Lower }, "mass"),
	bodyField("lower θ", func(c *config.Config) *config.BodyConfig { return &c.Lower }, "angle"),
	{
		name: "dt",
		get:  func(c *config.Config) float64 { return float64(c.Dt) },
		set:  func(c *config.Config, v float64) { c.Dt = float32(v) },
	},
	{
		name: "seed",
		get:  func(c *config.Config) float64 { return float64(c.Seed) },
		set:  func(c *config.Config, v float64) { c.Seed = int64(v) },
	},
}

// picker chooses a preset, lets the user edit it, then runs the live view.
type picker struct {
	state, cursor int
	presets       []string
	selected      string
	cfg           *config.Config
	fieldCursor   int
	editing       bool
	editBuf       string
	err           error
	theme         Theme
	log           zerolog.Logger
	width, height int
	live          Model
}

func NewPicker(theme string, log zerolog.Logger) *picker {
	return &picker{
		state:   stateMenu,
		presets: append(config.ListPresets(), "random"),
		theme:   GetTheme(theme),
		log:     log,
	}
}

func (m picker) Init() tea.Cmd { return nil }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.state == stateSim {
			return m.forward(msg)
		}
		return m, nil
	default:
		if m.state == stateSim {
			return m.forward(msg)
		}
	}
	return m, nil
}

func (m picker) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.live.Update(msg)
	m.live = next.(Model)
	return m, cmd
}

func (m picker) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		return m.forward(msg)
	}
	return m, nil
}

func (m picker) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.presets[m.cursor]
		m.cfg = config.GetPreset(m.selected)
		if m.cfg == nil {
			m.cfg = config.DefaultConfig()
			m.cfg.Seed = m.cfg.EffectiveSeed()
		}
		m.state, m.fieldCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m picker) configKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%g", &val); err == nil {
				fields[m.fieldCursor].set(m.cfg, val)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(fields)-1 {
			m.fieldCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, fmt.Sprintf("%g", fields[m.fieldCursor].get(m.cfg))
	case "left", "h":
		f := fields[m.fieldCursor]
		f.set(m.cfg, f.get(m.cfg)-0.1)
	case "right", "l":
		f := fields[m.fieldCursor]
		f.set(m.cfg, f.get(m.cfg)+0.1)
	case "s":
		return m.start()
	}
	return m, nil
}

func (m picker) start() (tea.Model, tea.Cmd) {
	if err := m.cfg.Validate(); err != nil {
		m.err = err
		return m, nil
	}
	sys, err := m.cfg.NewSystem(m.cfg.EffectiveSeed())
	if err != nil {
		m.err = err
		return m, nil
	}
	m.log.Info().Str("preset", m.selected).Int64("seed", m.cfg.Seed).Msg("starting live view")
	m.live = NewModel(sys, Options{
		Title:     m.selected,
		Dt:        m.cfg.Dt,
		Variable:  m.cfg.Variable,
		TimeScale: m.cfg.TimeScale,
		Theme:     m.theme.Name,
		Logger:    m.log,
	})
	if m.width > 0 {
		m.live.resize(m.width, m.height)
	}
	m.state = stateSim
	return m, m.live.Init()
}

func (m picker) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return ""
}

func (m picker) viewMenu() string {
	st := NewStyles(m.theme)
	var b strings.Builder
	b.WriteString("\n\n    " + GradientText("PENDULUM", m.theme.Primary, m.theme.Accent) + "\n")
	b.WriteString("    " + st.Subtle.Render("double pendulum simulator") + "\n")
	b.WriteString("    " + st.Subtle.Render(Separator(26)) + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", st.Selected.Render("▸"), st.Value.Bold(true).Render(fmt.Sprintf("%-12s", name)), st.Selected.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", st.Subtle.Render(fmt.Sprintf("  %-12s", name)), st.Subtle.Render(desc)))
		}
	}
	b.WriteString("\n    " + keyHelp(st, "j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m picker) viewConfig() string {
	st := NewStyles(m.theme)
	var b strings.Builder
	b.WriteString("\n\n    " + st.Selected.Render(strings.ToUpper(m.selected)) + "\n")
	b.WriteString("    " + st.Subtle.Render(presetInfo[m.selected]) + "\n")
	b.WriteString("    " + st.Subtle.Render(Separator(26)) + "\n\n")
	for i, f := range fields {
		valStr := fmt.Sprintf("%8.3f", f.get(m.cfg))
		if m.editing && i == m.fieldCursor {
			valStr = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", st.Selected.Render("▸"), st.Value.Bold(true).Render(fmt.Sprintf("%-10s", f.name)), st.Selected.Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", st.Subtle.Render(fmt.Sprintf("  %-10s", f.name)), st.Subtle.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(m.theme.Bad).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHelp(st, "j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

func keyHelp(st Styles, pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(st.Selected.Render(pairs[i]) + st.Subtle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

// RunInteractive opens the preset picker on the terminal.
func RunInteractive(theme string, log zerolog.Logger) error {
	_, err := tea.NewProgram(NewPicker(theme, log), tea.WithAltScreen()).Run()
	return err
}

// RunLive opens the live view for sys on the terminal.
func RunLive(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
