package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Header    lipgloss.Style
	Panel     lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Selected  lipgloss.Style
	Running   lipgloss.Style
	Paused    lipgloss.Style
	Recording lipgloss.Style
	Graph     lipgloss.Style
	KeyHint   lipgloss.Style
	Subtle    lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted).
			MarginBottom(1),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(44),
		Label:    lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		Value:    lipgloss.NewStyle().Foreground(t.Text),
		Selected: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Running:  lipgloss.NewStyle().Foreground(t.Good).Bold(true),
		Paused:   lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		Recording: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Bad).
			Blink(true),
		Graph:   lipgloss.NewStyle().Foreground(t.Accent).Padding(1, 0),
		KeyHint: lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		Subtle:  lipgloss.NewStyle().Foreground(t.Muted),
	}
}

// GradientText colours each rune along a linear blend between two colours.
func GradientText(text string, startColor, endColor lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	from := parseHex(string(startColor))
	to := parseHex(string(endColor))

	var result strings.Builder
	n := len(runes)
	for i, c := range runes {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		blend := from.BlendRgb(to, t).Clamped()
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(blend.Hex()))
		result.WriteString(style.Render(string(c)))
	}
	return result.String()
}

// ProgressBar renders a bar filled to percent of width.
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	filled = max(0, min(filled, width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Sparkline renders values scaled between their min and max as block
// characters, sampled down to width.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := max(len(values)/width, 1)

	var result strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		result.WriteRune(chars[idx])
	}
	return result.String()
}

func Separator(width int) string {
	if width < 8 {
		return strings.Repeat("─", max(width, 0))
	}
	mid := width / 2
	return strings.Repeat("─", mid-3) + " ◆ " + strings.Repeat("─", width-mid-3)
}

// parseHex falls back to white for anything that is not #rrggbb.
func parseHex(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil || len(hex) != 7 {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	return c
}
