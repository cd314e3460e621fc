package viz

import (
	"image/color"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/jotingen/pendulum/internal/pendulum"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)

	if c.Grid[0][0] != 0x2801 {
		t.Errorf("expected dot 1, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != 0x2880 {
		t.Errorf("expected dot 8, got %U", c.Grid[0][1])
	}
	if !c.IsSet(3, 3) || c.IsSet(2, 3) {
		t.Error("IsSet disagrees with Set")
	}

	c.Unset(0, 0)
	if c.Grid[0][0] != brailleBase {
		t.Errorf("expected empty cell, got %U", c.Grid[0][0])
	}

	// Out of range writes are ignored.
	c.Set(-1, 0)
	c.Set(100, 100)
	if c.IsSet(-1, 0) || c.IsSet(100, 100) {
		t.Error("out of range pixel reported as set")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(0, 0, 19, 19)
	for i := 0; i < 20; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("diagonal pixel (%d,%d) not set", i, i)
		}
	}

	c.Clear()
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if c.IsSet(x, y) {
				t.Fatalf("pixel (%d,%d) still set after Clear", x, y)
			}
		}
	}
}

func TestCanvasFillCircle(t *testing.T) {
	c := NewCanvas(10, 5)
	c.FillCircle(10, 10, 2)

	for _, p := range [][2]int{{10, 10}, {12, 10}, {10, 8}, {11, 11}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("expected (%d,%d) inside circle", p[0], p[1])
		}
	}
	if c.IsSet(12, 12) {
		t.Error("corner outside radius should stay clear")
	}
}

func TestCanvasRenderInk(t *testing.T) {
	c := NewCanvas(4, 1)
	c.SetPen(lipgloss.Color("#ff0000"))
	c.Set(0, 0)
	c.SetPen("")
	c.Set(6, 0)

	if c.Ink[0][0] != "#ff0000" || c.Ink[0][3] != "" {
		t.Errorf("unexpected ink %v", c.Ink[0])
	}

	plain := c.String()
	if plain != "\u2801\u2800\u2800\u2801\n" {
		t.Errorf("unexpected plain render %q", plain)
	}
	if !strings.Contains(c.Render(), "⠁") {
		t.Error("styled render lost glyphs")
	}
}

func TestViewport(t *testing.T) {
	c := NewCanvas(40, 20)
	vp := FitViewport(c, 200)

	if x, y := vp.Project(pendulum.Pivot); x != 40 || y != 40 {
		t.Errorf("pivot should map to the centre, got (%d,%d)", x, y)
	}

	// A point straight down at full reach stays on the canvas.
	x, y := vp.Project(pendulum.Vec2{Y: 200})
	if x != 40 || y >= 80 || y <= 40 {
		t.Errorf("full reach mapped to (%d,%d)", x, y)
	}

	// +X is right and +Y is down in both frames.
	x, y = vp.Project(pendulum.Vec2{X: 50, Y: -50})
	if x <= 40 || y >= 40 {
		t.Errorf("axis orientation wrong: (%d,%d)", x, y)
	}
}

func TestHexColor(t *testing.T) {
	tests := []struct {
		in   color.RGBA
		want lipgloss.Color
	}{
		{pendulum.White, "#ffffff"},
		{color.RGBA{R: 0x10, G: 0xa0, B: 0x0f, A: 0xff}, "#10a00f"},
		{color.RGBA{}, "#000000"},
	}
	for _, tt := range tests {
		if got := HexColor(tt.in); got != tt.want {
			t.Errorf("HexColor(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseHexBlend(t *testing.T) {
	if got := parseHex("nope").Hex(); got != "#ffffff" {
		t.Errorf("fallback = %s, want #ffffff", got)
	}
	mid := parseHex("#ff0000").BlendRgb(parseHex("#0000FF"), 0.5).Hex()
	if mid != "#800080" {
		t.Errorf("midpoint = %s, want #800080", mid)
	}
}
