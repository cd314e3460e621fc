package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/jotingen/pendulum/internal/pendulum"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt != pendulum.DefaultDt {
		t.Errorf("expected dt %v, got %v", pendulum.DefaultDt, cfg.Dt)
	}
	if cfg.Steps <= 0 {
		t.Error("steps should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pendulum.yaml")

	cfg := GetPreset("chaos")
	cfg.Seed = 7
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Seed != 7 || loaded.Steps != cfg.Steps {
		t.Errorf("round trip lost run fields: %+v", loaded)
	}
	if loaded.Upper.Angle == nil || *loaded.Upper.Angle != 3.0 {
		t.Errorf("round trip lost upper angle: %+v", loaded.Upper)
	}
	if loaded.Lower.Color != "cyan" {
		t.Errorf("expected lower color cyan, got %q", loaded.Lower.Color)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("steps: 42\nupper:\n  length: 80\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Steps != 42 || cfg.Upper.Length != 80 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Dt != pendulum.DefaultDt || cfg.LogLevel != DefaultLogLevel {
		t.Errorf("defaults not kept: %+v", cfg)
	}
	if cfg.Upper.Angle != nil {
		t.Error("unset angle should stay nil")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("steps: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }, ErrInvalidConfig},
		{"zero steps", func(c *Config) { c.Steps = 0 }, ErrInvalidConfig},
		{"variable without scale", func(c *Config) { c.Variable = true; c.TimeScale = 0 }, ErrInvalidConfig},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, ErrInvalidConfig},
		{"negative length", func(c *Config) { c.Upper.Length = -1 }, ErrInvalidBody},
		{"negative mass", func(c *Config) { c.Lower.Mass = -5 }, ErrInvalidBody},
		{"bad color", func(c *Config) { c.Lower.Color = "#12" }, ErrInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNewSystem(t *testing.T) {
	cfg := GetPreset("symmetric")
	sys, err := cfg.NewSystem(cfg.Seed)
	if err != nil {
		t.Fatalf("NewSystem failed: %v", err)
	}

	upper := sys.Body(pendulum.Upper)
	if upper.Length != 100 || upper.Mass != 20 || upper.Angle != 1.5 || upper.AngularVelocity != 0 {
		t.Errorf("overrides not applied: %+v", upper)
	}

	again, _ := GetPreset("reference").NewSystem(42)
	ref, _ := GetPreset("reference").NewSystem(42)
	if again.Bodies() != ref.Bodies() {
		t.Error("same seed produced different systems")
	}
	for _, b := range ref.Bodies() {
		if b.Length < pendulum.MinLength || b.Length >= pendulum.MaxLength {
			t.Errorf("random length %v out of range", b.Length)
		}
	}
}

func TestNewSystemRejectsBadColor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Upper.Color = "not-a-color"

	if _, err := cfg.NewSystem(1); !errors.Is(err, ErrInvalidBody) {
		t.Errorf("expected ErrInvalidBody, got %v", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"white", pendulum.White, false},
		{" Red ", color.RGBA{R: 255, A: 255}, false},
		{"#102030", color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}, false},
		{"10203040", color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x40}, false},
		{"#1234", color.RGBA{}, true},
		{"#zzzzzz", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StopOnDivergence = true
	sc := cfg.SimConfig()
	if sc.Dt != cfg.Dt || sc.Steps != cfg.Steps || !sc.StopOnDivergence || sc.RecordEvery != 1 {
		t.Errorf("unexpected sim config %+v", sc)
	}
}
