package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/jotingen/pendulum/internal/config"
)

func base() *config.Config {
	cfg := config.GetPreset("gentle")
	cfg.Steps = 60
	return cfg
}

func TestApply(t *testing.T) {
	b := base()
	cfg, err := Apply(b, map[string]float64{"upper.length": 150, "lower.angle": 1, "dt": 0.01})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.Upper.Length != 150 || cfg.Dt != 0.01 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Lower.Angle == nil || *cfg.Lower.Angle != 1 {
		t.Errorf("lower angle = %v", cfg.Lower.Angle)
	}
	if b.Upper.Length != 100 || *b.Lower.Angle != 0.3 {
		t.Error("Apply modified the base config")
	}

	if _, err := Apply(b, map[string]float64{"gravity": 1}); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("unknown param error = %v", err)
	}
}

func TestParams(t *testing.T) {
	names := Params()
	if len(names) != 9 {
		t.Fatalf("got %d params, want 9", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("params not sorted: %v", names)
		}
	}
}

func TestNewGridSearchValidates(t *testing.T) {
	if _, err := NewGridSearch(base(), []string{"dt"}, nil); err == nil {
		t.Error("expected error for mismatched ranges")
	}
	if _, err := NewGridSearch(base(), []string{"nope"}, [][]float64{{1}}); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("unknown param error = %v", err)
	}
}

func TestSearchSmallerDtDriftsLess(t *testing.T) {
	g, err := NewGridSearch(base(), []string{"dt"}, [][]float64{{0.2, 0.05, 0.01}})
	if err != nil {
		t.Fatal(err)
	}

	params, val, err := g.Search(context.Background(), "energy_drift")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if params["dt"] != 0.01 {
		t.Errorf("best dt = %v, want 0.01 (drift %v)", params["dt"], val)
	}
}

func TestSearchMaximize(t *testing.T) {
	g, err := NewGridSearch(base(), []string{"upper.angle"}, [][]float64{{0.1, 0.5, 1.0}})
	if err != nil {
		t.Fatal(err)
	}

	params, _, err := g.Maximize().Search(context.Background(), "angular_speed")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if params["upper.angle"] != 1.0 {
		t.Errorf("fastest swing at upper.angle = %v, want 1.0", params["upper.angle"])
	}
}

func TestSearchSkipsInvalid(t *testing.T) {
	g, err := NewGridSearch(base(), []string{"upper.mass"}, [][]float64{{-5, 20}})
	if err != nil {
		t.Fatal(err)
	}
	params, _, err := g.Search(context.Background(), "energy_drift")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if params["upper.mass"] != 20 {
		t.Errorf("best = %v, invalid mass should be skipped", params)
	}
}

func TestSearchErrors(t *testing.T) {
	g, _ := NewGridSearch(base(), []string{"dt"}, [][]float64{{0.05}})
	if _, _, err := g.Search(context.Background(), "nope"); err == nil {
		t.Error("expected error for unknown metric")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := g.Search(ctx, "energy_drift"); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled search error = %v", err)
	}
}

func TestSearchReusesSeed(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Steps = 60

	gs, err := NewGridSearch(cfg, []string{"upper.mass"}, [][]float64{{20}})
	if err != nil {
		t.Fatal(err)
	}
	gs.Maximize()
	if gs.Seed() == 0 {
		t.Error("expected a resolved seed for an unseeded config")
	}

	_, first, err := gs.Search(context.Background(), "tip_reach")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for i := 0; i < 2; i++ {
		_, again, err := gs.Search(context.Background(), "tip_reach")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if again != first {
			t.Errorf("search %d = %v, want %v from the same seed", i+2, again, first)
		}
	}
}

func TestSearchKeepsExplicitSeed(t *testing.T) {
	cfg := base()
	cfg.Seed = 42
	gs, err := NewGridSearch(cfg, []string{"dt"}, [][]float64{{0.05}})
	if err != nil {
		t.Fatal(err)
	}
	if gs.Seed() != 42 {
		t.Errorf("Seed() = %d, want 42", gs.Seed())
	}
}
