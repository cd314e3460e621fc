package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/jotingen/pendulum/internal/config"
	"github.com/jotingen/pendulum/internal/metrics"
	"github.com/jotingen/pendulum/internal/sim"
)

var ErrUnknownParam = errors.New("optim: unknown parameter")

// setters maps tunable parameter names to the config field they set.
var setters = map[string]func(*config.Config, float64){
	"dt":                     func(c *config.Config, v float64) { c.Dt = float32(v) },
	"upper.length":           func(c *config.Config, v float64) { c.Upper.Length = float32(v) },
	"upper.mass":             func(c *config.Config, v float64) { c.Upper.Mass = float32(v) },
	"upper.angle":            func(c *config.Config, v float64) { a := float32(v); c.Upper.Angle = &a },
	"upper.angular_velocity": func(c *config.Config, v float64) { w := float32(v); c.Upper.AngularVelocity = &w },
	"lower.length":           func(c *config.Config, v float64) { c.Lower.Length = float32(v) },
	"lower.mass":             func(c *config.Config, v float64) { c.Lower.Mass = float32(v) },
	"lower.angle":            func(c *config.Config, v float64) { a := float32(v); c.Lower.Angle = &a },
	"lower.angular_velocity": func(c *config.Config, v float64) { w := float32(v); c.Lower.AngularVelocity = &w },
}

// Params lists the tunable parameter names.
func Params() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply sets the named parameters on a copy of base.
func Apply(base *config.Config, params map[string]float64) (*config.Config, error) {
	cfg := base.Clone()
	for name, v := range params {
		set, ok := setters[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParam, name)
		}
		set(cfg, v)
	}
	return cfg, nil
}

// GridSearch tries every combination of parameter values on a base config
// and keeps the one that minimizes a metric. Every combination draws its
// unset body parameters from the same seed, so only the swept values differ.
type GridSearch struct {
	base       *config.Config
	seed       int64
	paramNames []string
	ranges     [][]float64
	maximize   bool
}

func NewGridSearch(base *config.Config, params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d params but %d ranges", len(params), len(ranges))
	}
	for _, p := range params {
		if _, ok := setters[p]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParam, p)
		}
	}
	return &GridSearch{base: base, seed: base.EffectiveSeed(), paramNames: params, ranges: ranges}, nil
}

// Seed returns the seed every combination is built from.
func (g *GridSearch) Seed() int64 { return g.seed }

// Maximize flips the search to keep the largest metric value.
func (g *GridSearch) Maximize() *GridSearch {
	g.maximize = true
	return g
}

// Search returns the best parameters and the metric value they produced.
// Combinations whose config is invalid or whose run diverges are skipped.
func (g *GridSearch) Search(ctx context.Context, metricName string) (map[string]float64, float64, error) {
	if _, err := metrics.New(metricName); err != nil {
		return nil, 0, err
	}

	best := math.Inf(1)
	if g.maximize {
		best = math.Inf(-1)
	}
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), metricName, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	return bestParams, best, nil
}

func (g *GridSearch) better(val, best float64) bool {
	if math.IsNaN(val) {
		return false
	}
	if g.maximize {
		return val > best
	}
	return val < best
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		val, ok, err := g.evaluate(ctx, current, metricName)
		if err != nil || !ok {
			return err
		}
		if g.better(val, *best) {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

// evaluate runs one combination. ok is false when it was skipped.
func (g *GridSearch) evaluate(ctx context.Context, params map[string]float64, metricName string) (float64, bool, error) {
	cfg, err := Apply(g.base, params)
	if err != nil {
		return 0, false, err
	}
	if cfg.Validate() != nil {
		return 0, false, nil
	}
	sys, err := cfg.NewSystem(g.seed)
	if err != nil {
		return 0, false, nil
	}

	ms, err := metrics.New(metricName)
	if err != nil {
		return 0, false, err
	}
	s := sim.New(sys, nil)
	for _, m := range ms {
		s.AddMetric(m)
	}
	simCfg := cfg.SimConfig()
	simCfg.RecordEvery = 0
	result, err := s.Run(ctx, simCfg)
	if err != nil {
		if errors.Is(err, sim.ErrDiverged) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if result.Diverged {
		return 0, false, nil
	}
	return result.Metrics[metricName], true, nil
}
