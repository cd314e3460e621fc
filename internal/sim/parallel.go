package sim

import (
	"context"

	"github.com/jotingen/pendulum/internal/pendulum"
	"golang.org/x/sync/errgroup"
)

// Factory builds an independent system for one ensemble member.
type Factory func(seed int64) *pendulum.System

// Ensemble runs independently seeded systems concurrently. Each member owns
// its own System and metrics; nothing is shared between goroutines.
type Ensemble struct {
	factory   Factory
	metrics   func() []Metric
	numRuns   int
	seedStart int64
}

func NewEnsemble(factory Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns, seedStart: seedStart}
}

// WithMetrics sets a constructor called once per member.
func (e *Ensemble) WithMetrics(fn func() []Metric) *Ensemble {
	e.metrics = fn
	return e
}

// Run returns results in seed order.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			s := New(e.factory(e.seedStart+int64(idx)), nil)
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}
			res, err := s.Run(ctx, cfg)
			results[idx] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
