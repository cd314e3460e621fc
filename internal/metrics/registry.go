package metrics

import (
	"fmt"
	"sort"

	"github.com/jotingen/pendulum/internal/sim"
)

var constructors = map[string]func() sim.Metric{
	"energy":        func() sim.Metric { return NewEnergy() },
	"energy_drift":  func() sim.Metric { return NewEnergyDrift() },
	"energy_stddev": func() sim.Metric { return NewEnergyStats() },
	"stability":     func() sim.Metric { return NewStability(0.01) },
	"angular_speed": func() sim.Metric { return NewAngularSpeed() },
	"tip_reach":     func() sim.Metric { return NewTipReach() },
}

// Names lists the registered metric names in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds fresh instances of the named metrics.
func New(names ...string) ([]sim.Metric, error) {
	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		ctor, ok := constructors[name]
		if !ok {
			return nil, fmt.Errorf("unknown metric %q", name)
		}
		out = append(out, ctor())
	}
	return out, nil
}

// All builds one instance of every registered metric.
func All() []sim.Metric {
	m, _ := New(Names()...)
	return m
}
