package config

import "sort"

// Presets are named starting configurations. Copies are returned by
// GetPreset so callers can modify them freely.
var Presets = map[string]*Config{
	"gentle": {
		Dt: 1.0 / 15.0, Steps: 1500, TimeScale: 1, Seed: 1,
		Upper: BodyConfig{Length: 100, Mass: 20, Angle: ptr(0.3), AngularVelocity: ptr(0)},
		Lower: BodyConfig{Length: 100, Mass: 20, Angle: ptr(0.3), AngularVelocity: ptr(0)},
	},
	"symmetric": {
		Dt: 1.0 / 15.0, Steps: 1500, TimeScale: 1, Seed: 1,
		Upper: BodyConfig{Length: 100, Mass: 20, Angle: ptr(1.5), AngularVelocity: ptr(0)},
		Lower: BodyConfig{Length: 100, Mass: 20, Angle: ptr(1.5), AngularVelocity: ptr(0)},
	},
	"chaos": {
		Dt: 1.0 / 15.0, Steps: 3000, TimeScale: 1, Seed: 1,
		Upper: BodyConfig{Length: 120, Mass: 30, Angle: ptr(3.0), AngularVelocity: ptr(0), Color: "orange"},
		Lower: BodyConfig{Length: 100, Mass: 15, Angle: ptr(3.0), AngularVelocity: ptr(0), Color: "cyan"},
	},
	"reference": {
		Dt: 1.0 / 15.0, Steps: 1500, TimeScale: 1, Seed: 42,
	},
}

func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := p.Clone()
	cfg.LogLevel = DefaultLogLevel
	cfg.DataDir = DefaultDataDir
	cfg.Theme = DefaultTheme
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
