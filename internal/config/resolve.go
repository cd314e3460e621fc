package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "PENDULUM"

// NewViper returns a viper instance reading PENDULUM_* environment
// variables. Nested keys use an underscore, so upper.length is read from
// PENDULUM_UPPER_LENGTH.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Resolve layers, lowest first: defaults, the preset, the YAML file at
// path, environment variables, then any flag bound to v that the user set.
// An empty preset or path skips that layer.
func Resolve(v *viper.Viper, preset, path string) (*Config, error) {
	cfg := DefaultConfig()
	if preset != "" {
		cfg = GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, preset)
		}
	}
	if path != "" {
		loaded, err := loadOver(cfg, path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if v.IsSet("dt") {
		cfg.Dt = float32(v.GetFloat64("dt"))
	}
	if v.IsSet("steps") {
		cfg.Steps = v.GetInt("steps")
	}
	if v.IsSet("variable") {
		cfg.Variable = v.GetBool("variable")
	}
	if v.IsSet("time_scale") {
		cfg.TimeScale = float32(v.GetFloat64("time_scale"))
	}
	if v.IsSet("seed") {
		cfg.Seed = v.GetInt64("seed")
	}
	if v.IsSet("stop_on_divergence") {
		cfg.StopOnDivergence = v.GetBool("stop_on_divergence")
	}
	if v.IsSet("log_level") {
		cfg.LogLevel = v.GetString("log_level")
	}
	if v.IsSet("data_dir") {
		cfg.DataDir = v.GetString("data_dir")
	}
	if v.IsSet("theme") {
		cfg.Theme = v.GetString("theme")
	}
	resolveBody(v, "upper", &cfg.Upper)
	resolveBody(v, "lower", &cfg.Lower)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveBody(v *viper.Viper, prefix string, b *BodyConfig) {
	key := func(name string) string { return prefix + "." + name }

	if v.IsSet(key("length")) {
		b.Length = float32(v.GetFloat64(key("length")))
	}
	if v.IsSet(key("mass")) {
		b.Mass = float32(v.GetFloat64(key("mass")))
	}
	if v.IsSet(key("angle")) {
		b.Angle = ptr(float32(v.GetFloat64(key("angle"))))
	}
	if v.IsSet(key("angular_velocity")) {
		b.AngularVelocity = ptr(float32(v.GetFloat64(key("angular_velocity"))))
	}
	if v.IsSet(key("color")) {
		b.Color = v.GetString(key("color"))
	}
}
