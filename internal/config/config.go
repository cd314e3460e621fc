package config

import (
	"errors"
	"fmt"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jotingen/pendulum/internal/pendulum"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/jotingen/pendulum/internal/sim"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSteps     = 1500
	DefaultTimeScale = 1.0
	DefaultLogLevel  = "info"
	DefaultTheme     = "cyberpunk"
	DefaultDataDir   = "runs"
)

var (
	ErrInvalidBody   = errors.New("config: invalid body")
	ErrInvalidConfig = errors.New("config: invalid config")
)

type Config struct {
	Dt               float32    `yaml:"dt"`
	Steps            int        `yaml:"steps"`
	Variable         bool       `yaml:"variable"`
	TimeScale        float32    `yaml:"time_scale"`
	Seed             int64      `yaml:"seed"`
	StopOnDivergence bool       `yaml:"stop_on_divergence"`
	Upper            BodyConfig `yaml:"upper"`
	Lower            BodyConfig `yaml:"lower"`
	LogLevel         string     `yaml:"log_level"`
	DataDir          string     `yaml:"data_dir"`
	Theme            string     `yaml:"theme"`
}

// BodyConfig overrides the randomized parameters of one body. Zero length
// or mass keeps the random draw; nil angle or velocity does the same.
type BodyConfig struct {
	Length          float32  `yaml:"length,omitempty"`
	Mass            float32  `yaml:"mass,omitempty"`
	Angle           *float32 `yaml:"angle,omitempty"`
	AngularVelocity *float32 `yaml:"angular_velocity,omitempty"`
	Color           string   `yaml:"color,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Dt:        pendulum.DefaultDt,
		Steps:     DefaultSteps,
		TimeScale: DefaultTimeScale,
		LogLevel:  DefaultLogLevel,
		DataDir:   DefaultDataDir,
		Theme:     DefaultTheme,
	}
}

func Load(path string) (*Config, error) {
	return loadOver(DefaultConfig(), path)
}

// loadOver decodes the file at path on top of a copy of base.
func loadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Upper = c.Upper.clone()
	out.Lower = c.Lower.clone()
	return &out
}

func (b BodyConfig) clone() BodyConfig {
	if b.Angle != nil {
		b.Angle = ptr(*b.Angle)
	}
	if b.AngularVelocity != nil {
		b.AngularVelocity = ptr(*b.AngularVelocity)
	}
	return b
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run parameters and both body overrides.
func (c *Config) Validate() error {
	var errs []error
	if !(c.Dt > 0) {
		errs = append(errs, fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidConfig, c.Dt))
	}
	if c.Steps <= 0 {
		errs = append(errs, fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, c.Steps))
	}
	if c.Variable && !(c.TimeScale > 0) {
		errs = append(errs, fmt.Errorf("%w: time_scale must be positive", ErrInvalidConfig))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%w: log_level: %v", ErrInvalidConfig, err))
	}
	for _, bc := range []struct {
		role pendulum.Role
		body BodyConfig
	}{{pendulum.Upper, c.Upper}, {pendulum.Lower, c.Lower}} {
		if err := bc.body.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrInvalidBody, bc.role, err))
		}
	}
	return errors.Join(errs...)
}

func (b BodyConfig) validate() error {
	var errs []error
	if b.Length < 0 {
		errs = append(errs, fmt.Errorf("%w: got %v", pendulum.ErrNonPositiveLength, b.Length))
	}
	if b.Mass < 0 {
		errs = append(errs, fmt.Errorf("%w: got %v", pendulum.ErrNonPositiveMass, b.Mass))
	}
	if b.Color != "" {
		if _, err := ParseColor(b.Color); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Pendulum converts the override into the core's representation.
func (b BodyConfig) Pendulum() (pendulum.BodyConfig, error) {
	out := pendulum.BodyConfig{
		Length:          b.Length,
		Mass:            b.Mass,
		Angle:           b.Angle,
		AngularVelocity: b.AngularVelocity,
	}
	if b.Color != "" {
		c, err := ParseColor(b.Color)
		if err != nil {
			return out, err
		}
		out.Color = &c
	}
	return out, nil
}

// EffectiveSeed returns Seed, or a time-derived seed when Seed is zero.
func (c *Config) EffectiveSeed() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}

// NewSystem draws two random bodies from seed and applies the overrides.
func (c *Config) NewSystem(seed int64) (*pendulum.System, error) {
	rng := rand.New(rand.NewSource(seed))
	bodies := [2]pendulum.Body{pendulum.NewBody(rng), pendulum.NewBody(rng)}

	for i, bc := range []BodyConfig{c.Upper, c.Lower} {
		pc, err := bc.Pendulum()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidBody, pendulum.Role(i), err)
		}
		bodies[i] = pc.Apply(bodies[i])
		if err := bodies[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidBody, pendulum.Role(i), err)
		}
	}
	return pendulum.NewSystem(bodies[0], bodies[1]), nil
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:               c.Dt,
		Steps:            c.Steps,
		Variable:         c.Variable,
		TimeScale:        c.TimeScale,
		StopOnDivergence: c.StopOnDivergence,
		RecordEvery:      1,
	}
}

var namedColors = map[string]color.RGBA{
	"white":   pendulum.White,
	"red":     {R: 255, A: 255},
	"green":   {G: 255, A: 255},
	"blue":    {B: 255, A: 255},
	"yellow":  {R: 255, G: 255, A: 255},
	"cyan":    {G: 255, B: 255, A: 255},
	"magenta": {R: 255, B: 255, A: 255},
	"orange":  {R: 255, G: 165, A: 255},
}

// ParseColor accepts a colour name, #rrggbb or #rrggbbaa.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	c, err := colorful.Hex("#" + hex[:6])
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	alpha := uint64(0xff)
	if len(hex) == 8 {
		if alpha, err = strconv.ParseUint(hex[6:], 16, 8); err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: uint8(alpha)}, nil
}

func ptr(v float32) *float32 { return &v }
