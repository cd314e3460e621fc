package pendulum

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"math/rand"
)

// Ranges used by NewBody for randomized parameters. Upper bounds are exclusive.
const (
	MinLength = 50.0
	MaxLength = 200.0
	MinMass   = 10.0
	MaxMass   = 50.0
)

// White is the default body colour.
var White = color.RGBA{R: 255, G: 255, B: 255, A: 255}

var (
	ErrNonPositiveLength = errors.New("pendulum: length must be positive")
	ErrNonPositiveMass   = errors.New("pendulum: mass must be positive")
)

// Body is one rigid rod with a point mass at its free end.
//
// AngularAcceleration is transient: System.Step overwrites it before
// integrating, so its value between steps is only the last computed one.
type Body struct {
	Length              float32
	Angle               float32
	AngularVelocity     float32
	AngularAcceleration float32
	Mass                float32
	Color               color.RGBA
}

// NewBody returns a body at rest with length in [50, 200), angle in
// [0, 2π) and mass in [10, 50), drawn from rng.
func NewBody(rng *rand.Rand) Body {
	return Body{
		Length: uniform(rng, MinLength, MaxLength),
		Angle:  uniform(rng, 0, 2*math.Pi),
		Mass:   uniform(rng, MinMass, MaxMass),
		Color:  White,
	}
}

func (b Body) WithLength(length float32) Body {
	b.Length = length
	return b
}

func (b Body) WithAngle(angle float32) Body {
	b.Angle = angle
	return b
}

func (b Body) WithMass(mass float32) Body {
	b.Mass = mass
	return b
}

func (b Body) WithColor(c color.RGBA) Body {
	b.Color = c
	return b
}

func (b Body) WithAngularVelocity(omega float32) Body {
	b.AngularVelocity = omega
	return b
}

// EndPoint returns the position of the free end when the rod hangs from anchor.
func (b Body) EndPoint(anchor Vec2) Vec2 {
	s, c := math.Sincos(float64(b.Angle))
	l := float64(b.Length)
	return Vec2{
		X: anchor.X + float32(l*s),
		Y: anchor.Y + float32(l*c),
	}
}

// Integrate advances the body by dt using the acceleration computed for this
// step. Velocity is updated first and the new velocity moves the angle.
func (b *Body) Integrate(dt float32) {
	b.AngularVelocity += b.AngularAcceleration * dt
	b.Angle += b.AngularVelocity * dt
}

// Validate reports whether the body can take part in a well-defined step.
func (b Body) Validate() error {
	var errs []error
	if !(b.Length > 0) {
		errs = append(errs, fmt.Errorf("%w: got %v", ErrNonPositiveLength, b.Length))
	}
	if !(b.Mass > 0) {
		errs = append(errs, fmt.Errorf("%w: got %v", ErrNonPositiveMass, b.Mass))
	}
	return errors.Join(errs...)
}

// IsFinite reports whether every kinematic quantity is a finite number.
func (b Body) IsFinite() bool {
	return finite32(b.Angle) && finite32(b.AngularVelocity) && finite32(b.AngularAcceleration)
}

// BodyConfig is the named-field alternative to chaining With* setters.
// Zero Length or Mass means "keep the randomized value"; Angle and
// AngularVelocity are pointers so an explicit zero can be requested.
type BodyConfig struct {
	Length          float32
	Mass            float32
	Angle           *float32
	AngularVelocity *float32
	Color           *color.RGBA
}

// Apply overlays the configured fields on b.
func (c BodyConfig) Apply(b Body) Body {
	if c.Length != 0 {
		b = b.WithLength(c.Length)
	}
	if c.Mass != 0 {
		b = b.WithMass(c.Mass)
	}
	if c.Angle != nil {
		b = b.WithAngle(*c.Angle)
	}
	if c.AngularVelocity != nil {
		b = b.WithAngularVelocity(*c.AngularVelocity)
	}
	if c.Color != nil {
		b = b.WithColor(*c.Color)
	}
	return b
}

func uniform(rng *rand.Rand, lo, hi float64) float32 {
	for {
		v := float32(lo + rng.Float64()*(hi-lo))
		if v < float32(hi) {
			return v
		}
	}
}
