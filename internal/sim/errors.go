package sim

import (
	"errors"
	"fmt"

	"github.com/jotingen/pendulum/internal/pendulum"
)

var (
	// ErrInvalidConfig indicates a run configuration that cannot be executed.
	ErrInvalidConfig = errors.New("sim: invalid config")

	// ErrDiverged indicates the state stopped being finite.
	ErrDiverged = errors.New("sim: state diverged (NaN or Inf detected)")
)

// DivergenceError reports the first step at which a body left the finite domain.
type DivergenceError struct {
	Step int
	Time float64
	Body pendulum.Role
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s body diverged", e.Step, e.Time, e.Body)
}

func (e *DivergenceError) Unwrap() error {
	return ErrDiverged
}
