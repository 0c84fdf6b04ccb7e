package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrDiverged indicates the probe went NaN or Inf.
	ErrDiverged = errors.New("sim: polarization diverged")

	ErrInvalidConfig = errors.New("sim: invalid config")

	// ErrNoDrive indicates a simulator without a source waveform.
	ErrNoDrive = errors.New("sim: no drive waveform")
)

// SimulationError wraps a failure with the step at which it happened.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
