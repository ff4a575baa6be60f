package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf entries.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrInvalidAction indicates a non-finite handlebar torque or lean displacement.
	ErrInvalidAction = errors.New("dynamo: invalid action (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrDimensionMismatch indicates mismatched state/control dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// ActionError reports an action rejected at the step boundary.
type ActionError struct {
	Step         int
	Torque       float64
	Displacement float64
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%v: step %d (T=%g, d=%g)", ErrInvalidAction, e.Step, e.Torque, e.Displacement)
}

func (e *ActionError) Unwrap() error {
	return ErrInvalidAction
}

// SimError records a failure observed by the simulation harness.
type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error {
	return ErrInvalidState
}
