package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/dynamo"
)

// Config bounds a run. Steps wins over Duration when both are set.
type Config struct {
	Steps         int
	Duration      float64
	ValidateState bool
	// Reset starts the run from a fresh reset instead of the bike's current
	// state.
	Reset bool
}

func (c Config) steps(dt float64) (int, error) {
	switch {
	case c.Steps < 0:
		return 0, fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrParameterBounds, c.Steps)
	case c.Steps > 0:
		return c.Steps, nil
	case c.Duration > 0 && !math.IsInf(c.Duration, 0):
		return int(math.Round(c.Duration / dt)), nil
	}
	return 0, fmt.Errorf("%w: duration must be positive, got %f", dynamo.ErrParameterBounds, c.Duration)
}

// Track is the recorded wheel-contact history of a run.
type Track struct {
	Front []bicycle.Point
	Rear  []bicycle.Point
}

type Result struct {
	States     []dynamo.State
	Controls   []dynamo.Control
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Trajectory Track
	Errors     []error
}

// Final returns the last recorded state, nil for an empty result.
func (r *Result) Final() dynamo.State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}
