package dynamo

import "math"

// State is a read-only snapshot of a sensor vector. Holders must Clone
// before mutating.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// At returns s[i], or 0 when i is out of range.
func (s State) At(i int) float64 {
	if i < 0 || i >= len(s) {
		return 0
	}
	return s[i]
}

type Control []float64

func (c Control) Clone() Control {
	out := make(Control, len(c))
	copy(out, c)
	return out
}

type Controller interface {
	Compute(x State, t float64) Control
}

type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, u Control, t float64)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(x State, u Control, t float64)

func (f ObserverFunc) OnStep(x State, u Control, t float64) { f(x, u, t) }

// Resetter is implemented by controllers that carry episode state.
type Resetter interface {
	Reset()
}
