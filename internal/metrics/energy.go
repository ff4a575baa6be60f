package metrics

import (
	"math"

	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/dynamo"
)

// RollEnergy is the mean roll energy about the contact line: rotational
// kinetic energy plus the potential lost by leaning, so upright at rest
// is zero and falling is negative potential.
type RollEnergy struct {
	name    string
	inertia float64
	weight  float64 // M·g·h
	samples int
	total   float64
}

func NewRollEnergy(p bicycle.Parameters) *RollEnergy {
	return &RollEnergy{
		name:    "roll_energy",
		inertia: p.Itot,
		weight:  p.M * p.Gravity * p.H,
	}
}

func (e *RollEnergy) Name() string { return e.name }

// At is the instantaneous roll energy of x.
func (e *RollEnergy) At(x dynamo.State) float64 {
	omega := x.At(bicycle.IdxOmega)
	omegad := x.At(bicycle.IdxOmegaDot)
	ke := 0.5 * e.inertia * omegad * omegad
	pe := e.weight * (math.Cos(omega) - 1)
	return ke + pe
}

func (e *RollEnergy) Observe(x dynamo.State, u dynamo.Control, t float64) {
	e.total += e.At(x)
	e.samples++
}

func (e *RollEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *RollEnergy) Reset() {
	e.total = 0
	e.samples = 0
}
