package control

import (
	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/dynamo"
)

// Balance steers into the fall. The outer loop picks a handlebar angle
// from the roll angle and rate, the inner PD loop turns it into torque.
type Balance struct {
	RollGain float64 // handlebar angle per radian of roll
	RateGain float64 // handlebar angle per rad/s of roll rate
	SteerKp  float64
	SteerKd  float64
	LeanGain float64 // rider displacement per radian of roll
}

func NewBalance() *Balance {
	return &Balance{
		RollGain: 3,
		RateGain: 1,
		SteerKp:  10,
		SteerKd:  1.5,
	}
}

func (b *Balance) Compute(x dynamo.State, t float64) dynamo.Control {
	s := bicycle.FromSensors(x)

	want := b.RollGain*s.Omega + b.RateGain*s.OmegaDot
	want = clip(want, bicycle.SteerBounds())

	torque := b.SteerKp*(want-s.Theta) - b.SteerKd*s.ThetaDot
	lean := -b.LeanGain * s.Omega

	return dynamo.Control{clip(torque, TorqueBounds), clip(lean, DisplacementBounds)}
}
