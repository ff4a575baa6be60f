package control

import "github.com/san-kum/bikesim/internal/dynamo"

// LQR is static state feedback u = -K(x - target) over the sensor vector.
// Row 0 of K gives torque, row 1 displacement.
type LQR struct {
	K      [][]float64
	Target dynamo.State
}

func NewLQR(k [][]float64, target dynamo.State) *LQR {
	return &LQR{K: k, Target: target}
}

func (l *LQR) Compute(x dynamo.State, t float64) dynamo.Control {
	u := make(dynamo.Control, 2)
	for i := range u {
		if i >= len(l.K) {
			break
		}
		for j := range x {
			if j < len(l.K[i]) {
				u[i] -= l.K[i][j] * (x[j] - l.Target.At(j))
			}
		}
	}
	u[0] = clip(u[0], TorqueBounds)
	u[1] = clip(u[1], DisplacementBounds)
	return u
}

// Gains over (theta, thetad, omega, omegad) linearized about upright at
// the default speed.
var bicycleGains = [][]float64{
	{10.0, 1.5, -30.0, -10.0},
	{0, 0, 0.05, 0.01},
}

func NewBicycleLQR() *LQR {
	return NewLQR(bicycleGains, dynamo.State{0, 0, 0, 0})
}
