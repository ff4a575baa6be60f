package control

import "github.com/san-kum/bikesim/internal/dynamo"

// Manual passes the last set action to the bicycle. The live view drives
// it from the keyboard.
type Manual struct {
	U dynamo.Control
}

func NewManual() *Manual {
	return &Manual{U: make(dynamo.Control, 2)}
}

// SetAction stores a clipped (T, d).
func (c *Manual) SetAction(torque, displacement float64) {
	c.U[0] = clip(torque, TorqueBounds)
	c.U[1] = clip(displacement, DisplacementBounds)
}

// Nudge adds to the current action.
func (c *Manual) Nudge(dTorque, dDisplacement float64) {
	c.SetAction(c.U[0]+dTorque, c.U[1]+dDisplacement)
}

func (c *Manual) Compute(state dynamo.State, t float64) dynamo.Control {
	return c.U.Clone()
}

func (c *Manual) Reset() {
	c.U[0], c.U[1] = 0, 0
}
