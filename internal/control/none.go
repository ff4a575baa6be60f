package control

import "github.com/san-kum/bikesim/internal/dynamo"

type None struct{}

func NewNone() *None {
	return &None{}
}

func (n *None) Compute(x dynamo.State, t float64) dynamo.Control {
	return dynamo.Control{0, 0}
}
