package control

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Actuator limits of the rider.
var (
	TorqueBounds       = r1.Interval{Min: -2, Max: 2}
	DisplacementBounds = r1.Interval{Min: -0.02, Max: 0.02}
)

func clip(x float64, iv r1.Interval) float64 {
	return math.Max(iv.Min, math.Min(iv.Max, x))
}
