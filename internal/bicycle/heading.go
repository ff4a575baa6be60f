package bicycle

import "math"

// heading is the angle of the rear-to-front vector measured from +y,
// positive toward -x. fallback is returned when the two points coincide.
func heading(xf, yf, xb, yb, fallback float64) float64 {
	dx := xb - xf
	dy := yf - yb
	if dx == 0 {
		switch {
		case dy < 0:
			return math.Pi
		case dy == 0:
			return fallback
		}
	}
	return math.Atan2(dx, dy)
}

// goalAngle is psi minus the bearing from the rear contact to the goal,
// wrapped to [-π, π].
func goalAngle(psi float64, goal Point, xb, yb, fallback float64) float64 {
	if goal.X == xb && goal.Y == yb {
		return fallback
	}
	return wrapAngle(psi - heading(goal.X, goal.Y, xb, yb, 0))
}

func wrapAngle(a float64) float64 {
	return math.Remainder(a, 2*math.Pi)
}
