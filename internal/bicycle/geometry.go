package bicycle

import "math"

// turningRadii returns the front, rear and centre-of-mass turning radii for
// handlebar angle theta. A straight handlebar stands in for an infinite
// radius with infiniteRadius.
func turningRadii(p *Parameters, theta float64) (rf, rb, rcm float64) {
	if theta == 0 {
		return infiniteRadius, infiniteRadius, infiniteRadius
	}
	tan := math.Tan(theta)
	rf = p.L / math.Abs(math.Sin(theta))
	rb = p.L / math.Abs(tan)
	rcm = math.Sqrt((p.L-p.C)*(p.L-p.C) + p.L*p.L/(tan*tan))
	return rf, rb, rcm
}

// sweep is the signed extra angle a wheel turns through over one tick on a
// circle of the given radius. Past the arcsin domain the wheel sweeps a
// quarter turn.
func sweep(p *Parameters, radius, angle float64) float64 {
	temp := p.stride() / (2 * radius)
	if temp > 1 {
		return sign(angle) * math.Pi / 2
	}
	return sign(angle) * math.Asin(temp)
}

// advanceContacts moves both contact points one tick along headings derived
// from psi (the heading before this tick) and the already clamped theta.
func advanceContacts(p *Parameters, s *State, psi, rf, rb float64) {
	ds := p.stride()

	front := psi + s.Theta
	front += sweep(p, rf, front)
	s.XF += ds * -math.Sin(front)
	s.YF += ds * math.Cos(front)

	rear := psi + sweep(p, rb, psi)
	s.XB += ds * -math.Sin(rear)
	s.YB += ds * math.Cos(rear)
}

// correctWheelbase rescales the rear contact along the front-to-rear line so
// the wheelbase is L again. It fires only when the error exceeds
// DriftTolerance, and never on coincident contacts where the line is
// undefined.
func correctWheelbase(p *Parameters, s *State) bool {
	wb := s.Wheelbase()
	if wb == 0 || math.Abs(wb-p.L) <= DriftTolerance {
		return false
	}
	rel := p.L/wb - 1
	s.XB += (s.XB - s.XF) * rel
	s.YB += (s.YB - s.YF) * rel
	return true
}
