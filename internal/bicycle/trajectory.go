package bicycle

import (
	"iter"
	"slices"
)

// Trajectory is the wheel-contact history, one entry per recorded step.
type Trajectory struct {
	xf, yf, xb, yb []float64
}

func (t *Trajectory) append(s State) {
	t.xf = append(t.xf, s.XF)
	t.yf = append(t.yf, s.YF)
	t.xb = append(t.xb, s.XB)
	t.yb = append(t.yb, s.YB)
}

// clear drops the buffers instead of truncating them so sequences handed
// out earlier keep their values.
func (t *Trajectory) clear() {
	t.xf, t.yf, t.xb, t.yb = nil, nil, nil, nil
}

func (t *Trajectory) Len() int { return len(t.xf) }

// Each sequence is finite (fixed at the length when requested) and can be
// ranged over any number of times.
func (t *Trajectory) FrontX() iter.Seq[float64] { return slices.Values(t.xf) }
func (t *Trajectory) FrontY() iter.Seq[float64] { return slices.Values(t.yf) }
func (t *Trajectory) RearX() iter.Seq[float64]  { return slices.Values(t.xb) }
func (t *Trajectory) RearY() iter.Seq[float64]  { return slices.Values(t.yb) }

// Front and Rear copy the history out as points.
func (t *Trajectory) Front() []Point { return zipPoints(t.xf, t.yf) }
func (t *Trajectory) Rear() []Point  { return zipPoints(t.xb, t.yb) }

func zipPoints(xs, ys []float64) []Point {
	pts := make([]Point, len(xs))
	for i := range xs {
		pts[i] = Point{X: xs[i], Y: ys[i]}
	}
	return pts
}
