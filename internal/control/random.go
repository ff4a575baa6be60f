package control

import (
	"math/rand/v2"

	"github.com/san-kum/bikesim/internal/dynamo"
	"gonum.org/v1/gonum/stat/distuv"
)

// Random samples torque and displacement uniformly within the actuator
// limits.
type Random struct {
	torque distuv.Uniform
	lean   distuv.Uniform
	seed   uint64
}

func NewRandom(seed uint64) *Random {
	r := &Random{seed: seed}
	r.Reset()
	return r
}

func (r *Random) Compute(x dynamo.State, t float64) dynamo.Control {
	return dynamo.Control{r.torque.Rand(), r.lean.Rand()}
}

// Reset rewinds the generator to its seed.
func (r *Random) Reset() {
	src := rand.NewPCG(r.seed, r.seed^0xda3e39cb94b95bdb)
	r.torque = distuv.Uniform{Min: TorqueBounds.Min, Max: TorqueBounds.Max, Src: src}
	r.lean = distuv.Uniform{Min: DisplacementBounds.Min, Max: DisplacementBounds.Max, Src: src}
}
