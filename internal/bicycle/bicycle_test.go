package bicycle_test

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bikesim/internal/bicycle"
	"github.com/san-kum/bikesim/internal/dynamo"
)

func randomAction(rng *rand.Rand) bicycle.Action {
	return bicycle.Action{
		Torque:       (rng.Float64()*2 - 1) * 2,
		Displacement: (rng.Float64()*2 - 1) * 0.02,
	}
}

func mustNew(opts bicycle.Options) *bicycle.Bicycle {
	b, err := bicycle.New(opts)
	Expect(err).NotTo(HaveOccurred())
	return b
}

var _ = Describe("Bicycle", func() {
	L := bicycle.DefaultConstants().L

	Describe("construction", func() {
		It("rejects a non-positive wheelbase", func() {
			c := bicycle.DefaultConstants()
			c.L = -1
			_, err := bicycle.New(bicycle.Options{Constants: c})
			Expect(err).To(MatchError(dynamo.ErrParameterBounds))
		})

		It("rejects a non-finite goal", func() {
			_, err := bicycle.New(bicycle.Options{Goal: &bicycle.Point{X: math.NaN(), Y: 1}})
			Expect(err).To(MatchError(dynamo.ErrParameterBounds))
		})

		It("rejects a negative init spread", func() {
			_, err := bicycle.New(bicycle.Options{Randomize: true, InitSpread: -0.1})
			Expect(err).To(MatchError(dynamo.ErrParameterBounds))
		})

		It("copies the goal so later edits do not leak in", func() {
			g := &bicycle.Point{X: 3, Y: 4}
			b := mustNew(bicycle.Options{Goal: g})
			g.X = 100
			got, ok := b.Goal()
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(bicycle.Point{X: 3, Y: 4}))
		})
	})

	Describe("deterministic reset", func() {
		It("reproduces the equilibrium vector", func() {
			b := mustNew(bicycle.Options{})
			b.Step(bicycle.Action{Torque: 1})
			b.Reset()
			Expect(b.Sensors()).To(Equal(dynamo.State{0, 0, 0, 0, 0, 0, L, 0, 0, 0}))
		})

		It("adds psig when a goal is configured", func() {
			b := mustNew(bicycle.Options{Goal: &bicycle.Point{X: 0, Y: 1000}})
			x := b.Sensors()
			Expect(x).To(HaveLen(bicycle.GoalSensorDim))
			Expect(x[bicycle.IdxPsiG]).To(BeNumerically("~", 0, 1e-12))
		})

		It("measures psig toward an off-axis goal", func() {
			b := mustNew(bicycle.Options{Goal: &bicycle.Point{X: -10, Y: 10}})
			Expect(b.PsiG()).To(BeNumerically("~", -math.Pi/4, 1e-12))
		})
	})

	Describe("randomized reset", func() {
		It("always places the contacts exactly one wheelbase apart", func() {
			b := mustNew(bicycle.Options{Randomize: true, Seed: 11})
			for i := 0; i < 500; i++ {
				s := b.Reset()
				Expect(s.Wheelbase()).To(BeNumerically("~", L, 1e-12))
				Expect(math.Abs(s.XF)).To(BeNumerically("<=", 0.5*L))
				Expect(s.YF).To(BeNumerically(">", 0))
				Expect(s.XB).To(BeZero())
				Expect(s.YB).To(BeZero())
				Expect(s.ThetaDot).To(BeZero())
				Expect(s.OmegaDot).To(BeZero())
				Expect(s.OmegaDDot).To(BeZero())
			}
		})

		It("keeps the perturbation near equilibrium", func() {
			b := mustNew(bicycle.Options{Randomize: true, Seed: 5})
			var sum float64
			n := 2000
			for i := 0; i < n; i++ {
				s := b.Reset()
				sum += s.Omega * s.Omega
			}
			std := math.Sqrt(sum / float64(n))
			Expect(std).To(BeNumerically("~", bicycle.DefaultInitSpread, 0.2*bicycle.DefaultInitSpread))
		})

		It("is reproducible from the seed", func() {
			a := mustNew(bicycle.Options{Randomize: true, Seed: 99})
			b := mustNew(bicycle.Options{Randomize: true, Seed: 99})
			c := mustNew(bicycle.Options{Randomize: true, Seed: 100})
			Expect(a.Sensors()).To(Equal(b.Sensors()))
			Expect(a.Sensors()).NotTo(Equal(c.Sensors()))
		})
	})

	Describe("step", func() {
		It("keeps the upright equilibrium a fixed point without input", func() {
			b := mustNew(bicycle.Options{})
			s, err := b.Step(bicycle.Action{})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.OmegaDDot).To(BeZero())
			Expect(b.LastDerivatives().ThetaDDot).To(BeZero())
			Expect(s.Theta).To(BeZero())
			Expect(s.Omega).To(BeZero())
			Expect(s.Psi).To(BeZero())
		})

		It("rides a straight line at the nominal velocity", func() {
			b := mustNew(bicycle.Options{})
			p := b.Params()
			for i := 0; i < 100; i++ {
				_, err := b.Step(bicycle.Action{})
				Expect(err).NotTo(HaveOccurred())
			}
			s := b.State()
			travelled := 100 * p.Velocity * p.TimeStep
			Expect(s.XF).To(BeZero())
			Expect(s.YB).To(BeNumerically("~", travelled, 1e-9))
			Expect(s.YF).To(BeNumerically("~", L+travelled, 1e-9))
			Expect(b.Time()).To(BeNumerically("~", 100*p.TimeStep, 1e-12))
		})

		DescribeTable("clamps the handlebar exactly at the limit",
			func(torque, want float64) {
				b := mustNew(bicycle.Options{})
				s, err := b.Step(bicycle.Action{Torque: torque})
				Expect(err).NotTo(HaveOccurred())
				Expect(s.Theta).To(Equal(want))

				s, _ = b.Step(bicycle.Action{Torque: torque})
				Expect(s.Theta).To(Equal(want))
			},
			Entry("full right", 1e6, bicycle.MaxHandlebar),
			Entry("full left", -1e6, -bicycle.MaxHandlebar),
		)

		It("rejects non-finite actions without touching the state", func() {
			b := mustNew(bicycle.Options{Randomize: true, Seed: 3, Record: true})
			before := b.Sensors()
			for _, a := range []bicycle.Action{
				{Torque: math.NaN()},
				{Displacement: math.Inf(1)},
				{Torque: math.Inf(-1), Displacement: math.NaN()},
			} {
				_, err := b.Step(a)
				Expect(err).To(MatchError(dynamo.ErrInvalidAction))
				var ae *dynamo.ActionError
				Expect(err).To(BeAssignableToTypeOf(ae))
			}
			Expect(b.Sensors()).To(Equal(before))
			Expect(b.Steps()).To(BeZero())
			Expect(b.Trajectory().Len()).To(BeZero())
		})

		It("remembers where the last step started", func() {
			b := mustNew(bicycle.Options{Randomize: true, Seed: 8, Goal: &bicycle.Point{X: 5, Y: 50}})
			start := b.State()
			b.Step(bicycle.Action{Torque: 0.5})
			prev := b.Previous()
			Expect(prev.XF).To(Equal(start.XF))
			Expect(prev.YF).To(Equal(start.YF))
			Expect(prev.Omega).To(Equal(start.Omega))
			Expect(prev.PsiG).To(Equal(start.PsiG))
		})

		It("pushes the sensor vector to observers", func() {
			b := mustNew(bicycle.Options{})
			var got []dynamo.State
			var times []float64
			b.AddObserver(dynamo.ObserverFunc(func(x dynamo.State, u dynamo.Control, t float64) {
				got = append(got, x)
				times = append(times, t)
				Expect(u).To(Equal(dynamo.Control{0.1, 0.01}))
			}))
			for i := 0; i < 3; i++ {
				b.Step(bicycle.Action{Torque: 0.1, Displacement: 0.01})
			}
			Expect(got).To(HaveLen(3))
			Expect(got[2]).To(Equal(b.Sensors()))
			Expect(times[0]).To(BeNumerically("~", b.Params().TimeStep, 1e-15))
		})
	})

	Describe("invariants under random control", func() {
		var (
			b   *bicycle.Bicycle
			rng *rand.Rand
		)

		BeforeEach(func() {
			b = mustNew(bicycle.Options{Randomize: true, Seed: 21, Goal: &bicycle.Point{X: 20, Y: 80}})
			rng = rand.New(rand.NewPCG(4, 2))
		})

		It("never produces a non-finite field", func() {
			for i := 0; i < 3000; i++ {
				s, err := b.Step(randomAction(rng))
				Expect(err).NotTo(HaveOccurred())
				Expect(s.IsValid()).To(BeTrue(), "step %d: %+v", i, s)
			}
		})

		It("holds the handlebar clamp and the wheelbase tolerance", func() {
			for i := 0; i < 3000; i++ {
				s, _ := b.Step(randomAction(rng))
				Expect(math.Abs(s.Theta)).To(BeNumerically("<=", bicycle.MaxHandlebar))
				Expect(math.Abs(s.Wheelbase() - L)).To(BeNumerically("<=", bicycle.DriftTolerance+1e-9))
			}
		})

		It("keeps psig a wrapped angle", func() {
			for i := 0; i < 3000; i++ {
				s, _ := b.Step(randomAction(rng))
				Expect(s.PsiG).To(BeNumerically(">=", -math.Pi))
				Expect(s.PsiG).To(BeNumerically("<=", math.Pi))
			}
		})
	})

	Describe("determinism", func() {
		run := func(seed uint64) []dynamo.State {
			b := mustNew(bicycle.Options{Randomize: true, Seed: seed, Goal: &bicycle.Point{X: 0, Y: 100}})
			rng := rand.New(rand.NewPCG(seed, 1))
			out := []dynamo.State{b.Sensors()}
			for i := 0; i < 500; i++ {
				b.Step(randomAction(rng))
				out = append(out, b.Sensors())
			}
			return out
		}

		It("produces bit-identical trajectories for identical inputs", func() {
			Expect(cmp.Diff(run(42), run(42))).To(BeEmpty())
		})

		It("diverges for a different seed", func() {
			Expect(cmp.Diff(run(42), run(43))).NotTo(BeEmpty())
		})
	})

	Describe("trajectory recording", func() {
		It("stays empty until a step runs", func() {
			b := mustNew(bicycle.Options{Record: true})
			Expect(slices.Collect(b.FrontX())).To(BeEmpty())
		})

		It("records the contacts each step starts from", func() {
			b := mustNew(bicycle.Options{Record: true, Randomize: true, Seed: 2})
			start := b.State()
			for i := 0; i < 4; i++ {
				b.Step(bicycle.Action{Torque: 0.2})
			}
			xf := slices.Collect(b.FrontX())
			yb := slices.Collect(b.RearY())
			Expect(xf).To(HaveLen(4))
			Expect(xf[0]).To(Equal(start.XF))
			Expect(yb[0]).To(Equal(start.YB))
			Expect(slices.Collect(b.RearX())).To(HaveLen(4))
			Expect(slices.Collect(b.FrontY())).To(HaveLen(4))
		})

		It("hands out restartable, finite sequences", func() {
			b := mustNew(bicycle.Options{Record: true})
			for i := 0; i < 3; i++ {
				b.Step(bicycle.Action{})
			}
			seq := b.RearY()
			first := slices.Collect(seq)
			b.Step(bicycle.Action{})
			Expect(slices.Collect(seq)).To(Equal(first))
			Expect(slices.Collect(b.RearY())).To(HaveLen(4))
		})

		It("records nothing while disabled and can be switched on", func() {
			b := mustNew(bicycle.Options{})
			b.Step(bicycle.Action{})
			Expect(b.Trajectory().Len()).To(BeZero())
			b.SetRecording(true)
			b.Step(bicycle.Action{})
			Expect(b.Trajectory().Len()).To(Equal(1))
		})

		It("is cleared by reset", func() {
			b := mustNew(bicycle.Options{Record: true})
			b.Step(bicycle.Action{})
			old := b.FrontY()
			b.Reset()
			Expect(b.Trajectory().Len()).To(BeZero())
			Expect(slices.Collect(old)).To(HaveLen(1))
		})
	})
})

var _ = Describe("Advance", func() {
	var p bicycle.Parameters

	BeforeEach(func() {
		var err error
		p, err = bicycle.NewParameters(bicycle.DefaultConstants())
		Expect(err).NotTo(HaveOccurred())
	})

	It("ignores the incoming roll acceleration", func() {
		s := bicycle.State{Theta: 0.1, ThetaDot: 0.2, Omega: 0.05, OmegaDot: -0.1, YF: p.L}
		a := bicycle.Action{Torque: 0.3, Displacement: 0.01}
		clean, _ := bicycle.Advance(p, s, a, nil)
		s.OmegaDDot = 1234
		dirty, _ := bicycle.Advance(p, s, a, nil)
		Expect(dirty).To(Equal(clean))
	})

	It("integrates omega with the freshly updated omegad", func() {
		s := bicycle.State{Theta: 0.1, ThetaDot: 0.2, Omega: 0.05, OmegaDot: -0.1, YF: p.L}
		next, d := bicycle.Advance(p, s, bicycle.Action{Torque: 0.3}, nil)

		omegad := s.OmegaDot + d.OmegaDDot*p.TimeStep
		thetad := s.ThetaDot + d.ThetaDDot*p.TimeStep
		Expect(next.OmegaDot).To(Equal(omegad))
		Expect(next.Omega).To(Equal(s.Omega + omegad*p.TimeStep))
		Expect(next.ThetaDot).To(Equal(thetad))
		Expect(next.Theta).To(Equal(s.Theta + thetad*p.TimeStep))
	})

	It("leans the bicycle toward the side the rider shifts to", func() {
		s := bicycle.State{YF: p.L}
		next, d := bicycle.Advance(p, s, bicycle.Action{Displacement: 0.02}, nil)
		Expect(d.Phi).To(BeNumerically(">", 0))
		Expect(d.OmegaDDot).To(BeNumerically(">", 0))
		Expect(next.Omega).To(BeNumerically(">", 0))
	})

	It("leaves psig alone without a goal", func() {
		s := bicycle.State{YF: p.L, PsiG: 0.7}
		next, _ := bicycle.Advance(p, s, bicycle.Action{}, nil)
		Expect(next.PsiG).To(Equal(0.7))
	})
})
