package susceptibility

import (
	"math"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dispsim/internal/grid"
)

var _ = Describe("NoisyLorentzian", func() {
	const dt = 0.1

	var (
		gv grid.Volume
		W  *grid.Fields
	)

	BeforeEach(func() {
		gv = mustVolume(grid.NewVolume2D(3, 3))
		W = grid.NewFields(gv, grid.Ex, grid.Ey)
	})

	step := func(n *NoisyLorentzian) *State {
		st := n.NewState(W, gv)
		n.InitState(W, dt, gv, st)
		Expect(n.Update(W, W, dt, gv, st)).To(Succeed())
		return st
	}

	It("scales the amplitude with 2π factors", func() {
		n := NewNoisyLorentzian(0.3, 1.5, 0.2, false, nil)
		g := 2 * math.Pi * 0.2
		want := 2 * math.Pi * 1.5 * 0.3 * math.Sqrt(g) * dt * dt / (1 + g*dt/2)
		Expect(n.Amplitude(dt)).To(BeNumerically("~", want, 1e-15))
		Expect(NewNoisyLorentzian(0.3, 1.5, 0, false, nil).Amplitude(dt)).To(Equal(0.0))
	})

	It("adds a gaussian kick weighted by the square root of the coefficient", func() {
		n := NewNoisyLorentzian(1, 1, 0.1, false, fixedSampler{norm: 1, unif: 0.75})
		s := uniform(gv, 4)
		Expect(n.SetSigma(grid.Ex, grid.X, s)).To(Succeed())
		st := step(n)

		amp := n.Amplitude(dt)
		for _, v := range ownedValues(gv, st.P(grid.Ex, 0)) {
			Expect(v).To(BeNumerically("~", amp*2, 1e-15))
		}
		Expect(ghostValues(gv, st.P(grid.Ex, 0))).To(HaveEach(0.0))
	})

	It("rescales uniform draws to the gaussian variance", func() {
		n := NewNoisyLorentzian(1, 1, 0.1, false, fixedSampler{norm: 1, unif: 0.75})
		n.Distribution = Uniform
		Expect(n.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
		st := step(n)

		want := 0.5 * math.Sqrt(3) * n.Amplitude(dt)
		Expect(st.P(grid.Ex, 0)[gv.Center()]).To(BeNumerically("~", want, 1e-15))
	})

	It("adds noise on top of the deterministic response", func() {
		W.Fill(grid.Ex, 1)
		n := NewNoisyLorentzian(0, 1, 0.1, false, fixedSampler{norm: 1})
		l := NewLorentzian(1, 0.1, false)
		Expect(n.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
		Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())

		st := step(n)
		lst := l.NewState(W, gv)
		l.InitState(W, dt, gv, lst)
		Expect(l.Update(W, W, dt, gv, lst)).To(Succeed())
		Expect(st.P(grid.Ex, 0)).To(Equal(lst.P(grid.Ex, 0)))
	})

	It("only drives components with a principal coefficient", func() {
		n := NewNoisyLorentzian(1, 1, 0.1, false, fixedSampler{norm: 1})
		Expect(n.SetSigma(grid.Ex, grid.Y, uniform(gv, 1))).To(Succeed())
		st := step(n)
		Expect(st.P(grid.Ex, 0)).NotTo(BeNil())
		Expect(st.P(grid.Ex, 0)).To(HaveEach(0.0))
	})

	It("reproduces a run with the same seed", func() {
		build := func() *NoisyLorentzian {
			n := NewNoisyLorentzian(1, 1, 0.1, false, rand.New(rand.NewPCG(7, 11)))
			Expect(n.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
			return n
		}
		a, b := build(), build()
		sa, sb := step(a), step(b)
		Expect(sa.P(grid.Ex, 0)).To(Equal(sb.P(grid.Ex, 0)))

		vals := ownedValues(gv, sa.P(grid.Ex, 0))
		Expect(vals[0]).NotTo(Equal(vals[1]))
	})

	It("clones with the parent's parameters and an independent sampler once set", func() {
		n := NewNoisyLorentzian(0.5, 1, 0.1, true, rand.New(rand.NewPCG(1, 2)))
		n.Distribution = Uniform
		Expect(n.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())

		c, ok := n.Clone().(*NoisyLorentzian)
		Expect(ok).To(BeTrue())
		Expect(c.ID()).To(Equal(n.ID()))
		Expect(c.NoiseAmp).To(Equal(0.5))
		Expect(c.Distribution).To(Equal(Uniform))
		Expect(c.NoOmega0Denominator).To(BeTrue())

		n.SetSampler(rand.New(rand.NewPCG(3, 4)))
		c.SetSampler(rand.New(rand.NewPCG(3, 4)))
		Expect(step(c).P(grid.Ex, 0)).To(Equal(step(n).P(grid.Ex, 0)))
	})

	It("dumps a six-value record", func() {
		resetIDs()
		n := NewNoisyLorentzian(0.25, 2, 0.5, true, nil)
		w := &memWriter{}
		start := 3
		Expect(n.DumpParams(w, &start)).To(Succeed())
		Expect(start).To(Equal(9))
		Expect(w.data[3:]).To(Equal([]float64{5, 0, 0.25, 2, 0.5, 1}))
	})

	It("parses distribution names", func() {
		d, err := ParseDistribution("Uniform")
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(Equal(Uniform))
		d, err = ParseDistribution("")
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(Equal(Gaussian))
		_, err = ParseDistribution("poisson")
		Expect(err).To(HaveOccurred())
	})
})
