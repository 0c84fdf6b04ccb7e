package susceptibility

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dispsim/internal/grid"
)

type failingWriter struct{}

func (failingWriter) WriteChunk(int, []float64) error { return errors.New("disk full") }

var _ = Describe("parameter records", func() {
	var m Material

	BeforeEach(func() {
		resetIDs()
		m = Material{
			NewLorentzian(1, 0.1, false),
			NewNoisyLorentzian(0.2, 0.5, 0.05, true, nil),
			NewGyrotropic([3]float64{0, 0, 1}, 0.3, 1.5, 0.02),
		}
	})

	It("concatenates the records of every term", func() {
		w := &memWriter{}
		start := 0
		Expect(m.DumpParams(w, &start)).To(Succeed())
		Expect(start).To(Equal(5 + 6 + 9))
		Expect(w.data[:5]).To(Equal([]float64{4, 0, 1, 0.1, 0}))
		Expect(w.data[5:11]).To(Equal([]float64{5, 1, 0.2, 0.5, 0.05, 1}))
		Expect(w.data[11]).To(Equal(8.0))
		Expect(w.data[12]).To(Equal(2.0))
	})

	It("decodes what it wrote", func() {
		w := &memWriter{}
		start := 0
		Expect(m.DumpParams(w, &start)).To(Succeed())

		recs, err := DecodeParams(w.data)
		Expect(err).NotTo(HaveOccurred())
		Expect(recs).To(HaveLen(3))

		Expect(recs[0]).To(Equal(ParamRecord{Kind: KindLorentzian, ID: 0, Omega0: 1, Gamma: 0.1}))
		Expect(recs[1]).To(Equal(ParamRecord{
			Kind: KindNoisyLorentzian, ID: 1, NoiseAmp: 0.2, Omega0: 0.5, Gamma: 0.05, NoOmega0Denominator: true,
		}))
		Expect(recs[2].Kind).To(Equal(KindGyrotropic))
		Expect(recs[2].Bias).To(Equal([3]float64{0, 0, 1}))
		Expect(recs[2].Alpha).To(Equal(0.3))
		Expect(recs[2].Omega0).To(Equal(1.5))
	})

	It("rebuilds responses from records", func() {
		w := &memWriter{}
		start := 0
		Expect(m.DumpParams(w, &start)).To(Succeed())
		recs, err := DecodeParams(w.data)
		Expect(err).NotTo(HaveOccurred())

		for i, rec := range recs {
			r, err := rec.Response(fixedSampler{})
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Kind()).To(Equal(m[i].Kind()))
			Expect(r.ID()).To(Equal(m[i].ID()))

			again := &memWriter{}
			pos := 0
			Expect(r.DumpParams(again, &pos)).To(Succeed())
			orig := &memWriter{}
			pos = 0
			Expect(m[i].DumpParams(orig, &pos)).To(Succeed())
			Expect(again.data).To(Equal(orig.data))
		}

		_, err = ParamRecord{Kind: 3}.Response(nil)
		Expect(err).To(MatchError(ErrBadRecord))
	})

	DescribeTable("rejects malformed streams",
		func(data []float64) {
			_, err := DecodeParams(data)
			Expect(err).To(MatchError(ErrBadRecord))
		},
		Entry("unknown tag", []float64{7, 0, 0, 0, 0}),
		Entry("fractional tag", []float64{4.5, 0, 0, 0, 0}),
		Entry("truncated record", []float64{4, 0, 1, 0.1}),
		Entry("truncated second record", []float64{4, 0, 1, 0.1, 0, 8, 1}),
	)

	It("accepts an empty stream", func() {
		recs, err := DecodeParams(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(recs).To(BeEmpty())
	})

	It("stops at the first failed write", func() {
		start := 4
		err := m.DumpParams(failingWriter{}, &start)
		Expect(err).To(MatchError(ContainSubstring("disk full")))
		Expect(start).To(Equal(4))
	})

	It("names kinds", func() {
		Expect(KindLorentzian.String()).To(Equal("lorentzian"))
		Expect(KindNoisyLorentzian.String()).To(Equal("noisy_lorentzian"))
		Expect(KindGyrotropic.String()).To(Equal("gyrotropic"))
		Expect(Kind(9).RecordLen()).To(Equal(0))
	})
})

var _ = Describe("Material", func() {
	const dt = 0.05

	var (
		gv grid.Volume
		W  *grid.Fields
	)

	BeforeEach(func() {
		gv = mustVolume(grid.NewVolume1D(8))
		W = grid.NewFields(gv, grid.Ex)
		W.Fill(grid.Ex, 1)
	})

	It("sums the polarization of every term", func() {
		a, b := NewLorentzian(1, 0.1, false), NewLorentzian(0.5, 0.2, false)
		Expect(a.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
		Expect(b.SetSigma(grid.Ex, grid.X, uniform(gv, 2))).To(Succeed())
		m := Material{a, b}
		Expect(m.NeedsP(grid.Ex, 0, W)).To(BeTrue())
		Expect(m.NeedsP(grid.Ey, 0, W)).To(BeFalse())

		states := m.NewStates(W, dt, gv)
		Expect(states).To(HaveLen(2))
		Expect(m.Update(W, W, dt, gv, states)).To(Succeed())

		i := gv.Center()
		sum := states[0].P(grid.Ex, 0)[i] + states[1].P(grid.Ex, 0)[i]
		Expect(m.Polarization(states, grid.Ex, 0, i)).To(Equal(sum))

		F := grid.NewFields(gv, grid.Dx)
		m.SubtractP(grid.E, F, states)
		Expect(F[grid.Dx][0][i]).To(BeNumerically("~", -sum, 1e-15))
	})

	It("copies and releases every state", func() {
		a := NewLorentzian(1, 0.1, false)
		Expect(a.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
		m := Material{a}
		states := m.NewStates(W, dt, gv)
		Expect(m.Update(W, W, dt, gv, states)).To(Succeed())

		cp := m.CopyStates(states)
		Expect(cp[0].P(grid.Ex, 0)).To(Equal(states[0].P(grid.Ex, 0)))
		m.ReleaseStates(states)
		Expect(states[0].Released()).To(BeTrue())
		Expect(cp[0].Released()).To(BeFalse())
	})

	It("labels the failing term", func() {
		cyl := mustVolume(grid.NewVolumeCyl(2, 2))
		Wc := grid.NewFields(cyl, grid.Ez)
		l := NewLorentzian(1, 0, false)
		g := NewGyrotropic([3]float64{0, 0, 1}, 0, 1, 0)
		Expect(l.SetSigma(grid.Ez, grid.Z, uniform(cyl, 1))).To(Succeed())
		Expect(g.SetSigma(grid.Ez, grid.Z, uniform(cyl, 1))).To(Succeed())
		m := Material{l, g}
		states := m.NewStates(Wc, dt, cyl)

		err := m.Update(Wc, Wc, dt, cyl, states)
		Expect(err).To(MatchError(ErrCylindrical))
		Expect(err.Error()).To(ContainSubstring("term 1 (gyrotropic"))
	})

	It("clones every term", func() {
		a := NewLorentzian(1, 0.1, false)
		Expect(a.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
		m := Material{a}
		c := m.Clone()
		Expect(c[0]).NotTo(BeIdenticalTo(m[0]))
		Expect(c[0].ID()).To(Equal(a.ID()))
		Expect(c[0].Sigma(grid.Ex, grid.X)).To(Equal(a.Sigma(grid.Ex, grid.X)))
	})
})
