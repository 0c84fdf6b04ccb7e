package susceptibility

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/san-kum/dispsim/internal/grid"
)

// Sampler supplies the random draws of a noisy response. *rand.Rand
// satisfies it.
type Sampler interface {
	NormFloat64() float64
	Float64() float64
}

// Distribution selects how noise increments are drawn. Both choices have
// zero mean and the same variance.
type Distribution int

const (
	Gaussian Distribution = iota
	Uniform
)

func (d Distribution) String() string {
	if d == Uniform {
		return "uniform"
	}
	return "gaussian"
}

func ParseDistribution(s string) (Distribution, error) {
	switch strings.ToLower(s) {
	case "", "gaussian", "normal":
		return Gaussian, nil
	case "uniform":
		return Uniform, nil
	}
	return Gaussian, fmt.Errorf("unknown noise distribution: %q", s)
}

// NoisyLorentzian is a Lorentzian driven by an additional random force at
// every point, modelling thermal fluctuation sources.
type NoisyLorentzian struct {
	Lorentzian
	NoiseAmp     float64
	Distribution Distribution
	sampler      Sampler
}

var _ Response = (*NoisyLorentzian)(nil)

// NewNoisyLorentzian builds a noisy response. A nil sampler is replaced by a
// PCG stream seeded from the response ID.
func NewNoisyLorentzian(noiseAmp, omega0, gamma float64, noOmega0Denominator bool, sampler Sampler) *NoisyLorentzian {
	n := &NoisyLorentzian{
		Lorentzian: *NewLorentzian(omega0, gamma, noOmega0Denominator),
		NoiseAmp:   noiseAmp,
	}
	if sampler == nil {
		sampler = rand.New(rand.NewPCG(uint64(n.ID()), 0x6e6f697379))
	}
	n.sampler = sampler
	return n
}

func (n *NoisyLorentzian) Kind() Kind { return KindNoisyLorentzian }

// SetSampler replaces the random source. Clones share their parent's sampler
// until this is called.
func (n *NoisyLorentzian) SetSampler(s Sampler) { n.sampler = s }

func (n *NoisyLorentzian) Clone() Response {
	out := *n
	out.Descriptor = n.Descriptor.clone()
	return &out
}

// Amplitude is the standard deviation of the per-step increment for a unit
// coupling coefficient.
func (n *NoisyLorentzian) Amplitude(dt float64) float64 {
	g2pi := 2 * math.Pi * n.Gamma
	w2pi := 2 * math.Pi * n.Omega0
	return w2pi * n.NoiseAmp * math.Sqrt(g2pi) * dt * dt / (1 + g2pi*dt/2)
}

func (n *NoisyLorentzian) Update(W, WPrev *grid.Fields, dt float64, gv grid.Volume, st *State) error {
	if err := n.Lorentzian.Update(W, WPrev, dt, gv, st); err != nil {
		return err
	}

	amp := n.Amplitude(dt)
	if n.Distribution == Uniform {
		amp *= math.Sqrt(3)
	}

	for c := grid.Component(0); c < grid.NumComponents; c++ {
		for cmp := 0; cmp < 2; cmp++ {
			p := st.p[c][cmp]
			if p == nil {
				continue
			}
			s := n.coeff(c, c.Direction())
			if s == nil {
				continue
			}
			gv.LoopOwned(func(i int) {
				p[i] += n.draw() * amp * math.Sqrt(s[i])
			})
		}
	}
	return nil
}

func (n *NoisyLorentzian) draw() float64 {
	if n.Distribution == Uniform {
		return 2*n.sampler.Float64() - 1
	}
	return n.sampler.NormFloat64()
}

func (n *NoisyLorentzian) DumpParams(w ParamWriter, start *int) error {
	return writeRecord(w, start, []float64{
		float64(KindNoisyLorentzian), float64(n.ID()), n.NoiseAmp, n.Omega0, n.Gamma, boolFloat(n.NoOmega0Denominator),
	})
}
