package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

var ErrShortSeries = errors.New("analysis: series too short")

// Spectrum is a one-sided power spectrum.
type Spectrum struct {
	Freqs []float64
	Power []float64
}

// PowerSpectrum removes the mean, applies a Hann window and returns |X(f)|²
// for 0 ≤ f ≤ 1/(2dt). Frequencies are in cycles per unit time, the same
// units as ω0.
func PowerSpectrum(series []float64, dt float64) (*Spectrum, error) {
	n := len(series)
	if n < 4 {
		return nil, ErrShortSeries
	}

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(n)

	x := make([]float64, n)
	for i, v := range series {
		x[i] = v - mean
	}
	window.Apply(x, window.Hann)

	X := fft.FFTReal(x)
	half := n/2 + 1
	sp := &Spectrum{Freqs: make([]float64, half), Power: make([]float64, half)}
	for k := 0; k < half; k++ {
		sp.Freqs[k] = float64(k) / (float64(n) * dt)
		a := cmplx.Abs(X[k])
		sp.Power[k] = a * a
	}
	return sp, nil
}

// Peak is the strongest bin at or above fmin, refined by parabolic
// interpolation over its neighbours.
func (s *Spectrum) Peak(fmin float64) (freq, power float64) {
	best := -1
	for k, f := range s.Freqs {
		if f < fmin {
			continue
		}
		if best < 0 || s.Power[k] > s.Power[best] {
			best = k
		}
	}
	if best < 0 {
		return 0, 0
	}
	freq, power = s.Freqs[best], s.Power[best]
	if best == 0 || best == len(s.Power)-1 {
		return freq, power
	}

	a, b, c := s.Power[best-1], s.Power[best], s.Power[best+1]
	den := a - 2*b + c
	if den == 0 {
		return freq, power
	}
	shift := 0.5 * (a - c) / den
	df := s.Freqs[1] - s.Freqs[0]
	return freq + shift*df, b - 0.25*(a-c)*shift
}

// ResonanceFrequency is where a Lorentzian with undamped resonance omega0
// and damping gamma peaks in a driven response, in the same cycle units.
func ResonanceFrequency(omega0, gamma float64) float64 {
	r := omega0*omega0 - gamma*gamma/2
	if r <= 0 {
		return 0
	}
	return math.Sqrt(r)
}
