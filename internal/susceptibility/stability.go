package susceptibility

import "math"

// LorentzianUnstable reports whether the discretized Lorentzian recurrence
// has a pole z with |z| > 1. The pole solves
//
//	(z + 1/z - 2)/dt² + g(z - 1/z)/(2dt) + w² = 0
//
// with w = 2πω0 and g = 2πγ. The test is known to be too conservative, so
// it only feeds diagnostics.
func LorentzianUnstable(omega0, gamma, dt float64) bool {
	w, g := 2*math.Pi*omega0, 2*math.Pi*gamma
	g2, w2 := g*dt/2, (w*dt)*(w*dt)
	b := (1 - w2/2) / (1 + g2)
	c := (1 - g2) / (1 + g2)
	return b*b > c && 2*b*b-c+2*math.Abs(b)*math.Sqrt(b*b-c) > 1
}

// MaxStableDt is the largest step at which an undamped pole stays on the
// unit circle, 1/(π ω0). It is infinite for ω0 = 0.
func MaxStableDt(omega0 float64) float64 {
	if omega0 == 0 {
		return math.Inf(1)
	}
	return 1 / (math.Pi * math.Abs(omega0))
}
