// Package analysis characterizes probe series from dispersive runs.
//
//   - [PowerSpectrum] and [Spectrum.Peak]: windowed power spectrum and the
//     resonance it shows
//   - [GrowthRate]: exponential growth of the response envelope
//   - [StabilitySweep]: advisory predicate against observed behaviour over a
//     range of step sizes
//   - [PhasePortrait]: (P, dP/dt) trajectories
//
// # Resonance
//
// The free ringing after an impulse peaks near the pole frequency:
//
//	sp, _ := analysis.PowerSpectrum(result.Polarization(), dt)
//	f, _ := sp.Peak(0)
package analysis
