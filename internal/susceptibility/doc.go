// Package susceptibility implements the time-domain response of dispersive
// media for a finite-difference field solver.
//
// A dispersive term relates a polarization P to a driving field W through a
// frequency-dependent susceptibility. Each term owns a spatial coupling
// profile sigma[c][d] ([Descriptor]) and an auxiliary [State] holding the
// current and previous P for every component it drives. Per step the solver
// calls [Response.Update] to advance P and then [Response.SubtractP] to
// remove it from D (or B).
//
// Three responses are provided:
//
//   - [Lorentzian]: a single damped resonance
//   - [NoisyLorentzian]: a Lorentzian with a random force at every point
//   - [Gyrotropic]: a Lorentzian whose components precess about a bias
//
// Terms on the same material point combine additively in a [Material].
//
// # Concurrency
//
// A response and its states belong to one chunk. Clone and CopyState produce
// fully independent copies that may be stepped on other goroutines; noisy
// clones need their own [Sampler] first.
package susceptibility
