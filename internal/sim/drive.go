package sim

import (
	"fmt"
	"math"
)

// Drive is the source amplitude applied uniformly to the driven component.
type Drive func(t float64) float64

func CW(freq, amp float64) Drive {
	return func(t float64) float64 { return amp * math.Sin(2*math.Pi*freq*t) }
}

// Pulse is a Gaussian envelope of the given width centred on delay,
// modulating a carrier at freq.
func Pulse(freq, width, delay, amp float64) Drive {
	return func(t float64) float64 {
		x := (t - delay) / width
		return amp * math.Exp(-0.5*x*x) * math.Cos(2*math.Pi*freq*(t-delay))
	}
}

func Step(amp float64) Drive {
	return func(t float64) float64 { return amp }
}

// Impulse is non-zero on the first step only, so the response that follows
// is the material's free ringing.
func Impulse(amp, dt float64) Drive {
	return func(t float64) float64 {
		if t < dt/2 {
			return amp
		}
		return 0
	}
}

// NewDrive builds a waveform by name.
func NewDrive(waveform string, freq, width, delay, amp, dt float64) (Drive, error) {
	switch waveform {
	case "cw":
		return CW(freq, amp), nil
	case "pulse":
		if width <= 0 {
			return nil, fmt.Errorf("%w: pulse width must be positive", ErrInvalidConfig)
		}
		return Pulse(freq, width, delay, amp), nil
	case "step":
		return Step(amp), nil
	case "", "impulse":
		return Impulse(amp, dt), nil
	}
	return nil, fmt.Errorf("%w: unknown waveform %q", ErrInvalidConfig, waveform)
}
