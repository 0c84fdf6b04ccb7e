package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

// PlotSeries draws data with asciigraph, downsampling to width columns by
// keeping the extreme value of each bucket so peaks survive. Non-finite
// values are clamped to the finite range.
func PlotSeries(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 10
	}
	pts := Downsample(finite(data), width)
	return asciigraph.Plot(pts, asciigraph.Height(height), asciigraph.Width(width), asciigraph.Caption(caption))
}

// Downsample reduces data to at most n points, keeping the largest
// magnitude of each bucket.
func Downsample(data []float64, n int) []float64 {
	if n <= 0 || len(data) <= n {
		return append([]float64(nil), data...)
	}
	out := make([]float64, n)
	for b := 0; b < n; b++ {
		lo, hi := b*len(data)/n, (b+1)*len(data)/n
		best := data[lo]
		for _, v := range data[lo:hi] {
			if math.Abs(v) > math.Abs(best) {
				best = v
			}
		}
		out[b] = best
	}
	return out
}

func finite(data []float64) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		lo, hi = 0, 0
	}
	out := make([]float64, len(data))
	for i, v := range data {
		switch {
		case math.IsNaN(v):
			out[i] = 0
		case math.IsInf(v, 1):
			out[i] = hi
		case math.IsInf(v, -1):
			out[i] = lo
		default:
			out[i] = v
		}
	}
	return out
}

// SpectrumPlot draws power in decibels relative to the strongest bin.
func SpectrumPlot(power []float64, width, height int, caption string) string {
	peak := 0.0
	for _, p := range power {
		peak = math.Max(peak, p)
	}
	db := make([]float64, len(power))
	for i, p := range power {
		if peak == 0 || p <= 0 {
			db[i] = -120
			continue
		}
		db[i] = math.Max(10*math.Log10(p/peak), -120)
	}
	return PlotSeries(db, width, height, caption)
}
