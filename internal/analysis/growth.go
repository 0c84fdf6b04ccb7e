package analysis

import "math"

// GrowthRate fits ln of the windowed peak |x| against time and returns the
// slope. A bounded response gives a rate at or below zero; an unstable one
// gives a positive rate. Windows whose peak is zero or not finite are
// skipped.
func GrowthRate(series []float64, dt float64, windowLen int) float64 {
	if windowLen < 1 {
		windowLen = 1
	}
	var ts, ys []float64
	for start := 0; start+windowLen <= len(series); start += windowLen {
		peak := 0.0
		for _, v := range series[start : start+windowLen] {
			peak = math.Max(peak, math.Abs(v))
		}
		if peak == 0 || math.IsInf(peak, 0) || math.IsNaN(peak) {
			continue
		}
		ts = append(ts, (float64(start)+float64(windowLen)/2)*dt)
		ys = append(ys, math.Log(peak))
	}
	if len(ts) < 2 {
		return 0
	}

	var mt, my float64
	for i := range ts {
		mt += ts[i]
		my += ys[i]
	}
	mt /= float64(len(ts))
	my /= float64(len(ts))

	var num, den float64
	for i := range ts {
		num += (ts[i] - mt) * (ys[i] - my)
		den += (ts[i] - mt) * (ts[i] - mt)
	}
	if den == 0 {
		return 0
	}
	return num / den
}
