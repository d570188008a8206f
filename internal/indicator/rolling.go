package indicator

import "math"

// RollingMean computes the mean over a trailing window that shrinks at the
// head of the series: index i averages values[max(0,i-window+1)..i], so the
// output is defined at every index.
func RollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		n := window
		if i+1 < window {
			n = i + 1
		} else if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(n)
	}
	return out
}

// RollingStdDev computes the sample standard deviation over the same
// shrinking trailing window as RollingMean. A single-element window yields 0
// rather than NaN so the output is defined at every index.
func RollingStdDev(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		n := i - lo + 1
		if n < 2 {
			out[i] = 0
			continue
		}
		mean := 0.0
		for j := lo; j <= i; j++ {
			mean += values[j]
		}
		mean /= float64(n)
		ss := 0.0
		for j := lo; j <= i; j++ {
			d := values[j] - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(n-1))
	}
	return out
}

// EWMA computes the exponential moving average with smoothing factor
// alpha = 2/(window+1), seeded at values[0]:
//
//	out[0] = values[0]
//	out[i] = alpha*values[i] + (1-alpha)*out[i-1]
//
// There is no warm-up gap; the recurrence is defined from index 0.
func EWMA(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(window) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}
