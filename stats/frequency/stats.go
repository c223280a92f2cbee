// Package frequency provides frequency-domain statistics computed from a
// one-sided magnitude spectrum.
//
// The magnitude slice represents bins from 0 (DC) to Nyquist (length =
// FFTSize/2 + 1). The frequency of bin i is:
//
//	f_i = i * sampleRate / (2 * (len(magnitude) - 1))
package frequency

// BinFrequency returns the frequency in Hz of bin i of a one-sided spectrum
// with binCount bins.
func BinFrequency(i int, sampleRate float64, binCount int) float64 {
	if binCount < 2 {
		return 0
	}

	return float64(i) * sampleRate / float64(2*(binCount-1))
}

// Centroid returns the spectral centroid in Hz.
//
//	centroid = sum(f_i * |X_i|) / sum(|X_i|)
func Centroid(magnitude []float64, sampleRate float64) float64 {
	n := len(magnitude)
	if n < 2 {
		return 0
	}

	var sum, weighted float64
	for i, v := range magnitude {
		sum += v
		weighted += BinFrequency(i, sampleRate, n) * v
	}

	if sum == 0 {
		return 0
	}

	return weighted / sum
}

// Rolloff returns the frequency below which the specified fraction (0..1) of
// spectral energy lies.
//
// Energy is defined as the sum of squared magnitudes. A typical value for
// percent is 0.85.
func Rolloff(magnitude []float64, sampleRate float64, percent float64) float64 {
	n := len(magnitude)
	if n < 2 {
		return 0
	}

	var total float64
	for _, v := range magnitude {
		total += v * v
	}

	if total == 0 {
		return 0
	}

	threshold := percent * total
	cum := 0.0

	for i, v := range magnitude {
		cum += v * v
		if cum >= threshold {
			return BinFrequency(i, sampleRate, n)
		}
	}

	return BinFrequency(n-1, sampleRate, n)
}
