// Package time provides time-domain level statistics for sample streams.
package time

import "math"

// RMS returns the root-mean-square of the signal, 0 for an empty signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	var sum float64
	for _, x := range signal {
		sum += x * x
	}

	return math.Sqrt(sum / float64(len(signal)))
}

// Peak returns the peak absolute amplitude of the signal.
func Peak(signal []float64) float64 {
	var peak float64
	for _, x := range signal {
		if a := math.Abs(x); a > peak {
			peak = a
		}
	}

	return peak
}

// CrestFactor returns peak / RMS of the signal.
// Returns 0 if RMS is zero.
func CrestFactor(signal []float64) float64 {
	rms := RMS(signal)
	if rms == 0 {
		return 0
	}

	return Peak(signal) / rms
}

// Level accumulates the energy and peak magnitude of a sample stream.
// The zero value is an empty accumulator.
type Level struct {
	sumSq float64
	peak  float64
	n     int
}

// Add folds one sample into the running statistics.
func (l *Level) Add(x float64) {
	l.sumSq += x * x
	if a := math.Abs(x); a > l.peak {
		l.peak = a
	}

	l.n++
}

// Update folds a block of samples into the running statistics.
func (l *Level) Update(samples []float64) {
	for _, x := range samples {
		l.Add(x)
	}
}

// Merge folds the statistics of o into l.
func (l *Level) Merge(o Level) {
	l.sumSq += o.sumSq
	l.peak = math.Max(l.peak, o.peak)
	l.n += o.n
}

// SumSquares returns the accumulated energy.
func (l Level) SumSquares() float64 { return l.sumSq }

// Peak returns the largest absolute sample seen so far.
func (l Level) Peak() float64 { return l.peak }

// Count returns the number of samples added.
func (l Level) Count() int { return l.n }

// RMS returns the RMS over every sample added, 0 when empty.
func (l Level) RMS() float64 {
	return l.RMSOver(l.n)
}

// RMSOver returns sqrt(SumSquares/count), or 0 if count is not positive.
func (l Level) RMSOver(count int) float64 {
	if count <= 0 {
		return 0
	}

	return math.Sqrt(l.sumSq / float64(count))
}

// Reset clears all accumulated data.
func (l *Level) Reset() {
	*l = Level{}
}
