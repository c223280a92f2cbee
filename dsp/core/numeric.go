package core

import "math"

// Epsilon is the amplitude floor applied to both sides of a level ratio
// before taking its logarithm.
const Epsilon = 1e-6

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// IsFinite reports whether x is neither NaN nor an infinity.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// RatioDB returns 20*log10(num/den) with both operands floored at eps.
// A non-positive eps selects [Epsilon].
func RatioDB(num, den, eps float64) float64 {
	if eps <= 0 {
		eps = Epsilon
	}

	return 20 * math.Log10(math.Max(num, eps)/math.Max(den, eps))
}
