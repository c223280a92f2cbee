package core

// EnsureLen returns buf resliced to n, reallocating only when its capacity
// is too small. The contents are not cleared.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}

	if cap(buf) < n {
		return make([]float64, n)
	}

	return buf[:n]
}

// Deinterleave copies channel c of frames interleaved frames into dst and
// returns the number of frames copied.
func Deinterleave(dst, interleaved []float64, channels, c, frames int) int {
	if channels <= 0 || c < 0 || c >= channels {
		return 0
	}

	frames = min(frames, len(dst), len(interleaved)/channels)
	for i := range frames {
		dst[i] = interleaved[i*channels+c]
	}

	return max(frames, 0)
}

// AppendInterleaved appends the first frames samples of every channel to
// dst in frame order.
func AppendInterleaved(dst []float64, channels [][]float64, frames int) []float64 {
	for i := range frames {
		for _, ch := range channels {
			dst = append(dst, ch[i])
		}
	}

	return dst
}
