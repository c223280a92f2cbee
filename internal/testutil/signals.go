// Package testutil holds deterministic signal generators and comparison
// helpers shared by package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DrumHits generates exponentially decaying tone bursts at freqHz, one hit
// every period seconds, each decaying with time constant decay seconds.
// It resembles a close-miked drum stem without bleed.
func DrumHits(freqHz, sampleRate, amplitude, period, decay float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	periodSamples := int(period * sampleRate)
	if periodSamples < 1 {
		periodSamples = 1
	}
	for i := range out {
		n := i % periodSamples
		t := float64(n) / sampleRate
		out[i] = amplitude * math.Exp(-t/decay) * math.Sin(step*float64(n))
	}
	return out
}

// Mix adds b into a sample by sample and returns a. The result has the
// length of a; missing samples of b are treated as zero.
func Mix(a, b []float64) []float64 {
	for i := range a {
		if i >= len(b) {
			break
		}
		a[i] += b[i]
	}
	return a
}

// Interleave packs equally long channel slices into one interleaved slice.
func Interleave(channels ...[]float64) []float64 {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	out := make([]float64, frames*len(channels))
	for f := 0; f < frames; f++ {
		for c, ch := range channels {
			out[f*len(channels)+c] = ch[f]
		}
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}
