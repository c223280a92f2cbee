package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	for i, v := range s {
		if v < -1 || v > 1 {
			t.Fatalf("s[%d] = %v out of range", i, v)
		}
	}
}

func TestDeterministicNoiseReproducible(t *testing.T) {
	a := DeterministicNoise(7, 0.5, 256)
	b := DeterministicNoise(7, 0.5, 256)
	RequireBitIdentical(t, a, b)
	for i, v := range a {
		if math.Abs(v) > 0.5 {
			t.Fatalf("a[%d] = %v exceeds amplitude", i, v)
		}
	}
}

func TestDrumHitsDecay(t *testing.T) {
	sr := 8000.0
	hits := DrumHits(200, sr, 1, 0.5, 0.05, int(sr))
	early := maxAbs(hits[:400])
	late := maxAbs(hits[3000:4000])
	if !(early > 0.5 && late < 0.01) {
		t.Fatalf("early peak %v, late peak %v", early, late)
	}
	second := maxAbs(hits[4000:4400])
	if second < 0.5 {
		t.Fatalf("second hit peak %v, want > 0.5", second)
	}
}

func TestInterleave(t *testing.T) {
	got := Interleave([]float64{1, 2, 3}, []float64{-1, -2, -3})
	RequireSliceNearlyEqual(t, got, []float64{1, -1, 2, -2, 3, -3}, 0)
}

func maxAbs(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		m = math.Max(m, math.Abs(v))
	}
	return m
}
