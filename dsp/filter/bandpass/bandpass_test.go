package bandpass

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-drumgate/internal/testutil"
)

func TestNewRejectsDegenerateBands(t *testing.T) {
	tests := []struct {
		name            string
		low, high, rate float64
	}{
		{"low equals high", 200, 200, 22050},
		{"low above high", 800, 200, 22050},
		{"zero low", 0, 200, 22050},
		{"negative low", -10, 200, 22050},
		{"high at nyquist", 1000, 11025, 22050},
		{"high above nyquist", 1000, 15000, 22050},
		{"zero sample rate", 100, 200, 0},
		{"nan sample rate", 100, 200, math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.low, tt.high, tt.rate)
			if !errors.Is(err, ErrDegenerateBand) {
				t.Fatalf("New() error = %v, want ErrDegenerateBand", err)
			}
		})
	}
}

func TestFilterPassesCenterAndRejectsOutOfBand(t *testing.T) {
	sr := 22050.0
	f, err := New(150, 600, sr)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	center := math.Sqrt(150 * 600)
	n := int(sr)

	inBand := rmsAfter(t, &f, testutil.DeterministicSine(center, sr, 1, n))
	f.Reset()
	low := rmsAfter(t, &f, testutil.DeterministicSine(20, sr, 1, n))
	f.Reset()
	high := rmsAfter(t, &f, testutil.DeterministicSine(6000, sr, 1, n))

	sineRMS := 1 / math.Sqrt2
	if math.Abs(inBand-sineRMS) > 0.01 {
		t.Fatalf("in-band RMS = %v, want about %v", inBand, sineRMS)
	}
	if low > 0.2*sineRMS || high > 0.2*sineRMS {
		t.Fatalf("out-of-band RMS too high: 20 Hz %v, 6 kHz %v", low, high)
	}
}

func TestFilterIsStableAndCausal(t *testing.T) {
	f, err := New(40, 120, 22050)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if y := f.Process(0); y != 0 {
		t.Fatalf("output before input = %v, want 0", y)
	}

	out := make([]float64, 22050)
	out[0] = 1
	f.Reset()
	f.ProcessBlock(out)
	testutil.RequireFinite(t, out)
	if tail := math.Abs(out[len(out)-1]); tail > 1e-9 {
		t.Fatalf("impulse response did not decay: %v", tail)
	}
}

func TestProcessDoesNotAllocate(t *testing.T) {
	f, err := New(1000, 4000, 44100)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	x := 0.25
	allocs := testing.AllocsPerRun(1000, func() {
		x = f.Process(x) + 0.25
	})
	if allocs != 0 {
		t.Fatalf("Process allocated %v times per run", allocs)
	}
}

func TestBand(t *testing.T) {
	f, err := New(200, 4500, 22050)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	lo, hi := f.Band()
	if lo != 200 || hi != 4500 {
		t.Fatalf("Band() = %v, %v", lo, hi)
	}
	if !f.Coefficients().Stable() {
		t.Fatal("designed coefficients are not stable")
	}
}

func rmsAfter(t *testing.T, f *Filter, in []float64) float64 {
	t.Helper()
	// Skip the first 10% to let the transient settle.
	start := len(in) / 10
	var sum float64
	for i, x := range in {
		y := f.Process(x)
		if i >= start {
			sum += y * y
		}
	}
	return math.Sqrt(sum / float64(len(in)-start))
}
