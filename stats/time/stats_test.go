package time

import (
	"math"
	"testing"
)

const tolerance = 1e-10

func generateSine(amplitude, freq, sampleRate float64, numCycles int) []float64 {
	n := int(sampleRate/freq) * numCycles
	out := make([]float64, n)

	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
	}

	return out
}

func TestRMSPeakCrest(t *testing.T) {
	tests := []struct {
		name      string
		signal    []float64
		wantRMS   float64
		wantPeak  float64
		wantCrest float64
	}{
		{name: "empty"},
		{name: "silence", signal: make([]float64, 16)},
		{name: "dc", signal: []float64{-0.5, -0.5, -0.5, -0.5}, wantRMS: 0.5, wantPeak: 0.5, wantCrest: 1},
		{name: "square", signal: []float64{1, -1, 1, -1}, wantRMS: 1, wantPeak: 1, wantCrest: 1},
		{name: "sine", signal: generateSine(0.8, 100, 48000, 10), wantRMS: 0.8 / math.Sqrt2, wantPeak: 0.8, wantCrest: math.Sqrt2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RMS(tt.signal); math.Abs(got-tt.wantRMS) > 1e-6 {
				t.Errorf("RMS = %v, want %v", got, tt.wantRMS)
			}

			if got := Peak(tt.signal); math.Abs(got-tt.wantPeak) > 1e-6 {
				t.Errorf("Peak = %v, want %v", got, tt.wantPeak)
			}

			if got := CrestFactor(tt.signal); math.Abs(got-tt.wantCrest) > 1e-5 {
				t.Errorf("CrestFactor = %v, want %v", got, tt.wantCrest)
			}
		})
	}
}

func TestLevelMatchesBlockFunctions(t *testing.T) {
	sig := generateSine(0.3, 440, 44100, 20)

	var l Level
	for start := 0; start < len(sig); start += 333 {
		l.Update(sig[start:min(start+333, len(sig))])
	}

	if l.Count() != len(sig) {
		t.Fatalf("Count = %d, want %d", l.Count(), len(sig))
	}

	if math.Abs(l.RMS()-RMS(sig)) > tolerance {
		t.Fatalf("RMS = %v, want %v", l.RMS(), RMS(sig))
	}

	if l.Peak() != Peak(sig) {
		t.Fatalf("Peak = %v, want %v", l.Peak(), Peak(sig))
	}
}

func TestLevelRMSOver(t *testing.T) {
	var l Level

	l.Add(3)
	l.Add(-4)

	if got := l.SumSquares(); got != 25 {
		t.Fatalf("SumSquares = %v, want 25", got)
	}

	if got := l.RMSOver(25); math.Abs(got-1) > tolerance {
		t.Fatalf("RMSOver(25) = %v, want 1", got)
	}

	if got := l.RMSOver(0); got != 0 {
		t.Fatalf("RMSOver(0) = %v, want 0", got)
	}
}

func TestLevelMergeAndReset(t *testing.T) {
	var a, b Level

	a.Update([]float64{0.1, -0.2})
	b.Update([]float64{0.9})
	a.Merge(b)

	if a.Count() != 3 || a.Peak() != 0.9 {
		t.Fatalf("merged count=%d peak=%v, want 3 and 0.9", a.Count(), a.Peak())
	}

	a.Reset()

	if a.Count() != 0 || a.Peak() != 0 || a.RMS() != 0 {
		t.Fatalf("Reset left %+v", a)
	}
}

func BenchmarkLevelUpdate(b *testing.B) {
	sig := generateSine(0.5, 1000, 48000, 100)

	var l Level

	b.ReportAllocs()

	for b.Loop() {
		l.Update(sig)
	}
}
