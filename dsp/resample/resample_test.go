package resample

import (
	"errors"
	"math"
	"testing"
)

func sineBlock(n int, freq, sr float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / sr)
	}

	return out
}

func TestNewRationalRejectsNonPositive(t *testing.T) {
	for _, tc := range []struct{ up, down int }{{0, 1}, {1, 0}, {-2, 3}} {
		if _, err := NewRational(tc.up, tc.down); !errors.Is(err, ErrInvalidRatio) {
			t.Fatalf("NewRational(%d,%d) error = %v, want ErrInvalidRatio", tc.up, tc.down, err)
		}
	}
}

func TestNewForRatesRejectsInvalidRates(t *testing.T) {
	for _, tc := range []struct{ in, out float64 }{
		{0, 22050},
		{44100, -1},
		{math.NaN(), 22050},
		{math.Inf(1), 22050},
	} {
		if _, err := NewForRates(tc.in, tc.out); !errors.Is(err, ErrInvalidRate) {
			t.Fatalf("NewForRates(%v,%v) error = %v, want ErrInvalidRate", tc.in, tc.out, err)
		}
	}
}

func TestAnalysisRatios(t *testing.T) {
	tests := []struct {
		inRate   float64
		outRate  float64
		wantUp   int
		wantDown int
	}{
		{44100, 22050, 1, 2},
		{48000, 22050, 147, 320},
		{96000, 22050, 147, 640},
		{22050, 22050, 1, 1},
	}
	for _, tc := range tests {
		r, err := NewForRates(tc.inRate, tc.outRate)
		if err != nil {
			t.Fatalf("NewForRates(%v,%v) error = %v", tc.inRate, tc.outRate, err)
		}

		up, down := r.Ratio()
		if up != tc.wantUp || down != tc.wantDown {
			t.Fatalf("%v->%v ratio = %d/%d, want %d/%d", tc.inRate, tc.outRate, up, down, tc.wantUp, tc.wantDown)
		}
	}
}

func TestRatioApproximation(t *testing.T) {
	tests := []struct {
		name     string
		inRate   float64
		outRate  float64
		maxDen   int
		wantUp   int
		wantDown int
	}{
		{"exact integral", 48000, 22050, 4096, 147, 320},
		{"capped denominator", 48000, 22050, 100, 17, 37},
		{"fractional input", 44100.5, 22050, 4096, 1, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			up, down := rationalFor(tc.inRate, tc.outRate, tc.maxDen)
			if up != tc.wantUp || down != tc.wantDown {
				t.Fatalf("rationalFor = %d/%d, want %d/%d", up, down, tc.wantUp, tc.wantDown)
			}
		})
	}

	if up, down := convergent(math.Pi, 1000); up != 355 || down != 113 {
		t.Fatalf("convergent(pi) = %d/%d, want 355/113", up, down)
	}
}

func TestPredictOutputLenMatchesProcess(t *testing.T) {
	r, err := NewRational(147, 320)
	if err != nil {
		t.Fatalf("NewRational() error = %v", err)
	}

	in := sineBlock(4097, 1000, 48000)

	want := r.PredictOutputLen(len(in))
	if got := len(r.Process(in)); got != want {
		t.Fatalf("len(out) = %d, want %d", got, want)
	}
}

func TestOutputLengthTracksRate(t *testing.T) {
	for _, tc := range []struct{ in, out float64 }{{44100, 22050}, {48000, 22050}, {22050, 44100}} {
		r, err := NewForRates(tc.in, tc.out, WithQuality(QualityFast))
		if err != nil {
			t.Fatalf("NewForRates() error = %v", err)
		}

		in := sineBlock(8192, 440, tc.in)
		out := r.Process(in)

		expected := int(math.Round(float64(len(in)) * tc.out / tc.in))
		if d := len(out) - expected; d < -1 || d > 1 {
			t.Fatalf("%v->%v len = %d, want ~%d", tc.in, tc.out, len(out), expected)
		}
	}
}

func TestProcessIntoMatchesOneShot(t *testing.T) {
	in := sineBlock(6000, 200, 44100)

	whole, err := NewRational(1, 2)
	if err != nil {
		t.Fatalf("NewRational() error = %v", err)
	}

	want := whole.Process(in)

	chunked, err := NewRational(1, 2)
	if err != nil {
		t.Fatalf("NewRational() error = %v", err)
	}

	var (
		got []float64
		buf []float64
	)

	for start := 0; start < len(in); start += 1000 {
		end := min(start+1000, len(in))
		buf = chunked.ProcessInto(buf, in[start:end])
		got = append(got, buf...)
	}

	if len(got) != len(want) {
		t.Fatalf("chunked len = %d, want %d", len(got), len(want))
	}

	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("sample %d: chunked %.15f, one-shot %.15f", i, got[i], want[i])
		}
	}
}

func TestProcessIntoReusesBuffers(t *testing.T) {
	r, err := NewRational(147, 320)
	if err != nil {
		t.Fatalf("NewRational() error = %v", err)
	}

	in := sineBlock(4096, 1000, 48000)
	dst := make([]float64, 0, 4096)
	dst = r.ProcessInto(dst, in)

	allocs := testing.AllocsPerRun(20, func() {
		dst = r.ProcessInto(dst, in)
	})
	if allocs != 0 {
		t.Fatalf("ProcessInto allocated %.1f times per block", allocs)
	}
}

func TestDownsamplePreservesLowTone(t *testing.T) {
	r, err := NewForRates(44100, 22050, WithQuality(QualityBest))
	if err != nil {
		t.Fatalf("NewForRates() error = %v", err)
	}

	out := r.Process(sineBlock(44100, 100, 44100))

	// Skip the filter's warm-up.
	var peak float64
	for _, v := range out[2000:] {
		peak = max(peak, math.Abs(v))
	}

	if math.Abs(peak-1) > 0.02 {
		t.Fatalf("100 Hz peak after downsampling = %.4f, want ~1", peak)
	}
}

func TestDownsampleRejectsAliasingTone(t *testing.T) {
	r, err := NewForRates(44100, 22050, WithQuality(QualityBest))
	if err != nil {
		t.Fatalf("NewForRates() error = %v", err)
	}

	// 18 kHz lies above the 11.025 kHz output Nyquist.
	out := r.Process(sineBlock(44100, 18000, 44100))

	var peak float64
	for _, v := range out[2000:] {
		peak = max(peak, math.Abs(v))
	}

	if peak > 0.01 {
		t.Fatalf("aliased 18 kHz peak = %.5f, want < 0.01", peak)
	}
}

func TestResetRestartsStream(t *testing.T) {
	r, err := NewRational(1, 2)
	if err != nil {
		t.Fatalf("NewRational() error = %v", err)
	}

	in := sineBlock(512, 300, 44100)
	first := r.Process(in)

	r.Reset()

	second := r.Process(in)
	if len(first) != len(second) {
		t.Fatalf("len after reset = %d, want %d", len(second), len(first))
	}

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sample %d differs after reset", i)
		}
	}
}

func BenchmarkProcessInto48kTo22k(b *testing.B) {
	r, err := NewForRates(48000, 22050)
	if err != nil {
		b.Fatal(err)
	}

	in := sineBlock(4096, 1000, 48000)
	dst := make([]float64, 0, 4096)

	b.ReportAllocs()

	for b.Loop() {
		dst = r.ProcessInto(dst, in)
	}
}
