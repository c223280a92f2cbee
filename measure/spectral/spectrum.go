package spectral

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-drumgate/dsp/window"
	frequencystats "github.com/cwbudde/algo-drumgate/stats/frequency"
	"github.com/cwbudde/algo-vecmath"
)

// DefaultSpectrumSize is the FFT frame length of the long-term spectrum.
const DefaultSpectrumSize = 2048

// rolloffFraction is the energy fraction used for RolloffHz.
const rolloffFraction = 0.85

// longTermSpectrum averages power spectra of Hann-windowed frames with 50%
// overlap.
type longTermSpectrum struct {
	plan   *algofft.Plan[complex128]
	size   int
	window []float64

	frame    []float64
	filled   int
	windowed []float64
	in, out  []complex128
	re, im   []float64
	power    []float64
	sum      []float64
	frames   int
}

func newLongTermSpectrum(size int) (*longTermSpectrum, error) {
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectral: fft plan %d: %w", size, err)
	}

	bins := size/2 + 1

	return &longTermSpectrum{
		plan:     plan,
		size:     size,
		window:   window.Generate(window.TypeHann, size, window.WithPeriodic()),
		frame:    make([]float64, size),
		windowed: make([]float64, size),
		in:       make([]complex128, size),
		out:      make([]complex128, size),
		re:       make([]float64, bins),
		im:       make([]float64, bins),
		power:    make([]float64, bins),
		sum:      make([]float64, bins),
	}, nil
}

func (s *longTermSpectrum) Write(samples []float64) error {
	for len(samples) > 0 {
		n := copy(s.frame[s.filled:], samples)
		s.filled += n
		samples = samples[n:]

		if s.filled < s.size {
			break
		}

		if err := s.analyzeFrame(); err != nil {
			return err
		}

		hop := s.size / 2
		copy(s.frame, s.frame[hop:])
		s.filled = s.size - hop
	}

	return nil
}

func (s *longTermSpectrum) analyzeFrame() error {
	if err := window.ApplyTo(s.windowed, s.frame, s.window); err != nil {
		return err
	}

	for i, v := range s.windowed {
		s.in[i] = complex(v, 0)
	}

	if err := s.plan.Forward(s.out, s.in); err != nil {
		return fmt.Errorf("spectral: fft: %w", err)
	}

	for i := range s.re {
		s.re[i] = real(s.out[i])
		s.im[i] = imag(s.out[i])
	}

	vecmath.Power(s.power, s.re, s.im)
	vecmath.AddBlockInPlace(s.sum, s.power)
	s.frames++

	return nil
}

// Magnitude returns the RMS magnitude per bin over all analyzed frames,
// or nil if no frame was complete.
func (s *longTermSpectrum) Magnitude() []float64 {
	if s.frames == 0 {
		return nil
	}

	mag := make([]float64, len(s.sum))
	vecmath.ScaleBlock(mag, s.sum, 1/float64(s.frames))

	for i, v := range mag {
		mag[i] = math.Sqrt(v)
	}

	return mag
}

// Descriptors returns the centroid and 85% rolloff in Hz.
func (s *longTermSpectrum) Descriptors(sampleRate float64) (centroidHz, rolloffHz float64) {
	mag := s.Magnitude()
	if mag == nil {
		return 0, 0
	}

	return frequencystats.Centroid(mag, sampleRate),
		frequencystats.Rolloff(mag, sampleRate, rolloffFraction)
}
