// Package bandpass provides the second-order band-limiting filter used to
// measure focus-band energy.
//
// A [Filter] is a plain value holding one biquad section, so per-band state
// can live in fixed-size arrays without pointer chasing. Process is causal,
// stable for every band accepted by [New], and allocation free.
package bandpass

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-drumgate/dsp/filter/biquad"
	"github.com/cwbudde/algo-drumgate/dsp/filter/design"
)

// ErrDegenerateBand is returned when the band edges do not describe a
// usable passband at the given sample rate.
var ErrDegenerateBand = errors.New("bandpass: degenerate band")

// Filter is a 0 dB-peak two-pole/two-zero bandpass filter.
type Filter struct {
	section biquad.Section
	lowHz   float64
	highHz  float64
}

// New designs a bandpass filter passing [lowHz, highHz] at sampleRate.
//
// It fails with [ErrDegenerateBand] when lowHz >= highHz, when either edge
// lies outside (0, sampleRate/2), or when sampleRate is not a positive
// finite number.
func New(lowHz, highHz, sampleRate float64) (Filter, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return Filter{}, fmt.Errorf("%w: sample rate %v", ErrDegenerateBand, sampleRate)
	}

	coeffs, ok := design.BandpassEdges(lowHz, highHz, sampleRate)
	if !ok {
		return Filter{}, fmt.Errorf("%w: [%v, %v] Hz at %v Hz", ErrDegenerateBand, lowHz, highHz, sampleRate)
	}

	return Filter{
		section: biquad.NewSection(coeffs),
		lowHz:   lowHz,
		highHz:  highHz,
	}, nil
}

// Process filters one sample.
func (f *Filter) Process(x float64) float64 {
	return f.section.ProcessSample(x)
}

// ProcessBlock filters buf in place.
func (f *Filter) ProcessBlock(buf []float64) {
	f.section.ProcessBlock(buf)
}

// Reset clears the delay state.
func (f *Filter) Reset() {
	f.section.Reset()
}

// Band returns the configured passband edges in Hz.
func (f *Filter) Band() (lowHz, highHz float64) {
	return f.lowHz, f.highHz
}

// Coefficients returns the designed biquad coefficients.
func (f *Filter) Coefficients() biquad.Coefficients {
	return f.section.Coefficients
}
