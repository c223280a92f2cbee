package spectral

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-drumgate/dsp/filter/biquad"
	"github.com/cwbudde/algo-drumgate/dsp/filter/design"
)

// ErrInvalidSidechain is returned when a sidechain stage cannot be designed.
var ErrInvalidSidechain = errors.New("spectral: invalid sidechain stage")

// FilterKind selects the response of one sidechain stage.
type FilterKind int

const (
	Highpass FilterKind = iota
	Lowpass
	Peak
	LowShelf
	HighShelf
)

func (k FilterKind) String() string {
	switch k {
	case Highpass:
		return "highpass"
	case Lowpass:
		return "lowpass"
	case Peak:
		return "peak"
	case LowShelf:
		return "lowshelf"
	case HighShelf:
		return "highshelf"
	default:
		return fmt.Sprintf("FilterKind(%d)", int(k))
	}
}

// EQStage is one biquad of the sidechain EQ. GainDB is used by the peak
// and shelf kinds only.
type EQStage struct {
	Kind   FilterKind
	FreqHz float64
	Q      float64
	GainDB float64
}

// maxStageFraction keeps stage frequencies below 90% of Nyquist.
const maxStageFraction = 0.45

// DefaultSidechain returns the pre-emphasis applied before level
// accumulation: rumble and air are removed and the 2.5 kHz presence
// region is softened slightly.
func DefaultSidechain() []EQStage {
	return []EQStage{
		{Kind: Highpass, FreqHz: 40, Q: 0.707},
		{Kind: Lowpass, FreqHz: 9000, Q: 0.707},
		{Kind: Peak, FreqHz: 2500, Q: 1.0, GainDB: -2},
	}
}

func (st EQStage) coefficients(sampleRate float64) (biquad.Coefficients, error) {
	freq := min(st.FreqHz, sampleRate*maxStageFraction)

	var c biquad.Coefficients

	switch st.Kind {
	case Highpass:
		c = design.Highpass(freq, st.Q, sampleRate)
	case Lowpass:
		c = design.Lowpass(freq, st.Q, sampleRate)
	case Peak:
		c = design.Peak(freq, st.GainDB, st.Q, sampleRate)
	case LowShelf:
		c = design.LowShelf(freq, st.GainDB, st.Q, sampleRate)
	case HighShelf:
		c = design.HighShelf(freq, st.GainDB, st.Q, sampleRate)
	default:
		return c, fmt.Errorf("%w: %v", ErrInvalidSidechain, st.Kind)
	}

	if c.IsZero() || !c.Stable() {
		return c, fmt.Errorf("%w: %v at %g Hz", ErrInvalidSidechain, st.Kind, st.FreqHz)
	}

	return c, nil
}

// NewSidechain designs the stages at sampleRate as one cascade.
func NewSidechain(stages []EQStage, sampleRate float64) (*biquad.Chain, error) {
	coeffs := make([]biquad.Coefficients, len(stages))

	for i, st := range stages {
		c, err := st.coefficients(sampleRate)
		if err != nil {
			return nil, err
		}

		coeffs[i] = c
	}

	return biquad.NewChain(coeffs...), nil
}
