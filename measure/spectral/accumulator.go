package spectral

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-drumgate/dsp/filter/bandpass"
	"github.com/cwbudde/algo-drumgate/gate"
	timestats "github.com/cwbudde/algo-drumgate/stats/time"
)

// ErrInvalidWeight is returned for band weights that are not positive and finite.
var ErrInvalidWeight = errors.New("spectral: invalid band weight")

// Accumulator tracks the weighted energy and peak of one focus band.
type Accumulator struct {
	filter bandpass.Filter
	band   gate.Band
	level  timestats.Level
}

// NewAccumulator builds the bandpass filter for band at sampleRate.
func NewAccumulator(band gate.Band, sampleRate float64) (Accumulator, error) {
	if !(band.Weight > 0) || math.IsInf(band.Weight, 0) {
		return Accumulator{}, fmt.Errorf("%w: %v", ErrInvalidWeight, band.Weight)
	}

	f, err := bandpass.New(band.LowHz, band.HighHz, sampleRate)
	if err != nil {
		return Accumulator{}, err
	}

	return Accumulator{filter: f, band: band}, nil
}

// Consume filters x, folds the weighted magnitude into the running sums
// and returns it.
func (a *Accumulator) Consume(x float64) float64 {
	m := math.Abs(a.filter.Process(x)) * a.band.Weight
	a.level.Add(m)

	return m
}

// RMS returns sqrt(SumSquares/count), 0 when count is 0.
func (a *Accumulator) RMS(count int) float64 {
	return a.level.RMSOver(count)
}

// SumSquares returns the accumulated weighted energy.
func (a *Accumulator) SumSquares() float64 {
	return a.level.SumSquares()
}

// Peak returns the largest weighted magnitude seen.
func (a *Accumulator) Peak() float64 {
	return a.level.Peak()
}

// Band returns the configured band.
func (a *Accumulator) Band() gate.Band {
	return a.band
}

// Reset clears filter state and sums.
func (a *Accumulator) Reset() {
	a.filter.Reset()
	a.level.Reset()
}
