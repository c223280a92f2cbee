package dynamics

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-drumgate/dsp/core"
	"github.com/cwbudde/algo-drumgate/gate"
	"github.com/cwbudde/algo-vecmath"
)

// gainBlock is the number of frames whose gains are computed before they
// are applied to every channel.
const gainBlock = 512

var (
	// ErrNotAllocated is returned by [GateBank.Reconfigure] before
	// [GateBank.Allocate].
	ErrNotAllocated = errors.New("dynamics: gate bank not allocated")
	// ErrInvalidChannels is returned by [GateBank.Allocate] for a
	// non-positive channel count.
	ErrInvalidChannels = errors.New("dynamics: invalid channel count")
)

// GateBank gates a multichannel buffer with one linked detector: the
// loudest channel of each frame drives a single gain that is applied to
// every channel, so a stereo drum image never shifts while the gate moves.
//
// Allocate prepares all state. Reconfigure and Process never allocate and
// are safe to call from an audio callback.
type GateBank struct {
	detector *Gate
	channels int
	gains    []float64
}

// NewGateBank returns an unallocated bank.
func NewGateBank() *GateBank {
	return &GateBank{}
}

// Allocate sizes the bank for channels at sampleRate and resets it.
func (b *GateBank) Allocate(channels int, sampleRate float64) error {
	if channels <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}

	if b.detector == nil {
		g, err := NewGate(sampleRate)
		if err != nil {
			return err
		}

		b.detector = g
	} else if err := b.detector.SetSampleRate(sampleRate); err != nil {
		return err
	}

	b.channels = channels
	b.gains = make([]float64, gainBlock)
	b.detector.Reset()

	return nil
}

// Reconfigure applies s at sampleRate. The hold time is the lower end of
// the profile's hold range, zero without a profile. An absent floor mutes
// the closed gate. On error the previous configuration stays in effect.
func (b *GateBank) Reconfigure(s gate.Settings, sampleRate float64, profile *gate.Profile) error {
	if b.detector == nil {
		return ErrNotAllocated
	}

	if !validSampleRate(sampleRate) {
		return fmt.Errorf("gate sample rate must be positive and finite: %f", sampleRate)
	}

	if err := s.Validate(); err != nil {
		return err
	}

	hold := 0.0
	if profile != nil {
		hold = core.Clamp(profile.HoldRange.Min, minGateHold, maxGateHold)
	}

	g := b.detector
	g.sampleRate = sampleRate
	g.thresholdDB = s.ThresholdDB
	g.attack = core.Clamp(s.Attack, minGateAttack, maxGateAttack)
	g.release = core.Clamp(s.Release, minGateRelease, maxGateRelease)
	g.hold = hold
	g.floorDB = s.FloorDB
	g.updateCoefficients()

	if g.holdCounter > g.holdSamples {
		g.holdCounter = g.holdSamples
	}

	return nil
}

// Process gates the first frames samples of every channel in buf in place.
// Channels shorter than frames limit the block. An unallocated bank leaves
// buf untouched.
func (b *GateBank) Process(buf [][]float64, frames int) {
	if b.detector == nil || len(buf) == 0 {
		return
	}

	for _, ch := range buf {
		frames = min(frames, len(ch))
	}

	for start := 0; start < frames; start += len(b.gains) {
		n := min(len(b.gains), frames-start)
		gains := b.gains[:n]

		for i := range gains {
			level := 0.0
			for _, ch := range buf {
				level = max(level, abs(ch[start+i]))
			}

			gains[i] = b.detector.Gain(level)
			b.detector.updateOutputPeak(level * gains[i])
		}

		for _, ch := range buf {
			vecmath.MulBlockInPlace(ch[start:start+n], gains)
		}
	}
}

// Reset clears detector state and metrics.
func (b *GateBank) Reset() {
	if b.detector != nil {
		b.detector.Reset()
	}
}

// Channels returns the allocated channel count.
func (b *GateBank) Channels() int { return b.channels }

// Gate returns the linked detector, nil before Allocate.
func (b *GateBank) Gate() *Gate { return b.detector }

// Metrics returns the linked detector's metering values.
func (b *GateBank) Metrics() GateMetrics {
	if b.detector == nil {
		return GateMetrics{GainReduction: 1.0}
	}

	return b.detector.Metrics()
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}

	return x
}
