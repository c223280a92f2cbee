package audiofile

import (
	"fmt"

	"github.com/cwbudde/algo-drumgate/dsp/core"
	"github.com/cwbudde/algo-drumgate/dsp/resample"
	vecmath "github.com/cwbudde/algo-vecmath"
)

// MonoConverter downmixes interleaved blocks to mono and resamples them to
// an output rate. Buffers are reused between calls.
type MonoConverter struct {
	channels int
	inRate   float64
	outRate  float64
	rs       *resample.Resampler

	mono    []float64
	channel []float64
	out     []float64
}

// NewMonoConverter builds a converter for channels interleaved channels at
// inRate producing mono at outRate. Equal rates skip resampling.
func NewMonoConverter(inRate float64, channels int, outRate float64, opts ...resample.Option) (*MonoConverter, error) {
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, channels)
	}

	if !(inRate > 0) || !(outRate > 0) || !core.IsFinite(inRate) || !core.IsFinite(outRate) {
		return nil, fmt.Errorf("%w: rate %g -> %g", ErrUnsupportedFormat, inRate, outRate)
	}

	c := &MonoConverter{channels: channels, inRate: inRate, outRate: outRate}

	if inRate != outRate {
		rs, err := resample.NewForRates(inRate, outRate, opts...)
		if err != nil {
			return nil, fmt.Errorf("audiofile: converter %g -> %g Hz: %w", inRate, outRate, err)
		}

		c.rs = rs
	}

	return c, nil
}

// OutputRate returns the rate of converted samples.
func (c *MonoConverter) OutputRate() float64 {
	return c.outRate
}

// Convert downmixes frames interleaved frames and returns mono samples at
// the output rate. The returned slice is reused by the next call.
func (c *MonoConverter) Convert(interleaved []float64, frames int) []float64 {
	frames = min(frames, len(interleaved)/c.channels)
	if frames <= 0 {
		return c.out[:0]
	}

	c.mono = core.EnsureLen(c.mono, frames)

	if c.channels == 1 {
		copy(c.mono, interleaved[:frames])
	} else {
		c.channel = core.EnsureLen(c.channel, frames)
		clear(c.mono)

		for ch := range c.channels {
			core.Deinterleave(c.channel, interleaved, c.channels, ch, frames)
			vecmath.AddBlockInPlace(c.mono, c.channel)
		}

		vecmath.ScaleBlock(c.mono, c.mono, 1/float64(c.channels))
	}

	if c.rs == nil {
		return c.mono
	}

	c.out = c.rs.ProcessInto(c.out, c.mono)

	return c.out
}

// Reset clears the resampler history.
func (c *MonoConverter) Reset() {
	if c.rs != nil {
		c.rs.Reset()
	}
}
