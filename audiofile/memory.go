package audiofile

import (
	"fmt"
	"io"
)

// MemoryDecoder serves interleaved samples held in memory.
type MemoryDecoder struct {
	samples    []float64
	format     Format
	pos        int // frames
	failAfter  int
	failErr    error
	closeCalls int
}

// MemoryOption configures a [MemoryDecoder].
type MemoryOption func(*MemoryDecoder)

// WithReadError makes ReadBlock fail with err once afterFrames frames have
// been delivered.
func WithReadError(afterFrames int, err error) MemoryOption {
	return func(d *MemoryDecoder) {
		d.failAfter = afterFrames
		d.failErr = err
	}
}

// NewMemoryDecoder returns a decoder over interleaved samples.
func NewMemoryDecoder(samples []float64, channels int, sampleRate float64, opts ...MemoryOption) (*MemoryDecoder, error) {
	if channels < 1 || !(sampleRate > 0) {
		return nil, fmt.Errorf("%w: %d channels at %g Hz", ErrUnsupportedFormat, channels, sampleRate)
	}

	d := &MemoryDecoder{
		samples: samples,
		format: Format{
			SampleRate: sampleRate,
			Channels:   channels,
			BitDepth:   64,
			Frames:     len(samples) / channels,
		},
	}

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Format implements [Decoder].
func (d *MemoryDecoder) Format() Format {
	return d.format
}

// ReadBlock implements [Decoder].
func (d *MemoryDecoder) ReadBlock(dst []float64) (int, error) {
	ch := d.format.Channels

	frames := min(len(dst)/ch, d.format.Frames-d.pos)
	if d.failErr != nil {
		if d.pos >= d.failAfter {
			return 0, d.failErr
		}

		frames = min(frames, d.failAfter-d.pos)
	}

	if frames <= 0 {
		if len(dst) < ch {
			return 0, nil
		}

		return 0, io.EOF
	}

	copy(dst, d.samples[d.pos*ch:(d.pos+frames)*ch])
	d.pos += frames

	return frames, nil
}

// Close implements [Decoder].
func (d *MemoryDecoder) Close() error {
	d.closeCalls++

	return nil
}

// Closed reports whether Close has been called.
func (d *MemoryDecoder) Closed() bool {
	return d.closeCalls > 0
}

// Rewind restarts reading from the first frame.
func (d *MemoryDecoder) Rewind() {
	d.pos = 0
}
