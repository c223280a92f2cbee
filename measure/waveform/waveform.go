// Package waveform builds binned amplitude envelopes of audio signals.
//
// An envelope holds one value per fixed-duration bin (absolute peak or RMS
// of the samples in that bin) plus the global peak magnitude. It is the
// amplitude input of the gate suggester.
package waveform

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-drumgate/audiofile"
	timestats "github.com/cwbudde/algo-drumgate/stats/time"
)

// DefaultBinDuration is the bin length in seconds.
const DefaultBinDuration = 0.01

// ErrInvalidRate is returned for non-positive or non-finite sample rates.
var ErrInvalidRate = errors.New("waveform: invalid sample rate")

// Mode selects the per-bin reduction.
type Mode int

const (
	// ModePeak stores the absolute peak of every bin.
	ModePeak Mode = iota
	// ModeRMS stores the RMS of every bin.
	ModeRMS
)

func (m Mode) String() string {
	switch m {
	case ModePeak:
		return "peak"
	case ModeRMS:
		return "rms"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Data is an immutable binned envelope.
type Data struct {
	Bins        []float64
	Peak        float64
	BinDuration float64 // seconds per bin
}

// Duration returns the covered time in seconds.
func (d Data) Duration() float64 {
	return float64(len(d.Bins)) * d.BinDuration
}

type config struct {
	binDuration float64
	mode        Mode
}

// Option configures envelope extraction.
type Option func(*config)

// WithBinDuration sets the bin length in seconds. Non-positive values are ignored.
func WithBinDuration(seconds float64) Option {
	return func(c *config) {
		if seconds > 0 && !math.IsInf(seconds, 0) {
			c.binDuration = seconds
		}
	}
}

// WithMode selects peak or RMS bins.
func WithMode(m Mode) Option {
	return func(c *config) {
		c.mode = m
	}
}

// Builder accumulates an envelope from a stream of mono samples.
type Builder struct {
	cfg     config
	binSize int
	current timestats.Level
	bins    []float64
	peak    float64
}

// NewBuilder returns a builder for samples at sampleRate.
func NewBuilder(sampleRate float64, opts ...Option) (*Builder, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRate, sampleRate)
	}

	cfg := config{binDuration: DefaultBinDuration, mode: ModePeak}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Builder{
		cfg:     cfg,
		binSize: max(1, int(math.Round(cfg.binDuration*sampleRate))),
	}, nil
}

// Write appends mono samples.
func (b *Builder) Write(samples []float64) {
	for _, x := range samples {
		b.current.Add(x)

		if b.current.Count() == b.binSize {
			b.flush()
		}
	}
}

func (b *Builder) flush() {
	v := b.current.Peak()
	if b.cfg.mode == ModeRMS {
		v = b.current.RMS()
	}

	b.bins = append(b.bins, v)
	b.peak = math.Max(b.peak, b.current.Peak())
	b.current.Reset()
}

// Data finishes a trailing partial bin and returns the envelope. The
// builder must not be written to afterwards.
func (b *Builder) Data() Data {
	if b.current.Count() > 0 {
		b.flush()
	}

	return Data{
		Bins:        b.bins,
		Peak:        b.peak,
		BinDuration: b.cfg.binDuration,
	}
}

// Extract builds the envelope of a mono signal.
func Extract(samples []float64, sampleRate float64, opts ...Option) (Data, error) {
	b, err := NewBuilder(sampleRate, opts...)
	if err != nil {
		return Data{}, err
	}

	b.Write(samples)

	return b.Data(), nil
}

// FromDecoder downmixes dec to mono at its native rate and builds the
// envelope of the whole stream.
func FromDecoder(ctx context.Context, dec audiofile.Decoder, opts ...Option) (Data, error) {
	f := dec.Format()

	conv, err := audiofile.NewMonoConverter(f.SampleRate, f.Channels, f.SampleRate)
	if err != nil {
		return Data{}, err
	}

	b, err := NewBuilder(f.SampleRate, opts...)
	if err != nil {
		return Data{}, err
	}

	_, err = audiofile.StreamMono(ctx, dec, conv, 0, 0, func(mono []float64) error {
		b.Write(mono)
		return nil
	})
	if err != nil {
		return Data{}, fmt.Errorf("waveform: %w", err)
	}

	return b.Data(), nil
}
