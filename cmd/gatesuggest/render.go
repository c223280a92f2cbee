package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-drumgate/audiofile"
	"github.com/cwbudde/algo-drumgate/dsp/core"
	"github.com/cwbudde/algo-drumgate/dsp/effects/dynamics"
	"github.com/cwbudde/algo-drumgate/gate"
	"github.com/cwbudde/algo-drumgate/host"
)

const renderBlockFrames = 1024

type renderStats struct {
	frames  int
	metrics dynamics.GateMetrics
}

func (s renderStats) maxReductionDB() float64 {
	return core.LinearToDB(max(s.metrics.GainReduction, 1e-6))
}

// renderGated plays src through a host configured with settings and
// writes the gated result to dst with the bit depth of the source.
func renderGated(ctx context.Context, open audiofile.Opener, src, dst string, settings gate.Settings, profile *gate.Profile) (renderStats, error) {
	dec, err := open(src)
	if err != nil {
		return renderStats{}, err
	}
	defer dec.Close()

	host.Initialize()

	bank := dynamics.NewGateBank()

	h, err := host.New(host.WithProcessor(bank))
	if err != nil {
		return renderStats{}, err
	}

	f := dec.Format()
	if err := h.AllocateResources(host.Format{SampleRate: f.SampleRate, Channels: f.Channels}); err != nil {
		return renderStats{}, err
	}
	defer h.DeallocateResources()

	h.Update(settings, profile)

	var (
		interleaved = make([]float64, renderBlockFrames*f.Channels)
		channels    = make([][]float64, f.Channels)
		out         = make([]float64, 0, max(f.Frames, 0)*f.Channels)
		got         int
		readErr     error
	)

	for c := range channels {
		channels[c] = make([]float64, renderBlockFrames)
	}

	pull := func(bufs [][]float64, frames int) host.Status {
		n, err := dec.ReadBlock(interleaved[:frames*f.Channels])
		if err != nil && !errors.Is(err, io.EOF) {
			readErr = err
			return host.StatusError
		}

		if n == 0 {
			return host.StatusEndOfStream
		}

		for c, ch := range bufs {
			core.Deinterleave(ch, interleaved, f.Channels, c, n)
			clear(ch[n:frames])
		}

		got = n

		return host.StatusOK
	}

	for {
		if err := ctx.Err(); err != nil {
			return renderStats{}, err
		}

		st := h.Render(channels, renderBlockFrames, pull)
		if st == host.StatusEndOfStream {
			break
		}

		if st != host.StatusOK {
			if readErr != nil {
				return renderStats{}, fmt.Errorf("render %s: %w", src, readErr)
			}

			return renderStats{}, fmt.Errorf("render %s: %v", src, st)
		}

		out = core.AppendInterleaved(out, channels, got)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return renderStats{}, err
	}

	bitDepth := f.BitDepth
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		bitDepth = 24
	}

	if err := audiofile.CreateWAV(dst, out, int(f.SampleRate), f.Channels, bitDepth); err != nil {
		return renderStats{}, err
	}

	return renderStats{frames: len(out) / f.Channels, metrics: bank.Metrics()}, nil
}
