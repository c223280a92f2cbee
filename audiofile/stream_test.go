package audiofile

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func newMono(t *testing.T, frames int, opts ...MemoryOption) (*MemoryDecoder, *MonoConverter) {
	t.Helper()

	dec, err := NewMemoryDecoder(make([]float64, frames), 1, 8000, opts...)
	if err != nil {
		t.Fatal(err)
	}

	conv, err := NewMonoConverter(8000, 1, 8000)
	if err != nil {
		t.Fatal(err)
	}

	return dec, conv
}

func TestStreamMonoReadsToEnd(t *testing.T) {
	dec, conv := newMono(t, 1000)

	blocks := 0

	n, err := StreamMono(context.Background(), dec, conv, 300, 0, func(mono []float64) error {
		blocks++
		return nil
	})
	if err != nil || n != 1000 {
		t.Fatalf("StreamMono() = %d, %v; want 1000, nil", n, err)
	}

	if blocks != 4 {
		t.Fatalf("callback ran %d times, want 4", blocks)
	}
}

func TestStreamMonoStopsAtLimit(t *testing.T) {
	dec, conv := newMono(t, 1000)

	var seen int

	n, err := StreamMono(context.Background(), dec, conv, 300, 450, func(mono []float64) error {
		seen += len(mono)
		return nil
	})
	if err != nil || n != 450 || seen != 450 {
		t.Fatalf("StreamMono() = %d (seen %d), %v; want 450", n, seen, err)
	}
}

func TestStreamMonoCancellation(t *testing.T) {
	dec, conv := newMono(t, 1000)
	ctx, cancel := context.WithCancel(context.Background())

	n, err := StreamMono(ctx, dec, conv, 100, 0, func(mono []float64) error {
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}

	if n != 100 {
		t.Fatalf("delivered %d frames before cancel, want 100", n)
	}
}

func TestStreamMonoPropagatesErrors(t *testing.T) {
	boom := errors.New("truncated")
	dec, conv := newMono(t, 1000, WithReadError(250, boom))

	n, err := StreamMono(context.Background(), dec, conv, 100, 0, func([]float64) error { return nil })
	if !errors.Is(err, boom) {
		t.Fatalf("decode error = %v, want %v", err, boom)
	}

	if n != 250 {
		t.Fatalf("delivered %d frames, want 250", n)
	}

	stop := errors.New("stop")
	dec, conv = newMono(t, 1000)

	if _, err := StreamMono(context.Background(), dec, conv, 100, 0, func([]float64) error { return stop }); !errors.Is(err, stop) {
		t.Fatalf("callback error = %v, want %v", err, stop)
	}
}

func TestLoggingOpener(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	mem, err := NewMemoryDecoder(make([]float64, 44100), 1, 44100)
	if err != nil {
		t.Fatal(err)
	}

	open := LoggingOpener(func(path string) (Decoder, error) {
		if path == "missing.wav" {
			return nil, ErrInvalidFile
		}

		return mem, nil
	}, logger)

	if _, err := open("stem.wav"); err != nil {
		t.Fatalf("open() error = %v", err)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.DebugLevel || entry.Data["seconds"] != 1.0 {
		t.Fatalf("unexpected log entry %+v", entry)
	}

	if _, err := open("missing.wav"); !errors.Is(err, ErrInvalidFile) {
		t.Fatalf("open(missing) error = %v", err)
	}

	if hook.LastEntry().Level != logrus.WarnLevel {
		t.Fatalf("failure logged at %v, want warning", hook.LastEntry().Level)
	}
}
