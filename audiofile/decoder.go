package audiofile

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	// ErrUnsupportedFormat is returned for containers, encodings or channel
	// layouts this package cannot decode.
	ErrUnsupportedFormat = errors.New("audiofile: unsupported format")
	// ErrInvalidFile is returned when a file cannot be parsed.
	ErrInvalidFile = errors.New("audiofile: invalid file")
)

// Format describes a decoded stream. Frames is 0 when the length is unknown.
type Format struct {
	SampleRate float64
	Channels   int
	BitDepth   int
	Frames     int
}

// Duration returns the stream length in seconds, 0 when unknown.
func (f Format) Duration() float64 {
	if f.SampleRate <= 0 {
		return 0
	}

	return float64(f.Frames) / f.SampleRate
}

// Decoder yields interleaved samples in [-1, 1].
//
// ReadBlock fills dst with whole frames (len(dst) should be a multiple of
// the channel count) and returns the number of frames read. It returns
// io.EOF once the stream is exhausted.
type Decoder interface {
	Format() Format
	ReadBlock(dst []float64) (frames int, err error)
	Close() error
}

// Opener opens a file for decoding.
type Opener func(path string) (Decoder, error)

// Open selects a decoder by file extension.
func Open(path string) (Decoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return OpenWAV(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoggingOpener wraps next and logs every open attempt.
func LoggingOpener(next Opener, log logrus.FieldLogger) Opener {
	if next == nil {
		next = Open
	}

	return func(path string) (Decoder, error) {
		dec, err := next(path)
		if err != nil {
			log.WithFields(logrus.Fields{
				"path":  path,
				"error": err,
			}).Warn("cannot open audio file")

			return nil, err
		}

		f := dec.Format()
		log.WithFields(logrus.Fields{
			"path":        path,
			"sample_rate": f.SampleRate,
			"channels":    f.Channels,
			"bit_depth":   f.BitDepth,
			"seconds":     f.Duration(),
		}).Debug("opened audio file")

		return dec, nil
	}
}
