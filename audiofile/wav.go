package audiofile

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

// WAVDecoder decodes integer PCM WAV data.
type WAVDecoder struct {
	dec    *wav.Decoder
	format Format
	scale  float64
	offset int
	buf    *audio.IntBuffer
	closer io.Closer
}

// OpenWAV opens a WAV file. Closing the decoder closes the file.
func OpenWAV(path string) (*WAVDecoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audiofile: open %s: %w", path, err)
	}

	d, err := NewWAVDecoder(f)
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("%s: %w", path, err)
	}

	d.closer = f

	return d, nil
}

// NewWAVDecoder reads the WAV header from rs and positions it at the
// sample data.
func NewWAVDecoder(rs io.ReadSeeker) (*WAVDecoder, error) {
	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrInvalidFile
	}

	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: wav encoding %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	bits := int(dec.BitDepth)
	channels := int(dec.NumChans)

	switch {
	case channels < 1:
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidFile, channels)
	case bits != 8 && bits != 16 && bits != 24 && bits != 32:
		return nil, fmt.Errorf("%w: %d-bit pcm", ErrUnsupportedFormat, bits)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	d := &WAVDecoder{
		dec: dec,
		format: Format{
			SampleRate: float64(dec.SampleRate),
			Channels:   channels,
			BitDepth:   bits,
			Frames:     dec.PCMSize / (channels * bits / 8),
		},
		scale: 1 / float64(int64(1)<<(bits-1)),
		buf:   &audio.IntBuffer{Format: dec.Format()},
	}

	// 8-bit WAV is unsigned.
	if bits == 8 {
		d.offset = 128
	}

	return d, nil
}

// Format implements [Decoder].
func (d *WAVDecoder) Format() Format {
	return d.format
}

// ReadBlock implements [Decoder].
func (d *WAVDecoder) ReadBlock(dst []float64) (int, error) {
	ch := d.format.Channels

	want := (len(dst) / ch) * ch
	if want == 0 {
		return 0, nil
	}

	if cap(d.buf.Data) < want {
		d.buf.Data = make([]int, want)
	}

	d.buf.Data = d.buf.Data[:want]

	n, err := d.dec.PCMBuffer(d.buf)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	frames := n / ch
	if frames == 0 {
		return 0, io.EOF
	}

	for i, v := range d.buf.Data[:frames*ch] {
		dst[i] = float64(v-d.offset) * d.scale
	}

	return frames, nil
}

// Close implements [Decoder].
func (d *WAVDecoder) Close() error {
	if d.closer == nil {
		return nil
	}

	err := d.closer.Close()
	d.closer = nil

	return err
}

// WriteWAV encodes interleaved samples as integer PCM. Samples are clipped
// to [-1, 1].
func WriteWAV(w io.WriteSeeker, samples []float64, sampleRate, channels, bitDepth int) error {
	if channels < 1 || sampleRate <= 0 {
		return fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, channels, sampleRate)
	}

	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return fmt.Errorf("%w: %d-bit pcm", ErrUnsupportedFormat, bitDepth)
	}

	full := float64(int64(1)<<(bitDepth-1) - 1)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(min(1, max(-1, s)) * full)
	}

	enc := wav.NewEncoder(w, sampleRate, bitDepth, channels, wavFormatPCM)

	err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	})
	if err != nil {
		return fmt.Errorf("audiofile: encode wav: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("audiofile: finish wav: %w", err)
	}

	return nil
}

// CreateWAV writes samples to a new WAV file at path.
func CreateWAV(path string, samples []float64, sampleRate, channels, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audiofile: create %s: %w", path, err)
	}

	if err := WriteWAV(f, samples, sampleRate, channels, bitDepth); err != nil {
		_ = f.Close()

		return err
	}

	return f.Close()
}
