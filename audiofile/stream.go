package audiofile

import (
	"context"
	"errors"
	"io"
)

// DefaultBlockFrames is the decode block size used when none is given.
const DefaultBlockFrames = 4096

// StreamMono reads dec block by block, converts each block with conv and
// hands the mono samples to fn. It stops when the decoder is exhausted,
// after maxFrames mono frames (0 means no limit), or when ctx is done.
//
// It returns the number of mono frames delivered. Exhaustion and the frame
// limit return a nil error, cancellation returns ctx.Err(), and decode or
// fn errors are returned as is.
func StreamMono(ctx context.Context, dec Decoder, conv *MonoConverter, blockFrames, maxFrames int, fn func(mono []float64) error) (int, error) {
	if blockFrames <= 0 {
		blockFrames = DefaultBlockFrames
	}

	buf := make([]float64, blockFrames*dec.Format().Channels)
	delivered := 0

	for maxFrames <= 0 || delivered < maxFrames {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}

		n, err := dec.ReadBlock(buf)
		if n > 0 {
			mono := conv.Convert(buf, n)
			if maxFrames > 0 {
				mono = mono[:min(len(mono), maxFrames-delivered)]
			}

			if len(mono) > 0 {
				if ferr := fn(mono); ferr != nil {
					return delivered, ferr
				}

				delivered += len(mono)
			}
		}

		switch {
		case errors.Is(err, io.EOF):
			return delivered, nil
		case err != nil:
			return delivered, err
		case n == 0:
			// A decoder that makes no progress without an error is done.
			return delivered, nil
		}
	}

	return delivered, nil
}
