// Package audiofile decodes audio files into interleaved float64 blocks and
// converts them to mono at an analysis sample rate.
//
// Decoders are pulled block by block so long stems never have to fit in
// memory. WAV files are read with go-audio/wav; [MemoryDecoder] serves
// in-memory buffers and tests.
package audiofile
