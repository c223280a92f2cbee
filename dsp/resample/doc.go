// Package resample provides rational sample-rate conversion using polyphase FIR
// filtering with anti-aliasing defaults.
//
// The analysis path converts decoded stems to a fixed analysis rate block by
// block, so [Resampler.ProcessInto] keeps its working memory between calls
// and only grows it when a larger block arrives.
//
// Quality modes:
//   - QualityFast: 16 taps/phase, ~55 dB stopband
//   - QualityBalanced: 32 taps/phase, ~75 dB stopband (default)
//   - QualityBest: 64 taps/phase, ~90 dB stopband
package resample
