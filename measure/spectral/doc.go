// Package spectral characterizes how much of a stem's energy sits in the
// focus bands of an instrument profile.
//
// The [Analyzer] streams a decoded file at a fixed analysis rate, runs every
// sample through a short sidechain EQ and a bank of weighted bandpass
// [Accumulator]s, and condenses the result into a [Snapshot]: aggregate
// focus-band level, the off-band residual used as a bleed estimate, and
// broadband level. The residual of a sample is the part of its magnitude not
// explained by the strongest weighted band, max(0, |x| - 0.5*focusMax).
package spectral
