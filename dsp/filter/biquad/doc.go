// Package biquad provides biquad (second-order IIR) filter runtime primitives.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. Sections are plain values:
// they can be embedded in fixed-size arrays and copied without aliasing state.
// Multiple sections can be cascaded via [Chain].
//
// This package provides the processing runtime only. Coefficient design
// lives in dsp/filter/design.
package biquad
