// Package design provides digital IIR filter coefficient designers.
//
// The functions in this package produce biquad coefficients consumable by
// dsp/filter/biquad for runtime processing. All designers follow the RBJ
// audio-EQ cookbook and return zero [biquad.Coefficients] when the requested
// frequency is outside (0, Nyquist) or the sample rate is invalid.
package design
