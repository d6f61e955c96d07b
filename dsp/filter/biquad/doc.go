// Package biquad provides biquad (second-order IIR) filter runtime primitives.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. Multiple sections can be
// cascaded via [Chain], which is how the modulator's baseband and
// post-modulation filter stacks are built.
//
// This package provides the processing runtime only. Coefficient design
// (RBJ cookbook lowpass/highpass/peaking/shelving) lives in dsp/filter/design.
package biquad
