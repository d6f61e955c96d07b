// Package hilbert provides a linear-phase windowed-sinc FIR Hilbert
// transformer.
//
// The tap table approximates the ideal 90-degree phase shifter, truncated to
// an even length and shaped with a 4-term Blackman-Harris window. Taps are
// designed once with [DesignTaps] and shared read-only across channels; each
// channel keeps its own circular delay line while all channels share a single
// write index advanced once per frame by the caller.
//
// The transformer introduces a fixed group delay of (N-1)/2 samples and is
// accurate between DC and Nyquist except near the band edges.
package hilbert
