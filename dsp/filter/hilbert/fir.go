package hilbert

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
)

// Processor is a stateful multi-channel windowed-sinc Hilbert transformer.
//
// The tap table is computed once and read-only afterwards. Channels own
// separate delay lines but share one write index, so the caller must process
// every channel for a frame and then call [Processor.Advance] exactly once.
type Processor struct {
	taps []float64
	rev  []float64 // taps reversed, for seam-split dot products

	state [][]float64
	k     int
}

// NewProcessor creates a Hilbert processor with numTaps taps (even, >= 8)
// and the given channel count.
func NewProcessor(numTaps, channels int) (*Processor, error) {
	if channels < 1 {
		return nil, fmt.Errorf("hilbert: channel count must be >= 1: %d", channels)
	}

	taps, err := DesignTaps(numTaps)
	if err != nil {
		return nil, err
	}

	rev := make([]float64, len(taps))
	for i, t := range taps {
		rev[len(taps)-1-i] = t
	}

	state := make([][]float64, channels)
	for ch := range state {
		state[ch] = make([]float64, len(taps))
	}

	return &Processor{
		taps:  taps,
		rev:   rev,
		state: state,
	}, nil
}

// ProcessSample writes x into channel ch's delay line at the shared write
// index and returns the convolution of the tap table with the delay line.
// It does not advance the write index; call Advance once per frame.
func (p *Processor) ProcessSample(ch int, x float64) float64 {
	st := p.state[ch]
	st[p.k] = x

	// y = sum_i taps[i] * st[(k-i) mod N]. Substituting j = N-1-i turns the
	// wrapped sum into two contiguous dot products against the reversed
	// taps, split at the ring seam.
	split := len(st) - 1 - p.k

	return vecmath.DotProduct(p.rev[:split], st[p.k+1:]) +
		vecmath.DotProduct(p.rev[split:], st[:p.k+1])
}

// Advance steps the shared write index by one frame, wrapping at the tap
// count.
func (p *Processor) Advance() {
	p.k++
	if p.k == len(p.taps) {
		p.k = 0
	}
}

// ProcessBlock transforms a single-channel block in place, advancing the
// write index per frame. Only valid for single-channel processors or when
// the caller owns all channels' cadence.
func (p *Processor) ProcessBlock(ch int, buf []float64) {
	for i, x := range buf {
		buf[i] = p.ProcessSample(ch, x)
		p.Advance()
	}
}

// Taps returns a copy of the windowed tap table.
func (p *Processor) Taps() []float64 {
	out := make([]float64, len(p.taps))
	copy(out, p.taps)

	return out
}

// NumTaps returns the FIR length.
func (p *Processor) NumTaps() int {
	return len(p.taps)
}

// Channels returns the channel count.
func (p *Processor) Channels() int {
	return len(p.state)
}

// GroupDelay returns the fixed delay in samples, (N-1)/2.
func (p *Processor) GroupDelay() int {
	return (len(p.taps) - 1) / 2
}

// WriteIndex returns the shared write index, always in [0, NumTaps).
func (p *Processor) WriteIndex() int {
	return p.k
}

// Reset clears all delay lines and the write index.
func (p *Processor) Reset() {
	for ch := range p.state {
		for i := range p.state[ch] {
			p.state[ch][i] = 0
		}
	}

	p.k = 0
}
