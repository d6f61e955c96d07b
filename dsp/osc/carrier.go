// Package osc provides the deterministic carrier phase-accumulator
// oscillator for the modulation stage.
package osc

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-amtx/dsp/core"
)

const twoPi = 2 * math.Pi

// Form selects the carrier waveform.
type Form int

const (
	// FormSine is the bipolar carrier sin(phi), used for ring modulation
	// and DSB AM.
	FormSine Form = iota
	// FormUnipolar is the offset carrier (1+sin(phi))/2 in [0, 1], the
	// reference hardware's pure-AM form.
	FormUnipolar
)

// Carrier is a sinusoidal phase-accumulator oscillator. Phase advances by a
// fixed increment per sample and is wrapped to [0, 2*pi) after every tick.
type Carrier struct {
	form  Form
	inc   float64
	phase float64
}

// NewCarrier creates a carrier oscillator at freq Hz for the given output
// sample rate. The frequency must lie in (0, sampleRate/2).
func NewCarrier(form Form, freq, sampleRate float64) (*Carrier, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("osc: sample rate must be > 0: %g", sampleRate)
	}
	if freq <= 0 || freq >= sampleRate/2 || !core.IsFinite(freq) {
		return nil, fmt.Errorf("osc: carrier frequency must be in (0, fs/2): %g at fs %g", freq, sampleRate)
	}
	if form != FormSine && form != FormUnipolar {
		return nil, fmt.Errorf("osc: unknown carrier form: %d", form)
	}

	return &Carrier{
		form: form,
		inc:  twoPi * freq / sampleRate,
	}, nil
}

// Tick returns the carrier value at the current phase, then advances and
// wraps the phase.
func (c *Carrier) Tick() float64 {
	s := math.Sin(c.phase)

	c.phase += c.inc
	if c.phase >= twoPi {
		c.phase -= twoPi
	}

	if c.form == FormUnipolar {
		return (1 + s) / 2
	}

	return s
}

// Phase returns the accumulator state, always in [0, 2*pi).
func (c *Carrier) Phase() float64 {
	return c.phase
}

// Increment returns the per-sample phase step.
func (c *Carrier) Increment() float64 {
	return c.inc
}

// Reset rewinds the phase to zero.
func (c *Carrier) Reset() {
	c.phase = 0
}
