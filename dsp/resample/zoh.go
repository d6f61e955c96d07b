// Package resample provides the zero-order-hold rate adapter that lets the
// baseband path run at the ADC's ceiling rate while modulation and
// post-filtering run at the full output rate.
package resample

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRate indicates an invalid input/output sample rate.
var ErrInvalidRate = errors.New("resample: invalid sample rate")

// ratioTolerance is the relative deviation from an integer ratio accepted by
// FactorFor.
const ratioTolerance = 0.01

// FactorFor returns the hold factor for an output rate and an input ceiling:
// round(fsOut/fsInMax) when that ratio is within 1% of an integer and >= 1,
// otherwise 1.
func FactorFor(fsOut, fsInMax float64) (int, error) {
	if fsOut <= 0 || math.IsNaN(fsOut) || math.IsInf(fsOut, 0) {
		return 0, fmt.Errorf("%w: output rate %g", ErrInvalidRate, fsOut)
	}
	if fsInMax <= 0 || math.IsNaN(fsInMax) || math.IsInf(fsInMax, 0) {
		return 0, fmt.Errorf("%w: input ceiling %g", ErrInvalidRate, fsInMax)
	}

	ratio := fsOut / fsInMax
	rounded := math.Round(ratio)
	if rounded < 1 {
		return 1, nil
	}

	if math.Abs(ratio-rounded)/rounded > ratioTolerance {
		return 1, nil
	}

	return int(rounded), nil
}

// Hold repeats each captured input sample for a fixed number of output
// frames. A countdown reaches zero when a fresh input sample is due; the
// caller runs its input-side processing then, caches the result with
// Capture, and reads the held value every output frame.
type Hold struct {
	factor int
	count  int
	held   []float64
}

// NewHold creates a hold with the given factor (>= 1) and channel count.
// The countdown starts at zero so the first output frame captures fresh
// input.
func NewHold(factor, channels int) (*Hold, error) {
	if factor < 1 {
		return nil, fmt.Errorf("resample: hold factor must be >= 1: %d", factor)
	}
	if channels < 1 {
		return nil, fmt.Errorf("resample: channel count must be >= 1: %d", channels)
	}

	return &Hold{
		factor: factor,
		held:   make([]float64, channels),
	}, nil
}

// Due reports whether a fresh input sample must be captured for this output
// frame.
func (h *Hold) Due() bool {
	return h.count == 0
}

// Capture stores a freshly processed input sample for channel ch.
func (h *Hold) Capture(ch int, v float64) {
	h.held[ch] = v
}

// Held returns the currently held sample for channel ch.
func (h *Hold) Held(ch int) float64 {
	return h.held[ch]
}

// Advance steps the countdown by one output frame: reloads to factor-1 when
// a capture was due, decrements otherwise. Call exactly once per output
// frame, after all channels were read.
func (h *Hold) Advance() {
	if h.count == 0 {
		h.count = h.factor - 1
		return
	}

	h.count--
}

// Factor returns the configured hold factor.
func (h *Hold) Factor() int {
	return h.factor
}

// InputRate returns the effective input rate for an output rate, the rate at
// which input-side filters must be designed.
func (h *Hold) InputRate(fsOut float64) float64 {
	return fsOut / float64(h.factor)
}

// Reset clears the countdown and held samples.
func (h *Hold) Reset() {
	h.count = 0
	for i := range h.held {
		h.held[i] = 0
	}
}
