// Package dynamics provides the feed-forward envelope compressor used in the
// modulator's baseband conditioning chain.
package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-amtx/dsp/core"
)

// Default compressor parameters.
const (
	defaultThreshold = 0.5
	defaultRatio     = 3.0
	defaultAttackS   = 0.005
	defaultReleaseS  = 0.050
)

// EnvelopeCompressor is a per-channel feed-forward soft-knee compressor.
//
// The detector is a one-pole attack/release follower on |x|; the gain
// computer is the static linear-domain curve
//
//	gain = (env/threshold)^(1/ratio - 1)  for env > threshold, else 1
//
// so gain is always in (0, 1]. The compressor is mono; the pipeline owns one
// instance per channel. Parameter changes recompute coefficients and must
// happen outside the audio callback.
type EnvelopeCompressor struct {
	threshold float64
	ratio     float64

	attackCoeff  float64
	releaseCoeff float64
	exponent     float64 // 1/ratio - 1, cached

	sampleRate float64
	env        float64
}

// NewEnvelopeCompressor creates a compressor with the reference defaults
// (threshold 0.5, ratio 3:1, attack 5 ms, release 50 ms).
//
// Sample rate must be positive and finite.
func NewEnvelopeCompressor(sampleRate float64) (*EnvelopeCompressor, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("dynamics: sample rate must be positive and finite: %f", sampleRate)
	}

	c := &EnvelopeCompressor{sampleRate: sampleRate}

	if err := c.SetThreshold(defaultThreshold); err != nil {
		return nil, err
	}
	if err := c.SetRatio(defaultRatio); err != nil {
		return nil, err
	}
	if err := c.SetAttackSeconds(defaultAttackS); err != nil {
		return nil, err
	}
	if err := c.SetReleaseSeconds(defaultReleaseS); err != nil {
		return nil, err
	}

	return c, nil
}

// SetThreshold sets the linear threshold in (0, 1].
func (c *EnvelopeCompressor) SetThreshold(threshold float64) error {
	if threshold <= 0 || threshold > 1 || math.IsNaN(threshold) {
		return fmt.Errorf("dynamics: threshold must be in (0, 1]: %f", threshold)
	}

	c.threshold = threshold

	return nil
}

// SetRatio sets the compression ratio (> 1).
func (c *EnvelopeCompressor) SetRatio(ratio float64) error {
	if ratio <= 1 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return fmt.Errorf("dynamics: ratio must be > 1: %f", ratio)
	}

	c.ratio = ratio
	c.exponent = 1/ratio - 1

	return nil
}

// SetAttackSeconds derives the attack coefficient from a time constant via
// coef = 1 - exp(-1/(tau*fs)), giving sample-rate-independent behaviour.
func (c *EnvelopeCompressor) SetAttackSeconds(tau float64) error {
	coeff, err := c.coefficientFromSeconds(tau)
	if err != nil {
		return fmt.Errorf("dynamics: attack: %w", err)
	}

	c.attackCoeff = coeff

	return nil
}

// SetReleaseSeconds derives the release coefficient from a time constant.
func (c *EnvelopeCompressor) SetReleaseSeconds(tau float64) error {
	coeff, err := c.coefficientFromSeconds(tau)
	if err != nil {
		return fmt.Errorf("dynamics: release: %w", err)
	}

	c.releaseCoeff = coeff

	return nil
}

// SetCoefficients installs precomputed one-pole attack/release coefficients
// directly. Both must be in (0, 1]; 1 makes the detector track |x| exactly.
func (c *EnvelopeCompressor) SetCoefficients(attack, release float64) error {
	if attack <= 0 || attack > 1 || math.IsNaN(attack) {
		return fmt.Errorf("dynamics: attack coefficient must be in (0, 1]: %f", attack)
	}
	if release <= 0 || release > 1 || math.IsNaN(release) {
		return fmt.Errorf("dynamics: release coefficient must be in (0, 1]: %f", release)
	}

	c.attackCoeff = attack
	c.releaseCoeff = release

	return nil
}

func (c *EnvelopeCompressor) coefficientFromSeconds(tau float64) (float64, error) {
	if tau <= 0 || math.IsNaN(tau) || math.IsInf(tau, 0) {
		return 0, fmt.Errorf("time constant must be positive and finite: %f", tau)
	}

	return 1 - math.Exp(-1/(tau*c.sampleRate)), nil
}

// ProcessSample compresses one sample.
func (c *EnvelopeCompressor) ProcessSample(x float64) float64 {
	ax := math.Abs(x)

	coeff := c.releaseCoeff
	if ax > c.env {
		coeff = c.attackCoeff
	}

	// The release decay is geometric, so silence drives the detector into
	// denormal range; flush it to keep the loop out of slow paths.
	c.env = core.FlushDenormals(c.env + (ax-c.env)*coeff)

	if c.env <= c.threshold {
		return x
	}

	return x * math.Pow(c.env/c.threshold, c.exponent)
}

// ProcessBlock compresses a block in place. Zero-alloc.
func (c *EnvelopeCompressor) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = c.ProcessSample(x)
	}
}

// GainFor returns the static gain the computer would apply for a given
// envelope value, exposed for curve inspection.
func (c *EnvelopeCompressor) GainFor(env float64) float64 {
	if env <= c.threshold {
		return 1
	}

	return math.Pow(env/c.threshold, c.exponent)
}

// Envelope returns the detector state, always >= 0.
func (c *EnvelopeCompressor) Envelope() float64 {
	return c.env
}

// Threshold returns the linear threshold.
func (c *EnvelopeCompressor) Threshold() float64 {
	return c.threshold
}

// Ratio returns the compression ratio.
func (c *EnvelopeCompressor) Ratio() float64 {
	return c.ratio
}

// Reset clears the detector state.
func (c *EnvelopeCompressor) Reset() {
	c.env = 0
}
