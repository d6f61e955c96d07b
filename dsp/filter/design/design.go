package design

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-amtx/dsp/core"
	"github.com/cwbudde/algo-amtx/dsp/filter/biquad"
)

// ErrInvalidCoefficient is returned when designer parameters are out of range
// or would produce a degenerate (non-normalisable) section.
var ErrInvalidCoefficient = errors.New("design: invalid coefficient parameters")

// a0Epsilon is the smallest |a0| accepted before normalisation.
const a0Epsilon = 1e-12

// DefaultQ is the Butterworth quality factor 1/sqrt(2).
const DefaultQ = 1 / math.Sqrt2

// Lowpass designs a lowpass biquad at freq (Hz) with quality factor q.
func Lowpass(freq, q, sampleRate float64) (biquad.Coefficients, error) {
	w0, err := normalizedW0(freq, sampleRate)
	if err != nil {
		return biquad.Coefficients{}, err
	}
	if err := validateQ(q); err != nil {
		return biquad.Coefficients{}, err
	}

	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b0 := (1 - cw) / 2
	b1 := 1 - cw
	b2 := (1 - cw) / 2
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// Highpass designs a highpass biquad at freq (Hz) with quality factor q.
func Highpass(freq, q, sampleRate float64) (biquad.Coefficients, error) {
	w0, err := normalizedW0(freq, sampleRate)
	if err != nil {
		return biquad.Coefficients{}, err
	}
	if err := validateQ(q); err != nil {
		return biquad.Coefficients{}, err
	}

	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b0 := (1 + cw) / 2
	b1 := -(1 + cw)
	b2 := (1 + cw) / 2
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// Bandpass designs a constant-skirt-gain bandpass biquad. The gain at the
// centre frequency equals Q.
func Bandpass(freq, q, sampleRate float64) (biquad.Coefficients, error) {
	w0, err := normalizedW0(freq, sampleRate)
	if err != nil {
		return biquad.Coefficients{}, err
	}
	if err := validateQ(q); err != nil {
		return biquad.Coefficients{}, err
	}

	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b0 := sw / 2
	b1 := 0.0
	b2 := -sw / 2
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// Notch designs a notch biquad centered at freq (Hz).
func Notch(freq, q, sampleRate float64) (biquad.Coefficients, error) {
	w0, err := normalizedW0(freq, sampleRate)
	if err != nil {
		return biquad.Coefficients{}, err
	}
	if err := validateQ(q); err != nil {
		return biquad.Coefficients{}, err
	}

	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b0 := 1.0
	b1 := -2 * cw
	b2 := 1.0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// Allpass designs an allpass biquad centered at freq (Hz).
func Allpass(freq, q, sampleRate float64) (biquad.Coefficients, error) {
	w0, err := normalizedW0(freq, sampleRate)
	if err != nil {
		return biquad.Coefficients{}, err
	}
	if err := validateQ(q); err != nil {
		return biquad.Coefficients{}, err
	}

	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b0 := 1 - alpha
	b1 := -2 * cw
	b2 := 1 + alpha
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// Peak designs a peaking-EQ biquad with gain in dB.
//
// At 0 dB gain the numerator and denominator coincide and the section is an
// exact algebraic identity.
func Peak(freq, gainDB, q, sampleRate float64) (biquad.Coefficients, error) {
	w0, err := normalizedW0(freq, sampleRate)
	if err != nil {
		return biquad.Coefficients{}, err
	}
	if err := validateQ(q); err != nil {
		return biquad.Coefficients{}, err
	}
	if err := validateGain(gainDB); err != nil {
		return biquad.Coefficients{}, err
	}

	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)
	a := math.Pow(10, gainDB/40)

	b0 := 1 + alpha*a
	b1 := -2 * cw
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cw
	a2 := 1 - alpha/a

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// LowShelf designs a low-shelf biquad with gain in dB.
func LowShelf(freq, gainDB, q, sampleRate float64) (biquad.Coefficients, error) {
	w0, err := normalizedW0(freq, sampleRate)
	if err != nil {
		return biquad.Coefficients{}, err
	}
	if err := validateQ(q); err != nil {
		return biquad.Coefficients{}, err
	}
	if err := validateGain(gainDB); err != nil {
		return biquad.Coefficients{}, err
	}

	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)
	a := math.Pow(10, gainDB/40)
	beta := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) - (a-1)*cw + beta)
	b1 := 2 * a * ((a - 1) - (a+1)*cw)
	b2 := a * ((a + 1) - (a-1)*cw - beta)
	a0 := (a + 1) + (a-1)*cw + beta
	a1 := -2 * ((a - 1) + (a+1)*cw)
	a2 := (a + 1) + (a-1)*cw - beta

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// HighShelf designs a high-shelf biquad with gain in dB.
func HighShelf(freq, gainDB, q, sampleRate float64) (biquad.Coefficients, error) {
	w0, err := normalizedW0(freq, sampleRate)
	if err != nil {
		return biquad.Coefficients{}, err
	}
	if err := validateQ(q); err != nil {
		return biquad.Coefficients{}, err
	}
	if err := validateGain(gainDB); err != nil {
		return biquad.Coefficients{}, err
	}

	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)
	a := math.Pow(10, gainDB/40)
	beta := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) + (a-1)*cw + beta)
	b1 := -2 * a * ((a - 1) + (a+1)*cw)
	b2 := a * ((a + 1) + (a-1)*cw - beta)
	a0 := (a + 1) - (a-1)*cw + beta
	a1 := 2 * ((a - 1) - (a+1)*cw)
	a2 := (a + 1) - (a-1)*cw - beta

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

func normalizedW0(freq, sampleRate float64) (float64, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return 0, fmt.Errorf("%w: sample rate must be > 0: %g", ErrInvalidCoefficient, sampleRate)
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || !core.IsFinite(freq) {
		return 0, fmt.Errorf("%w: frequency must be in (0, fs/2): %g at fs %g",
			ErrInvalidCoefficient, freq, sampleRate)
	}

	return 2 * math.Pi * freq / sampleRate, nil
}

func validateQ(q float64) error {
	if q <= 0 || !core.IsFinite(q) {
		return fmt.Errorf("%w: Q must be > 0: %g", ErrInvalidCoefficient, q)
	}
	return nil
}

func validateGain(gainDB float64) error {
	if !core.IsFinite(gainDB) {
		return fmt.Errorf("%w: gain must be finite: %g", ErrInvalidCoefficient, gainDB)
	}
	return nil
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) (biquad.Coefficients, error) {
	if math.Abs(a0) < a0Epsilon || !core.IsFinite(a0) {
		return biquad.Coefficients{}, fmt.Errorf("%w: degenerate a0: %g", ErrInvalidCoefficient, a0)
	}

	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}, nil
}
