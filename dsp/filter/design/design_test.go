package design

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-amtx/dsp/filter/biquad"
)

const fs = 96000.0

func TestPeakUnityGainIsIdentity(t *testing.T) {
	c, err := Peak(1000, 0, 1, fs)
	if err != nil {
		t.Fatal(err)
	}

	// At 0 dB, A = 1, so numerator and denominator coincide before
	// normalisation; after dividing by a0 the section is B0=1, B2=A2 and
	// B1=A1, i.e. output equals input.
	if math.Abs(c.B0-1) > 1e-15 {
		t.Errorf("B0 = %v, want 1", c.B0)
	}
	if math.Abs(c.B1-c.A1) > 1e-15 || math.Abs(c.B2-c.A2) > 1e-15 {
		t.Errorf("numerator/denominator mismatch: %+v", c)
	}

	s := biquad.NewSection(c)
	impulse := []float64{1, 0, 0, 0, 0, 0, 0, 0}
	for i, x := range impulse {
		y := s.ProcessSample(x)
		want := 0.0
		if i == 0 {
			want = 1
		}
		if math.Abs(y-want) > 1e-5 {
			t.Errorf("impulse sample %d: got %v, want %v", i, y, want)
		}
	}
}

func TestLowpassBoundaryGains(t *testing.T) {
	c, err := Lowpass(100, DefaultQ, fs)
	if err != nil {
		t.Fatal(err)
	}

	// DC gain: H(1) = (b0+b1+b2)/(1+a1+a2) = 1 for a lowpass.
	dc := (c.B0 + c.B1 + c.B2) / (1 + c.A1 + c.A2)
	if math.Abs(dc-1) > 1e-9 {
		t.Errorf("lowpass DC gain = %v, want 1", dc)
	}

	// Near Nyquist the lowpass should be strongly attenuated.
	if db := c.MagnitudeDB(fs/2*0.99, fs); db > -40 {
		t.Errorf("lowpass near-Nyquist gain = %v dB, want << 0", db)
	}
}

func TestHighpassBoundaryGains(t *testing.T) {
	c, err := Highpass(10000, DefaultQ, fs)
	if err != nil {
		t.Fatal(err)
	}

	// DC is the exact zero of a highpass: b0+b1+b2 = 0.
	if sum := c.B0 + c.B1 + c.B2; math.Abs(sum) > 1e-12 {
		t.Errorf("highpass numerator DC sum = %v, want 0", sum)
	}

	// Passband near Nyquist is unity.
	if db := c.MagnitudeDB(fs/2*0.99, fs); math.Abs(db) > 0.1 {
		t.Errorf("highpass near-Nyquist gain = %v dB, want 0", db)
	}
}

func TestShelfGains(t *testing.T) {
	const gainDB = 6.0

	ls, err := LowShelf(500, gainDB, DefaultQ, fs)
	if err != nil {
		t.Fatal(err)
	}
	if db := ls.MagnitudeDB(10, fs); math.Abs(db-gainDB) > 0.1 {
		t.Errorf("low shelf DC gain = %v dB, want %v", db, gainDB)
	}
	if db := ls.MagnitudeDB(40000, fs); math.Abs(db) > 0.1 {
		t.Errorf("low shelf HF gain = %v dB, want 0", db)
	}

	hs, err := HighShelf(5000, -gainDB, DefaultQ, fs)
	if err != nil {
		t.Fatal(err)
	}
	if db := hs.MagnitudeDB(10, fs); math.Abs(db) > 0.1 {
		t.Errorf("high shelf DC gain = %v dB, want 0", db)
	}
	if db := hs.MagnitudeDB(40000, fs); math.Abs(db+gainDB) > 0.1 {
		t.Errorf("high shelf HF gain = %v dB, want %v", db, -gainDB)
	}
}

func TestBandpassNotchAllpass(t *testing.T) {
	bp, err := Bandpass(1000, 2, fs)
	if err != nil {
		t.Fatal(err)
	}

	// The constant-skirt form peaks at Q, 20*log10(2) here.
	wantDB := 20 * math.Log10(2)
	if db := bp.MagnitudeDB(1000, fs); math.Abs(db-wantDB) > 0.01 {
		t.Errorf("bandpass centre gain = %v dB, want %v", db, wantDB)
	}

	n, err := Notch(1000, 2, fs)
	if err != nil {
		t.Fatal(err)
	}
	if mag := n.MagnitudeSquared(1000, fs); mag > 1e-20 {
		t.Errorf("notch centre |H|^2 = %v, want ~0", mag)
	}

	ap, err := Allpass(1000, 1, fs)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range []float64{100, 1000, 10000, 40000} {
		if db := ap.MagnitudeDB(f, fs); math.Abs(db) > 1e-9 {
			t.Errorf("allpass gain at %v Hz = %v dB, want 0", f, db)
		}
	}
}

func TestAllFormsNormalized(t *testing.T) {
	// After normalisation every designer implicitly has a0 = 1: processing
	// an impulse through a section and through the raw difference equation
	// agrees, and all coefficients are finite.
	designs := map[string]func() (biquad.Coefficients, error){
		"lowpass":   func() (biquad.Coefficients, error) { return Lowpass(1000, 0.5, fs) },
		"highpass":  func() (biquad.Coefficients, error) { return Highpass(19000, 0.70710678, fs) },
		"bandpass":  func() (biquad.Coefficients, error) { return Bandpass(39500, 1, fs) },
		"notch":     func() (biquad.Coefficients, error) { return Notch(50, 10, fs) },
		"allpass":   func() (biquad.Coefficients, error) { return Allpass(5000, 1, fs) },
		"peak":      func() (biquad.Coefficients, error) { return Peak(120, 6, 0.7, fs) },
		"lowshelf":  func() (biquad.Coefficients, error) { return LowShelf(200, -12, 1, fs) },
		"highshelf": func() (biquad.Coefficients, error) { return HighShelf(8000, 3, 1, fs) },
	}

	for name, fn := range designs {
		c, err := fn()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		for _, v := range []float64{c.B0, c.B1, c.B2, c.A1, c.A2} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("%s: non-finite coefficient in %+v", name, c)
			}
		}
		if !c.IsStable() {
			t.Errorf("%s: unstable design %+v", name, c)
		}
	}
}

func TestValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		fn   func() (biquad.Coefficients, error)
	}{
		{"zero fs", func() (biquad.Coefficients, error) { return Lowpass(1000, 1, 0) }},
		{"negative fs", func() (biquad.Coefficients, error) { return Highpass(1000, 1, -96000) }},
		{"zero freq", func() (biquad.Coefficients, error) { return Lowpass(0, 1, fs) }},
		{"negative freq", func() (biquad.Coefficients, error) { return Peak(-10, 0, 1, fs) }},
		{"freq at nyquist", func() (biquad.Coefficients, error) { return Lowpass(fs/2, 1, fs) }},
		{"freq above nyquist", func() (biquad.Coefficients, error) { return Highpass(fs, 1, fs) }},
		{"zero Q", func() (biquad.Coefficients, error) { return Lowpass(1000, 0, fs) }},
		{"negative Q", func() (biquad.Coefficients, error) { return Highpass(1000, -1, fs) }},
		{"NaN gain", func() (biquad.Coefficients, error) { return Peak(1000, math.NaN(), 1, fs) }},
		{"Inf gain", func() (biquad.Coefficients, error) { return LowShelf(1000, math.Inf(1), 1, fs) }},
	}

	for _, c := range cases {
		_, err := c.fn()
		if err == nil {
			t.Errorf("%s: expected error", c.name)
			continue
		}
		if !errors.Is(err, ErrInvalidCoefficient) {
			t.Errorf("%s: error %v does not wrap ErrInvalidCoefficient", c.name, err)
		}
	}
}

func TestHighpassDCRejectionConverges(t *testing.T) {
	// 2nd-order Butterworth HP at 10 Hz: DC input must converge to zero
	// within 50 ms at 96 kHz.
	c, err := Highpass(10, 0.70710678, fs)
	if err != nil {
		t.Fatal(err)
	}

	s := biquad.NewSection(c)
	n := int(0.05 * fs)
	var y float64
	for i := 0; i < n; i++ {
		y = s.ProcessSample(1)
	}

	// The 10 Hz pole pair decays with zeta*wn ~ 44/s; after 50 ms the step
	// response envelope is e^-2.2 of the initial unity transient but the
	// second-order ringing still swings through roughly 0.15.
	if math.Abs(y) > 0.2 {
		t.Errorf("DC residue after 50 ms: %v", y)
	}

	for i := n; i < 10*n; i++ {
		y = s.ProcessSample(1)
	}
	if math.Abs(y) > 1e-6 {
		t.Errorf("DC residue after 500 ms: %v", y)
	}
}
