package window

import (
	"math"
	"testing"
)

func TestGenerateBasicProperties(t *testing.T) {
	types := []Type{
		TypeRectangular,
		TypeHann,
		TypeHamming,
		TypeBlackman,
		TypeBlackmanHarris3Term,
		TypeBlackmanHarris4Term,
		TypeFlatTop,
	}

	for _, typ := range types {
		coeffs := Generate(typ, 64)
		if len(coeffs) != 64 {
			t.Fatalf("type %d: length = %d, want 64", typ, len(coeffs))
		}

		// Symmetric form: w[i] == w[N-1-i].
		for i := 0; i < len(coeffs)/2; i++ {
			j := len(coeffs) - 1 - i
			if math.Abs(coeffs[i]-coeffs[j]) > 1e-12 {
				t.Errorf("type %d: asymmetry at %d/%d: %v vs %v", typ, i, j, coeffs[i], coeffs[j])
			}
		}

		// Peak at (or adjacent to) the centre, near 1 for non-flat-top types.
		mid := coeffs[len(coeffs)/2]
		if typ != TypeFlatTop && (mid < 0.9 || mid > 1.0+1e-9) {
			t.Errorf("type %d: centre value %v outside [0.9, 1]", typ, mid)
		}
	}
}

func TestBlackmanHarris4EdgeAndCentre(t *testing.T) {
	coeffs := Generate(TypeBlackmanHarris4Term, 257)

	// Edge value is the sum of alternating-sign terms:
	// 0.35875 - 0.48829 + 0.14128 - 0.01168 = 0.00006.
	edge := 0.35875 - 0.48829 + 0.14128 - 0.01168
	if math.Abs(coeffs[0]-edge) > 1e-12 {
		t.Errorf("edge = %v, want %v", coeffs[0], edge)
	}

	// Centre value: all terms add: 0.35875 + 0.48829 + 0.14128 + 0.01168 = 1.
	centre := coeffs[128]
	if math.Abs(centre-1) > 1e-12 {
		t.Errorf("centre = %v, want 1", centre)
	}
}

func TestHannGolden(t *testing.T) {
	// Symmetric Hann of length 8: w[i] = 0.5 - 0.5*cos(2*pi*i/7).
	want := make([]float64, 8)
	for i := range want {
		want[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/7)
	}

	got := Generate(TypeHann, 8)
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPeriodicForm(t *testing.T) {
	// Periodic Hann starts at 0 and never reaches 0 again at the last sample.
	coeffs := Generate(TypeHann, 8, WithPeriodic())
	if coeffs[0] != 0 {
		t.Errorf("periodic Hann w[0] = %v, want 0", coeffs[0])
	}
	if coeffs[7] == 0 {
		t.Error("periodic Hann w[N-1] should be nonzero")
	}
}

func TestGenerateEdgeCases(t *testing.T) {
	if got := Generate(TypeHann, 0); got != nil {
		t.Errorf("Generate(_, 0) = %v, want nil", got)
	}
	if got := Generate(TypeHann, 1); len(got) != 1 || got[0] != 0 {
		t.Errorf("Generate(hann, 1) = %v, want [0]", got)
	}
	if _, err := Hann(-1); err == nil {
		t.Error("expected error for negative size")
	}
}

func TestApplyCoefficients(t *testing.T) {
	samples := []float64{1, 2, 3, 4}
	coeffs := []float64{0.5, 0.5, 0.5, 0.5}

	out, err := ApplyCoefficients(samples, coeffs)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range out {
		if v != samples[i]*0.5 {
			t.Errorf("index %d: got %v", i, v)
		}
	}

	if _, err := ApplyCoefficients(samples, coeffs[:2]); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestEquivalentNoiseBandwidth(t *testing.T) {
	// Rectangular window has ENBW of exactly 1 bin.
	enbw, err := EquivalentNoiseBandwidth(Generate(TypeRectangular, 128))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(enbw-1) > 1e-12 {
		t.Errorf("rectangular ENBW = %v, want 1", enbw)
	}

	if _, err := EquivalentNoiseBandwidth(nil); err == nil {
		t.Error("expected error for empty coefficients")
	}
}
