package signal

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-amtx/dsp/core"
)

func TestGeneratorSine(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(96000))

	out, err := g.Sine(1000, 0.5, 96)
	if err != nil {
		t.Fatalf("Sine: %v", err)
	}

	if len(out) != 96 {
		t.Fatalf("got %d samples, want 96", len(out))
	}

	if out[0] != 0 {
		t.Fatalf("sine must start at phase zero, got %v", out[0])
	}

	step := 2 * math.Pi * 1000 / 96000.0
	for i, v := range out {
		want := 0.5 * math.Sin(step*float64(i))
		if math.Abs(v-want) > 1e-15 {
			t.Fatalf("sample %d = %v, want %v", i, v, want)
		}
	}
}

func TestGeneratorSineValidation(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(96000))
	if _, err := g.Sine(1000, 1, 0); err == nil {
		t.Fatal("expected error for zero samples")
	}

	// WithSampleRate ignores non-positive rates, so an invalid rate can only
	// arrive through a hand-built config.
	bad := &Generator{cfg: core.ProcessorConfig{SampleRate: -1}}
	if _, err := bad.Sine(1000, 1, 10); err == nil {
		t.Fatal("expected error for invalid sample rate")
	}
}

func TestGeneratorTwoTone(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(96000))

	out, err := g.TwoTone(500, 1500, 1, 192)
	if err != nil {
		t.Fatalf("TwoTone: %v", err)
	}

	// The block summation may round the last couple of bits differently from
	// a scalar t1+t2, so the tolerance sits well above one ulp.
	for i, v := range out {
		t1 := 0.5 * math.Sin(2*math.Pi*500*float64(i)/96000)
		t2 := 0.5 * math.Sin(2*math.Pi*1500*float64(i)/96000)

		if math.Abs(v-(t1+t2)) > 1e-12 {
			t.Fatalf("sample %d = %v, want %v", i, v, t1+t2)
		}
	}
}

func TestGeneratorWhiteNoiseDeterministic(t *testing.T) {
	a := NewGeneratorWithOptions(nil, WithSeed(42))
	b := NewGeneratorWithOptions(nil, WithSeed(42))

	na, err := a.WhiteNoise(0.8, 256)
	if err != nil {
		t.Fatalf("WhiteNoise: %v", err)
	}

	nb, _ := b.WhiteNoise(0.8, 256)

	for i := range na {
		if na[i] != nb[i] {
			t.Fatalf("sample %d differs for equal seeds", i)
		}

		if na[i] < -0.8 || na[i] > 0.8 {
			t.Fatalf("sample %d = %v outside [-0.8, 0.8]", i, na[i])
		}
	}

	if _, err := a.WhiteNoise(-1, 10); err == nil {
		t.Fatal("expected error for negative amplitude")
	}
}

func TestGeneratorImpulseAndDC(t *testing.T) {
	g := NewGenerator()

	imp, err := g.Impulse(0.25, 16)
	if err != nil {
		t.Fatalf("Impulse: %v", err)
	}

	if imp[0] != 0.25 {
		t.Fatalf("impulse head = %v, want 0.25", imp[0])
	}

	for i := 1; i < len(imp); i++ {
		if imp[i] != 0 {
			t.Fatalf("impulse tail sample %d = %v, want 0", i, imp[i])
		}
	}

	dc, err := g.DC(-0.3, 8)
	if err != nil {
		t.Fatalf("DC: %v", err)
	}

	for i, v := range dc {
		if v != -0.3 {
			t.Fatalf("dc sample %d = %v, want -0.3", i, v)
		}
	}

	if _, err := g.Impulse(1, 0); err == nil {
		t.Fatal("expected error for zero samples")
	}

	if _, err := g.DC(1, -1); err == nil {
		t.Fatal("expected error for negative samples")
	}
}

func TestNormalize(t *testing.T) {
	out, err := Normalize([]float64{0.1, -0.4, 0.2}, 1)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	want := []float64{0.25, -1, 0.5}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-15 {
			t.Fatalf("sample %d = %v, want %v", i, out[i], want[i])
		}
	}

	silent, err := Normalize([]float64{0, 0}, 1)
	if err != nil {
		t.Fatalf("Normalize silence: %v", err)
	}

	for _, v := range silent {
		if v != 0 {
			t.Fatal("silence must stay silent")
		}
	}

	if _, err := Normalize(nil, 1); err == nil {
		t.Fatal("expected error for empty input")
	}

	if _, err := Normalize([]float64{1}, -1); err == nil {
		t.Fatal("expected error for negative target peak")
	}
}
