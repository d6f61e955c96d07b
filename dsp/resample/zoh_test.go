package resample

import (
	"errors"
	"math"
	"testing"
)

func TestFactorFor(t *testing.T) {
	cases := []struct {
		name           string
		fsOut, fsInMax float64
		want           int
	}{
		{"double", 192000, 96000, 2},
		{"identity", 96000, 96000, 1},
		{"quadruple", 192000, 48000, 4},
		{"input above output", 48000, 96000, 1},
		{"non-integer ratio", 44100, 96000, 1},
		{"ratio off by >1%", 96000, 50000, 1},
		{"ratio within 1%", 96000, 48100, 2},
	}

	for _, c := range cases {
		got, err := FactorFor(c.fsOut, c.fsInMax)
		if err != nil {
			t.Errorf("%s: %v", c.name, err)
			continue
		}
		if got != c.want {
			t.Errorf("%s: factor = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestFactorForErrors(t *testing.T) {
	invalid := []struct {
		name           string
		fsOut, fsInMax float64
	}{
		{"zero out", 0, 96000},
		{"zero in", 96000, 0},
		{"nan out", math.NaN(), 96000},
		{"inf in", 96000, math.Inf(1)},
	}

	for _, c := range invalid {
		_, err := FactorFor(c.fsOut, c.fsInMax)
		if err == nil {
			t.Errorf("%s: expected error", c.name)
			continue
		}
		if !errors.Is(err, ErrInvalidRate) {
			t.Errorf("%s: error %v does not wrap ErrInvalidRate", c.name, err)
		}
	}
}

func TestNewHoldValidation(t *testing.T) {
	if _, err := NewHold(0, 2); err == nil {
		t.Error("factor 0 accepted")
	}
	if _, err := NewHold(2, 0); err == nil {
		t.Error("0 channels accepted")
	}
}

func TestHoldSequence(t *testing.T) {
	// Factor 2: input [a, b, c, d] becomes [a, a, b, b, c, c, d, d].
	h, err := NewHold(2, 1)
	if err != nil {
		t.Fatal(err)
	}

	input := []float64{1, 2, 3, 4}
	var out []float64
	next := 0

	for frame := 0; frame < len(input)*2; frame++ {
		if h.Due() {
			h.Capture(0, input[next])
			next++
		}
		out = append(out, h.Held(0))
		h.Advance()
	}

	want := []float64{1, 1, 2, 2, 3, 3, 4, 4}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("frame %d: %v, want %v", i, out[i], want[i])
		}
	}
}

func TestHoldFactorOneIsIdentity(t *testing.T) {
	h, err := NewHold(1, 1)
	if err != nil {
		t.Fatal(err)
	}

	input := []float64{0.5, -0.25, 1, 0}
	for i, x := range input {
		if !h.Due() {
			t.Fatalf("frame %d: capture not due with factor 1", i)
		}
		h.Capture(0, x)
		if got := h.Held(0); got != x {
			t.Errorf("frame %d: %v, want %v", i, got, x)
		}
		h.Advance()
	}
}

func TestHoldPerChannel(t *testing.T) {
	h, err := NewHold(3, 2)
	if err != nil {
		t.Fatal(err)
	}

	h.Capture(0, 1)
	h.Capture(1, -1)
	if h.Held(0) != 1 || h.Held(1) != -1 {
		t.Errorf("held = %v, %v", h.Held(0), h.Held(1))
	}
}

func TestInputRate(t *testing.T) {
	h, err := NewHold(2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := h.InputRate(192000); got != 96000 {
		t.Errorf("InputRate(192000) = %v, want 96000", got)
	}
}

func TestHoldReset(t *testing.T) {
	h, err := NewHold(4, 1)
	if err != nil {
		t.Fatal(err)
	}

	h.Capture(0, 1)
	h.Advance()
	h.Reset()

	if !h.Due() {
		t.Error("capture not due after reset")
	}
	if h.Held(0) != 0 {
		t.Errorf("held value after reset: %v", h.Held(0))
	}
}
