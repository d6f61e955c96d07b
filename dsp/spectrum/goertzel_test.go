package spectrum

import (
	"math"
	"testing"
)

func TestNewGoertzelValidation(t *testing.T) {
	cases := []struct {
		name       string
		frequency  float64
		sampleRate float64
	}{
		{"zero sample rate", 1000, 0},
		{"negative sample rate", 1000, -96000},
		{"nan sample rate", 1000, math.NaN()},
		{"negative frequency", -1, 96000},
		{"above nyquist", 48001, 96000},
		{"nan frequency", math.NaN(), 96000},
		{"inf frequency", math.Inf(1), 96000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewGoertzel(tc.frequency, tc.sampleRate); err == nil {
				t.Fatalf("expected error for f=%v fs=%v", tc.frequency, tc.sampleRate)
			}
		})
	}
}

func TestGoertzelDetectsBinAlignedSine(t *testing.T) {
	const (
		sampleRate = 96000.0
		n          = 960
		freq       = 1000.0 // exactly 10 cycles over n samples
	)

	input := make([]float64, n)
	for i := range input {
		input[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}

	g, err := NewGoertzel(freq, sampleRate)
	if err != nil {
		t.Fatalf("NewGoertzel: %v", err)
	}

	g.ProcessBlock(input)

	// A unit sine over a whole number of cycles yields |X[k]| = N/2.
	want := float64(n) / 2

	got := g.Magnitude()
	if math.Abs(got-want)/want > 1e-9 {
		t.Fatalf("magnitude = %v, want %v", got, want)
	}
}

func TestGoertzelRejectsOrthogonalSine(t *testing.T) {
	const (
		sampleRate = 96000.0
		n          = 960
	)

	input := make([]float64, n)
	for i := range input {
		input[i] = math.Sin(2 * math.Pi * 2000 * float64(i) / sampleRate)
	}

	g, err := NewGoertzel(1000, sampleRate)
	if err != nil {
		t.Fatalf("NewGoertzel: %v", err)
	}

	g.ProcessBlock(input)

	if mag := g.Magnitude(); mag > 1e-8 {
		t.Fatalf("magnitude at orthogonal bin = %v, want ~0", mag)
	}
}

func TestGoertzelProcessSampleMatchesBlock(t *testing.T) {
	const sampleRate = 96000.0

	input := make([]float64, 257)
	for i := range input {
		input[i] = math.Sin(2*math.Pi*1234*float64(i)/sampleRate) +
			0.25*math.Cos(2*math.Pi*8765*float64(i)/sampleRate)
	}

	a, _ := NewGoertzel(1234, sampleRate)
	b, _ := NewGoertzel(1234, sampleRate)

	for _, x := range input {
		a.ProcessSample(x)
	}

	b.ProcessBlock(input)

	if a.Power() != b.Power() {
		t.Fatalf("sample power %v != block power %v", a.Power(), b.Power())
	}
}

func TestGoertzelReset(t *testing.T) {
	g, _ := NewGoertzel(1000, 96000)
	g.ProcessSample(1)
	g.ProcessSample(-0.5)

	g.Reset()

	if p := g.Power(); p != 0 {
		t.Fatalf("power after reset = %v, want 0", p)
	}
}

func TestGoertzelPowerDBFloor(t *testing.T) {
	g, _ := NewGoertzel(1000, 96000)

	if db := g.PowerDB(); db != -300 {
		t.Fatalf("silent power = %v dB, want -300", db)
	}
}

func TestAnalyzeBlock(t *testing.T) {
	const (
		sampleRate = 96000.0
		n          = 960
	)

	input := make([]float64, n)
	for i := range input {
		input[i] = math.Sin(2 * math.Pi * 3000 * float64(i) / sampleRate)
	}

	p, err := AnalyzeBlock(input, 3000, sampleRate)
	if err != nil {
		t.Fatalf("AnalyzeBlock: %v", err)
	}

	want := float64(n) / 2 * float64(n) / 2
	if math.Abs(p-want)/want > 1e-9 {
		t.Fatalf("power = %v, want %v", p, want)
	}

	if _, err := AnalyzeBlock(input, -1, sampleRate); err == nil {
		t.Fatal("expected error for negative frequency")
	}
}

func TestMultiGoertzelSeparatesLines(t *testing.T) {
	const (
		sampleRate = 192000.0
		n          = 1920
	)

	// Two lines plus a frequency with no energy, as when inspecting the
	// carrier and both sidebands of a modulated block.
	input := make([]float64, n)
	for i := range input {
		tt := float64(i) / sampleRate
		input[i] = 0.5*math.Sin(2*math.Pi*38500*tt) + 0.5*math.Sin(2*math.Pi*40500*tt)
	}

	m, err := NewMultiGoertzel([]float64{38500, 39500, 40500}, sampleRate)
	if err != nil {
		t.Fatalf("NewMultiGoertzel: %v", err)
	}

	m.ProcessBlock(input)

	powers := m.Powers()
	if len(powers) != 3 {
		t.Fatalf("got %d powers, want 3", len(powers))
	}

	if powers[0] < 1e3 || powers[2] < 1e3 {
		t.Fatalf("sideband powers too small: %v", powers)
	}

	if powers[1] > powers[0]*1e-6 {
		t.Fatalf("unexpected energy between lines: %v", powers)
	}

	m.Reset()

	for _, p := range m.Powers() {
		if p != 0 {
			t.Fatalf("power after reset = %v, want 0", p)
		}
	}
}

func TestMultiGoertzelPropagatesValidation(t *testing.T) {
	if _, err := NewMultiGoertzel([]float64{1000, -5}, 96000); err == nil {
		t.Fatal("expected error for invalid frequency in set")
	}
}
