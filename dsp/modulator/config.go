package modulator

import (
	"fmt"

	"github.com/cwbudde/algo-amtx/dsp/core"
	"github.com/cwbudde/algo-amtx/dsp/filter/hilbert"
	"github.com/cwbudde/algo-amtx/dsp/osc"
)

// StageType identifies a biquad stage form in a filter chain specification.
type StageType int

const (
	StageLowpass StageType = iota
	StageHighpass
	StagePeaking
	StageLowShelf
	StageHighShelf
)

// String returns a human-readable stage type name.
func (t StageType) String() string {
	switch t {
	case StageLowpass:
		return "lowpass"
	case StageHighpass:
		return "highpass"
	case StagePeaking:
		return "peaking"
	case StageLowShelf:
		return "lowshelf"
	case StageHighShelf:
		return "highshelf"
	default:
		return fmt.Sprintf("stage(%d)", int(t))
	}
}

// StageSpec describes one biquad stage of a chain. GainDB is ignored for
// lowpass and highpass stages.
type StageSpec struct {
	Type   StageType
	Freq   float64
	Q      float64
	GainDB float64
}

// Config holds the static pipeline configuration. It is read once by
// NewPipeline; changing it afterwards has no effect on a running pipeline.
type Config struct {
	// SampleRate is the output (DAC) rate in Hz.
	SampleRate float64

	// InputMaxSampleRate is the ADC ceiling used to derive the zero-order
	// hold factor. Zero means "same as SampleRate".
	InputMaxSampleRate float64

	// BlockSize is the expected frames per callback. Informational for the
	// host driver; ProcessBlock accepts any frame count.
	BlockSize int

	CarrierHz    float64
	CarrierForm  osc.Form
	CarrierLevel float64
	ModDepth     float64
	BasebandGain float64
	InputGain    float64

	// BasebandStages is the ordered conditioning chain applied to the input
	// at the (possibly reduced) input rate. Peaking entries are skipped
	// unless EnableEQ is set.
	BasebandStages []StageSpec

	// PostStages is the ordered band-shaping chain applied to the modulated
	// signal at the full output rate.
	PostStages []StageSpec

	EnableEQ         bool
	EnableCompressor bool
	EnableHilbert    bool

	// SwapOutputs routes the left input's modulation to the right output
	// and vice versa.
	SwapOutputs bool

	// HilbertTaps is the FIR length when EnableHilbert is set. Zero selects
	// the default length.
	HilbertTaps int

	// Compressor parameters, used when EnableCompressor is set.
	CompThreshold      float64
	CompRatio          float64
	CompAttackSeconds  float64
	CompReleaseSeconds float64
}

// Validate checks the static parameters that the stage designers do not
// already cover.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 || !core.IsFinite(c.SampleRate) {
		return fmt.Errorf("modulator: sample rate must be > 0: %v", c.SampleRate)
	}

	if c.InputMaxSampleRate < 0 || !core.IsFinite(c.InputMaxSampleRate) {
		return fmt.Errorf("modulator: input rate ceiling must be >= 0: %v", c.InputMaxSampleRate)
	}

	if c.BlockSize < 0 {
		return fmt.Errorf("modulator: block size must be >= 0: %d", c.BlockSize)
	}

	if c.CarrierHz <= 0 || c.CarrierHz >= c.SampleRate/2 {
		return fmt.Errorf("modulator: carrier must be between 0 and sampleRate/2: %v", c.CarrierHz)
	}

	for _, v := range []float64{c.CarrierLevel, c.ModDepth, c.BasebandGain, c.InputGain} {
		if !core.IsFinite(v) {
			return fmt.Errorf("modulator: level parameters must be finite")
		}
	}

	if c.EnableHilbert {
		taps := c.HilbertTaps
		if taps == 0 {
			taps = hilbert.DefaultTaps
		}

		if taps%2 != 0 || taps < 8 {
			return fmt.Errorf("modulator: hilbert taps must be even and >= 8: %d", taps)
		}
	}

	return nil
}

// ReferenceConfig returns the reference hardware configuration: 96 kHz, block
// size 48, a 39.5 kHz unipolar carrier, doubled input gain, swapped outputs,
// an optional two-stage peaking EQ, and a double 19 kHz high-pass after the
// modulator.
func ReferenceConfig() Config {
	return Config{
		SampleRate:         96000,
		InputMaxSampleRate: 96000,
		BlockSize:          48,
		CarrierHz:          39500,
		CarrierForm:        osc.FormUnipolar,
		CarrierLevel:       0,
		ModDepth:           1,
		BasebandGain:       1,
		InputGain:          2,
		BasebandStages: []StageSpec{
			{Type: StagePeaking, Freq: 120, Q: 0.7, GainDB: 6},
			{Type: StagePeaking, Freq: 1500, Q: 1.0, GainDB: 4},
		},
		PostStages: []StageSpec{
			{Type: StageHighpass, Freq: 19000, Q: 0.70710678},
			{Type: StageHighpass, Freq: 19000, Q: 0.70710678},
		},
		SwapOutputs: true,
		HilbertTaps: hilbert.DefaultTaps,
	}
}

// BandpassConfig returns a variant that band-limits the modulated signal
// around the carrier: a high-pass below the lower sideband, two cascaded
// low-pass stages above the upper sideband, and two high-pass stages at the
// transmission edge. Runs at 192 kHz with the input chain held at 96 kHz.
func BandpassConfig() Config {
	cfg := ReferenceConfig()
	cfg.SampleRate = 192000
	cfg.InputMaxSampleRate = 96000
	cfg.CarrierHz = 39500
	cfg.PostStages = []StageSpec{
		{Type: StageHighpass, Freq: 30000, Q: 0.70710678},
		{Type: StageLowpass, Freq: 49000, Q: 0.70710678},
		{Type: StageLowpass, Freq: 49000, Q: 0.70710678},
		{Type: StageHighpass, Freq: 19000, Q: 0.70710678},
		{Type: StageHighpass, Freq: 19000, Q: 0.70710678},
	}

	return cfg
}
