package modulator

import (
	"fmt"

	"github.com/cwbudde/algo-amtx/dsp/dynamics"
	"github.com/cwbudde/algo-amtx/dsp/filter/biquad"
	"github.com/cwbudde/algo-amtx/dsp/filter/design"
	"github.com/cwbudde/algo-amtx/dsp/filter/hilbert"
	"github.com/cwbudde/algo-amtx/dsp/osc"
	"github.com/cwbudde/algo-amtx/dsp/resample"
)

// NumChannels is the fixed channel count of the pipeline.
const NumChannels = 2

type channelState struct {
	baseband *biquad.Chain
	comp     *dynamics.EnvelopeCompressor
	post     *biquad.Chain
}

// Pipeline owns every piece of mutable DSP state and drives one audio
// callback. All coefficients are designed at construction; ProcessBlock
// neither allocates nor blocks.
type Pipeline struct {
	cfg     Config
	carrier *osc.Carrier
	hold    *resample.Hold
	hilb    *hilbert.Processor
	ch      [NumChannels]channelState
}

// NewPipeline validates the configuration, derives the hold factor, designs
// the baseband chain at the input rate and the post chain at the output
// rate, and allocates all per-channel state.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	inCeiling := cfg.InputMaxSampleRate
	if inCeiling == 0 {
		inCeiling = cfg.SampleRate
	}

	factor, err := resample.FactorFor(cfg.SampleRate, inCeiling)
	if err != nil {
		return nil, err
	}

	hold, err := resample.NewHold(factor, NumChannels)
	if err != nil {
		return nil, err
	}

	fsIn := hold.InputRate(cfg.SampleRate)

	basebandCoeffs, err := designStages(cfg.BasebandStages, fsIn, !cfg.EnableEQ)
	if err != nil {
		return nil, fmt.Errorf("modulator: baseband chain: %w", err)
	}

	postCoeffs, err := designStages(cfg.PostStages, cfg.SampleRate, false)
	if err != nil {
		return nil, fmt.Errorf("modulator: post chain: %w", err)
	}

	carrier, err := osc.NewCarrier(cfg.CarrierForm, cfg.CarrierHz, cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:     cfg,
		carrier: carrier,
		hold:    hold,
	}

	if cfg.EnableHilbert {
		taps := cfg.HilbertTaps
		if taps == 0 {
			taps = hilbert.DefaultTaps
		}

		p.hilb, err = hilbert.NewProcessor(taps, NumChannels)
		if err != nil {
			return nil, err
		}
	}

	for ch := range p.ch {
		p.ch[ch].baseband = biquad.NewChain(basebandCoeffs)
		p.ch[ch].post = biquad.NewChain(postCoeffs)

		if cfg.EnableCompressor {
			comp, err := newCompressor(cfg, fsIn)
			if err != nil {
				return nil, err
			}

			p.ch[ch].comp = comp
		}
	}

	return p, nil
}

func newCompressor(cfg Config, fsIn float64) (*dynamics.EnvelopeCompressor, error) {
	comp, err := dynamics.NewEnvelopeCompressor(fsIn)
	if err != nil {
		return nil, err
	}

	if cfg.CompThreshold != 0 {
		if err := comp.SetThreshold(cfg.CompThreshold); err != nil {
			return nil, err
		}
	}

	if cfg.CompRatio != 0 {
		if err := comp.SetRatio(cfg.CompRatio); err != nil {
			return nil, err
		}
	}

	if cfg.CompAttackSeconds != 0 {
		if err := comp.SetAttackSeconds(cfg.CompAttackSeconds); err != nil {
			return nil, err
		}
	}

	if cfg.CompReleaseSeconds != 0 {
		if err := comp.SetReleaseSeconds(cfg.CompReleaseSeconds); err != nil {
			return nil, err
		}
	}

	return comp, nil
}

// designStages turns a stage list into normalised biquad coefficients at the
// given rate. Peaking entries are dropped when skipPeaking is set.
func designStages(stages []StageSpec, sampleRate float64, skipPeaking bool) ([]biquad.Coefficients, error) {
	coeffs := make([]biquad.Coefficients, 0, len(stages))

	for i, st := range stages {
		if skipPeaking && st.Type == StagePeaking {
			continue
		}

		var (
			c   biquad.Coefficients
			err error
		)

		switch st.Type {
		case StageLowpass:
			c, err = design.Lowpass(st.Freq, st.Q, sampleRate)
		case StageHighpass:
			c, err = design.Highpass(st.Freq, st.Q, sampleRate)
		case StagePeaking:
			c, err = design.Peak(st.Freq, st.GainDB, st.Q, sampleRate)
		case StageLowShelf:
			c, err = design.LowShelf(st.Freq, st.GainDB, st.Q, sampleRate)
		case StageHighShelf:
			c, err = design.HighShelf(st.Freq, st.GainDB, st.Q, sampleRate)
		default:
			err = fmt.Errorf("unknown stage type %d", int(st.Type))
		}

		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, st.Type, err)
		}

		coeffs = append(coeffs, c)
	}

	return coeffs, nil
}

// ProcessBlock runs the pipeline over one callback block. in may be nil, as
// may individual input channels; absent input reads as silence. With a hold
// factor f the input channels carry frames/f samples per block. Output
// channels beyond the first two are ignored.
//
// The routine is wait-free: no allocation, no locking, no error paths.
func (p *Pipeline) ProcessBlock(in, out [][]float64, frames int) {
	cfg := &p.cfg

	// Input buffers run at the (possibly reduced) input rate, so fresh
	// captures consume input samples in order rather than by output index.
	inPos := 0

	for i := 0; i < frames; i++ {
		if p.hold.Due() {
			p.captureInput(in, inPos)
			inPos++
		}

		carrier := p.carrier.Tick()

		var y [NumChannels]float64
		for ch := 0; ch < NumChannels; ch++ {
			m := (cfg.CarrierLevel + cfg.ModDepth*cfg.BasebandGain*p.hold.Held(ch)) * carrier
			y[ch] = p.ch[ch].post.ProcessSample(m)
		}

		left, right := y[0], y[1]
		if cfg.SwapOutputs {
			left, right = right, left
		}

		if len(out) > 0 && out[0] != nil && i < len(out[0]) {
			out[0][i] = left
		}

		if len(out) > 1 && out[1] != nil && i < len(out[1]) {
			out[1][i] = right
		}

		p.hold.Advance()
	}
}

// captureInput runs one fresh frame through the input-side conditioning and
// caches the result in the hold.
func (p *Pipeline) captureInput(in [][]float64, i int) {
	for ch := 0; ch < NumChannels; ch++ {
		x := 0.0
		if in != nil && ch < len(in) && in[ch] != nil && i < len(in[ch]) {
			x = in[ch][i] * p.cfg.InputGain
		}

		x = p.ch[ch].baseband.ProcessSample(x)

		if p.ch[ch].comp != nil {
			x = p.ch[ch].comp.ProcessSample(x)
		}

		if p.hilb != nil {
			x = p.hilb.ProcessSample(ch, x)
		}

		p.hold.Capture(ch, x)
	}

	if p.hilb != nil {
		p.hilb.Advance()
	}
}

// Reset clears all filter, envelope, hold, and phase state.
func (p *Pipeline) Reset() {
	p.carrier.Reset()
	p.hold.Reset()

	if p.hilb != nil {
		p.hilb.Reset()
	}

	for ch := range p.ch {
		p.ch[ch].baseband.Reset()
		p.ch[ch].post.Reset()

		if p.ch[ch].comp != nil {
			p.ch[ch].comp.Reset()
		}
	}
}

// Config returns a copy of the static configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// HoldFactor returns the derived zero-order hold factor.
func (p *Pipeline) HoldFactor() int {
	return p.hold.Factor()
}

// InputSampleRate returns the rate the input-side chain was designed at.
func (p *Pipeline) InputSampleRate() float64 {
	return p.hold.InputRate(p.cfg.SampleRate)
}

// CarrierPhase returns the current carrier phase in [0, 2*pi).
func (p *Pipeline) CarrierPhase() float64 {
	return p.carrier.Phase()
}
