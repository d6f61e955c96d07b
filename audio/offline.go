package audio

import (
	"fmt"
)

// OfflineRenderer drives a callback over caller-provided input without any
// audio hardware, block by block, and collects the output.
type OfflineRenderer struct {
	cfg Config
}

// NewOfflineRenderer validates the stream format for offline use.
func NewOfflineRenderer(cfg Config) (*OfflineRenderer, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return &OfflineRenderer{cfg: cfg}, nil
}

// SampleRate reports the render rate.
func (r *OfflineRenderer) SampleRate() int {
	return r.cfg.SampleRate
}

// Render invokes cb in blocks of the configured size over frames samples,
// with input and output indexed at the same rate. in may be nil for a silent
// source; input channels shorter than frames are padded with silence by
// sub-slicing only what exists.
func (r *OfflineRenderer) Render(cb Callback, in [][]float64, frames int) ([][]float64, error) {
	return r.RenderHeld(cb, in, frames, 1)
}

// RenderHeld drives a rate-adapted callback whose input channels run at
// 1/holdFactor of the output rate: a block of n output frames consumes
// ceil(n/holdFactor) input samples, and the input offset advances by the
// samples each block actually consumed. The block size must be divisible by
// the hold factor so block boundaries stay aligned with capture frames.
func (r *OfflineRenderer) RenderHeld(cb Callback, in [][]float64, frames, holdFactor int) ([][]float64, error) {
	if cb == nil {
		return nil, fmt.Errorf("audio: nil callback")
	}

	if frames < 0 {
		return nil, fmt.Errorf("audio: negative frame count %d", frames)
	}

	if holdFactor < 1 {
		return nil, fmt.Errorf("audio: hold factor must be >= 1: %d", holdFactor)
	}

	if r.cfg.BlockSize%holdFactor != 0 {
		return nil, fmt.Errorf("audio: block size %d is not divisible by hold factor %d",
			r.cfg.BlockSize, holdFactor)
	}

	out := make([][]float64, r.cfg.Channels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}

	inBlock := make([][]float64, len(in))
	outBlock := make([][]float64, r.cfg.Channels)

	inOffset := 0

	for offset := 0; offset < frames; offset += r.cfg.BlockSize {
		block := r.cfg.BlockSize
		if rem := frames - offset; rem < block {
			block = rem
		}

		inLen := (block + holdFactor - 1) / holdFactor

		for ch := range in {
			inBlock[ch] = nil
			if in[ch] != nil && inOffset < len(in[ch]) {
				end := inOffset + inLen
				if end > len(in[ch]) {
					end = len(in[ch])
				}

				inBlock[ch] = in[ch][inOffset:end]
			}
		}

		for ch := range out {
			outBlock[ch] = out[ch][offset : offset+block]
		}

		if in == nil {
			cb(nil, outBlock, block)
		} else {
			cb(inBlock, outBlock, block)
		}

		inOffset += inLen
	}

	return out, nil
}
