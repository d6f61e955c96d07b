// Package modulator assembles the full amplitude-modulation pipeline: input
// conditioning at the ADC rate, carrier generation and modulation at the DAC
// rate, and post-modulation band shaping, driven per sample from an audio
// callback.
//
// The pipeline is configured once via Config and NewPipeline; ProcessBlock is
// the hot path and is safe to call from a real-time audio thread.
package modulator
