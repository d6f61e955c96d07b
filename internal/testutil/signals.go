package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave starting at phase zero.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)

	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)

	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}

	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}

	return out
}

// Ones returns a slice of length n filled with 1.0.
func Ones(n int) []float64 {
	return DC(1.0, n)
}

// ChannelBuffers allocates a set of zeroed per-channel sample buffers, the
// shape processing callbacks exchange audio in.
func ChannelBuffers(channels, frames int) [][]float64 {
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}

	return out
}

// StereoSine fills a two-channel buffer set with the same deterministic sine.
func StereoSine(freqHz, sampleRate, amplitude float64, frames int) [][]float64 {
	out := make([][]float64, 2)
	out[0] = DeterministicSine(freqHz, sampleRate, amplitude, frames)
	out[1] = DeterministicSine(freqHz, sampleRate, amplitude, frames)

	return out
}
