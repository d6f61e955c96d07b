// Package audio abstracts the host audio driver: a real-time oto playback
// backend and an offline render backend share the same pull callback shape.
package audio

import (
	"errors"
	"fmt"
)

// ErrHostInit indicates the host driver rejected the sample-rate/block-size
// pair.
var ErrHostInit = errors.New("audio: host driver initialisation failed")

// ErrUnsupportedRate indicates the requested sample rate is not offered.
var ErrUnsupportedRate = errors.New("audio: unsupported sample rate")

// Callback processes one block of planar audio. in may be nil or contain nil
// channels (no capture source); out channels are valid for frames samples.
// The callback must be wait-free.
type Callback func(in, out [][]float64, frames int)

// Config selects the stream format. Channels defaults to 2, BlockSize to 48.
type Config struct {
	SampleRate int
	BlockSize  int
	Channels   int
}

// SupportedRates lists the sample rates the hardware offers.
var SupportedRates = []int{48000, 96000, 192000}

func (c *Config) normalize() error {
	if c.Channels == 0 {
		c.Channels = 2
	}

	if c.BlockSize == 0 {
		c.BlockSize = 48
	}

	if c.Channels < 1 || c.BlockSize < 1 {
		return fmt.Errorf("%w: channels %d, block size %d", ErrHostInit, c.Channels, c.BlockSize)
	}

	for _, r := range SupportedRates {
		if c.SampleRate == r {
			return nil
		}
	}

	return fmt.Errorf("%w: %d Hz", ErrUnsupportedRate, c.SampleRate)
}

// Driver is a started or startable audio stream.
type Driver interface {
	// SampleRate reports the actual rate the stream runs at.
	SampleRate() int

	// Start registers the callback and begins streaming.
	Start(cb Callback) error

	// Close stops the stream and releases host resources.
	Close() error
}
