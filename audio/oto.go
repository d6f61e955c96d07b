package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/cwbudde/algo-amtx/dsp/core"
	"github.com/ebitengine/oto/v3"
)

const bytesPerFloat32 = 4

// OtoDriver streams the callback output through the system audio device
// using the oto pull model: the device reads interleaved float32 LE bytes
// and the driver renders callback blocks on demand.
//
// oto offers no capture path, so the callback always receives nil input.
type OtoDriver struct {
	cfg    Config
	ctx    *oto.Context
	player *oto.Player

	cb      Callback
	planar  [][]float64
	pending []byte
	scratch []byte

	mu      sync.Mutex
	started bool
}

// NewOtoDriver initialises the host audio context at the requested format.
func NewOtoDriver(cfg Config) (*OtoDriver, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	op := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHostInit, err)
	}
	<-ready

	d := &OtoDriver{
		cfg: cfg,
		ctx: ctx,
	}

	d.planar = make([][]float64, cfg.Channels)
	for ch := range d.planar {
		d.planar[ch] = make([]float64, cfg.BlockSize)
	}

	blockBytes := cfg.BlockSize * cfg.Channels * bytesPerFloat32
	d.scratch = make([]byte, blockBytes)
	d.pending = make([]byte, 0, 4*blockBytes)

	return d, nil
}

// SampleRate reports the stream rate.
func (d *OtoDriver) SampleRate() int {
	return d.cfg.SampleRate
}

// Start registers the callback and begins playback.
func (d *OtoDriver) Start(cb Callback) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return fmt.Errorf("%w: stream already started", ErrHostInit)
	}

	if cb == nil {
		return fmt.Errorf("%w: nil callback", ErrHostInit)
	}

	d.cb = cb
	d.player = d.ctx.NewPlayer(d)
	d.player.Play()
	d.started = true

	return nil
}

// Read renders callback blocks into the device buffer. Called by oto on its
// playback goroutine.
func (d *OtoDriver) Read(p []byte) (int, error) {
	for len(d.pending) < len(p) {
		d.renderBlock()
	}

	n := copy(p, d.pending)
	d.pending = d.pending[:copy(d.pending, d.pending[n:])]

	return n, nil
}

// renderBlock runs the callback for one block and appends the interleaved
// float32 encoding to the pending byte queue.
func (d *OtoDriver) renderBlock() {
	frames := d.cfg.BlockSize
	channels := d.cfg.Channels

	for ch := range d.planar {
		core.Zero(d.planar[ch])
	}

	d.cb(nil, d.planar, frames)

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			bits := math.Float32bits(float32(d.planar[ch][i]))
			binary.LittleEndian.PutUint32(d.scratch[(i*channels+ch)*bytesPerFloat32:], bits)
		}
	}

	d.pending = append(d.pending, d.scratch...)
}

// Close stops playback and suspends the audio context.
func (d *OtoDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.player != nil {
		if err := d.player.Close(); err != nil {
			return err
		}

		d.player = nil
	}

	d.started = false

	return d.ctx.Suspend()
}
