package audio

import (
	"fmt"
	"os"

	"github.com/cwbudde/algo-amtx/dsp/core"
	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth = 16
	maxInt16    = 32767.0
)

// WriteWAV encodes planar float64 channels as a 16-bit PCM WAV file. Samples
// outside [-1, 1] are clamped.
func WriteWAV(path string, data [][]float64, sampleRate int) error {
	if len(data) == 0 || len(data[0]) == 0 {
		return fmt.Errorf("audio: no samples to write")
	}

	channels := len(data)
	frames := len(data[0])

	for ch := range data {
		if len(data[ch]) != frames {
			return fmt.Errorf("audio: channel %d length %d != %d", ch, len(data[ch]), frames)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audio: create %s: %w", path, err)
	}

	enc := wav.NewEncoder(f, sampleRate, wavBitDepth, channels, 1)

	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           make([]int, frames*channels),
		SourceBitDepth: wavBitDepth,
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			s := core.Clamp(data[ch][i], -1, 1)
			buf.Data[i*channels+ch] = int(s * maxInt16)
		}
	}

	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		_ = f.Close()

		return fmt.Errorf("audio: write %s: %w", path, err)
	}

	if err := enc.Close(); err != nil {
		_ = f.Close()

		return fmt.Errorf("audio: finalize %s: %w", path, err)
	}

	return f.Close()
}

// ReadWAV decodes a WAV file into planar float64 channels normalised to
// [-1, 1]. Returns the channel data and the file's sample rate.
func ReadWAV(path string) ([][]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("audio: open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("audio: invalid WAV file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("audio: decode %s: %w", path, err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, 0, fmt.Errorf("audio: no channels in %s", path)
	}

	frames := len(buf.Data) / channels

	scale := 1.0 / float64(int(1)<<(dec.BitDepth-1))

	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			out[ch][i] = float64(buf.Data[i*channels+ch]) * scale
		}
	}

	return out, buf.Format.SampleRate, nil
}
