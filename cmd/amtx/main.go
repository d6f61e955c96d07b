// Command amtx runs the ultrasonic amplitude-modulation pipeline: either
// streaming live through the system audio device or rendering offline to a
// WAV file.
//
// Usage:
//
//	amtx                                  # stream the reference pipeline
//	amtx -tone 1000                       # stream with a generated 1 kHz baseband
//	amtx -render out.wav -tone 1000 -dur 2
//	amtx -render out.wav -in voice.wav -analyze
package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	"github.com/cwbudde/algo-amtx/audio"
	"github.com/cwbudde/algo-amtx/dsp/core"
	"github.com/cwbudde/algo-amtx/dsp/modulator"
	"github.com/cwbudde/algo-amtx/dsp/osc"
	"github.com/cwbudde/algo-amtx/dsp/signal"
	"github.com/cwbudde/algo-amtx/dsp/spectrum"
)

// setupState tracks the linear initialisation sequence. Every transition is
// logged; any failure before stateRunning is fatal.
type setupState int

const (
	stateUninit setupState = iota
	stateHWInitialised
	stateCoeffsReady
	stateRunning
)

func (s setupState) String() string {
	switch s {
	case stateUninit:
		return "UNINIT"
	case stateHWInitialised:
		return "HW_INITIALISED"
	case stateCoeffsReady:
		return "COEFFS_READY"
	case stateRunning:
		return "RUNNING"
	default:
		return "UNKNOWN"
	}
}

func main() {
	var (
		sampleRate   = flag.Int("sr", 96000, "target DAC sample rate in Hz (48000, 96000, 192000)")
		inputMaxRate = flag.Float64("input-max-sr", 96000, "ADC rate ceiling in Hz for the hold factor")
		blockSize    = flag.Int("block", 48, "frames per callback")
		carrierHz    = flag.Float64("carrier", 39500, "carrier frequency in Hz")
		carrierForm  = flag.String("form", "unipolar", "carrier form: sine or unipolar")
		carrierLevel = flag.Float64("carrier-level", 0, "carrier DC offset (0 = ring mod)")
		modDepth     = flag.Float64("depth", 1, "modulation depth")
		basebandGain = flag.Float64("gain", 1, "baseband gain before modulation")
		inputGain    = flag.Float64("input-gain", 2, "input gain")
		enableEQ     = flag.Bool("eq", false, "enable the baseband peaking EQ stages")
		enableComp   = flag.Bool("comp", false, "enable the envelope compressor")
		compThreshDB = flag.Float64("comp-threshold", 0, "compressor threshold in dBFS (0 = default)")
		enableHilb   = flag.Bool("hilbert", false, "enable the Hilbert transformer")
		hilbertTaps  = flag.Int("taps", 256, "Hilbert FIR length (even)")
		swap         = flag.Bool("swap", true, "swap left/right outputs")

		renderPath = flag.String("render", "", "render offline to this WAV file instead of streaming")
		inputPath  = flag.String("in", "", "WAV input file for offline rendering")
		toneHz     = flag.Float64("tone", 0, "generate a baseband sine at this frequency")
		duration   = flag.Float64("dur", 2, "render duration in seconds (generated input only)")
		analyze    = flag.Bool("analyze", false, "print carrier/sideband levels of the render")
	)
	flag.Parse()

	cfg := modulator.ReferenceConfig()
	cfg.SampleRate = float64(*sampleRate)
	cfg.InputMaxSampleRate = *inputMaxRate
	cfg.BlockSize = *blockSize
	cfg.CarrierHz = *carrierHz
	cfg.CarrierLevel = *carrierLevel
	cfg.ModDepth = *modDepth
	cfg.BasebandGain = *basebandGain
	cfg.InputGain = *inputGain
	cfg.EnableEQ = *enableEQ
	cfg.EnableCompressor = *enableComp

	if *compThreshDB != 0 {
		cfg.CompThreshold = core.DBToLinear(*compThreshDB)
	}
	cfg.EnableHilbert = *enableHilb
	cfg.HilbertTaps = *hilbertTaps
	cfg.SwapOutputs = *swap

	switch *carrierForm {
	case "sine":
		cfg.CarrierForm = osc.FormSine
	case "unipolar":
		cfg.CarrierForm = osc.FormUnipolar
	default:
		log.Fatalf("unknown carrier form %q", *carrierForm)
	}

	if *renderPath != "" {
		render(cfg, *renderPath, *inputPath, *toneHz, *duration, *analyze)
		return
	}

	stream(cfg, *toneHz)
}

// stream runs the live pipeline through the system audio device. It never
// returns.
func stream(cfg modulator.Config, toneHz float64) {
	state := stateUninit
	log.Printf("setup: %v", state)

	drv, err := audio.NewOtoDriver(audio.Config{
		SampleRate: int(cfg.SampleRate),
		BlockSize:  cfg.BlockSize,
		Channels:   modulator.NumChannels,
	})
	if err != nil {
		log.Fatalf("setup: audio driver: %v", err)
	}

	state = stateHWInitialised
	log.Printf("setup: %v (fs = %d Hz, block = %d)", state, drv.SampleRate(), cfg.BlockSize)

	// Design all coefficients at the rate the hardware actually runs at.
	cfg.SampleRate = float64(drv.SampleRate())

	pipe, err := modulator.NewPipeline(cfg)
	if err != nil {
		log.Fatalf("setup: pipeline: %v", err)
	}

	state = stateCoeffsReady
	log.Printf("setup: %v (hold factor %d, input rate %g Hz)",
		state, pipe.HoldFactor(), pipe.InputSampleRate())

	cb := pipe.ProcessBlock

	if toneHz > 0 {
		src, err := newToneSource(toneHz, pipe.InputSampleRate(), cfg.BlockSize)
		if err != nil {
			log.Fatalf("setup: tone source: %v", err)
		}

		factor := pipe.HoldFactor()

		cb = func(_, out [][]float64, frames int) {
			pipe.ProcessBlock(src.fill(frames/factor), out, frames)
		}
	}

	if err := drv.Start(cb); err != nil {
		log.Fatalf("setup: start stream: %v", err)
	}

	state = stateRunning
	log.Printf("setup: %v", state)

	select {}
}

// toneSource generates a deterministic baseband sine block by block without
// allocating in the callback.
type toneSource struct {
	oscillator *osc.Carrier
	buf        [][]float64
}

func newToneSource(freq, sampleRate float64, blockSize int) (*toneSource, error) {
	oscillator, err := osc.NewCarrier(osc.FormSine, freq, sampleRate)
	if err != nil {
		return nil, err
	}

	buf := make([][]float64, modulator.NumChannels)
	for ch := range buf {
		buf[ch] = make([]float64, blockSize)
	}

	return &toneSource{oscillator: oscillator, buf: buf}, nil
}

func (s *toneSource) fill(frames int) [][]float64 {
	if frames > len(s.buf[0]) {
		frames = len(s.buf[0])
	}

	for i := 0; i < frames; i++ {
		v := s.oscillator.Tick()
		for ch := range s.buf {
			s.buf[ch][i] = v
		}
	}

	return s.buf
}

// render processes input offline and writes the modulated result to a WAV
// file.
func render(cfg modulator.Config, outPath, inPath string, toneHz, duration float64, analyze bool) {
	state := stateUninit
	log.Printf("setup: %v", state)

	renderer, err := audio.NewOfflineRenderer(audio.Config{
		SampleRate: int(cfg.SampleRate),
		BlockSize:  cfg.BlockSize,
		Channels:   modulator.NumChannels,
	})
	if err != nil {
		log.Fatalf("setup: offline renderer: %v", err)
	}

	state = stateHWInitialised
	log.Printf("setup: %v", state)

	cfg.SampleRate = float64(renderer.SampleRate())

	pipe, err := modulator.NewPipeline(cfg)
	if err != nil {
		log.Fatalf("setup: pipeline: %v", err)
	}

	state = stateCoeffsReady
	log.Printf("setup: %v", state)

	in, frames := loadInput(pipe, inPath, toneHz, duration)

	state = stateRunning
	log.Printf("setup: %v (%d frames)", state, frames)

	out, err := renderer.RenderHeld(pipe.ProcessBlock, in, frames, pipe.HoldFactor())
	if err != nil {
		log.Fatalf("render: %v", err)
	}

	if err := audio.WriteWAV(outPath, out, renderer.SampleRate()); err != nil {
		log.Fatalf("render: %v", err)
	}

	log.Printf("render: wrote %s", outPath)

	if analyze {
		analyzeLines(out[0], cfg, toneHz)
	}
}

// loadInput reads a WAV file or generates a tone at the pipeline input rate
// and returns the input channels plus the output frame count.
func loadInput(pipe *modulator.Pipeline, inPath string, toneHz, duration float64) ([][]float64, int) {
	factor := pipe.HoldFactor()
	inRate := pipe.InputSampleRate()

	if inPath != "" {
		in, rate, err := audio.ReadWAV(inPath)
		if err != nil {
			log.Fatalf("render: %v", err)
		}

		if float64(rate) != inRate {
			log.Fatalf("render: input rate %d Hz does not match pipeline input rate %g Hz", rate, inRate)
		}

		for len(in) < modulator.NumChannels {
			in = append(in, in[0])
		}

		return in, len(in[0]) * factor
	}

	inFrames := int(duration * inRate)
	if inFrames <= 0 {
		log.Fatalf("render: duration %g s yields no frames", duration)
	}

	if toneHz <= 0 {
		return nil, inFrames * factor
	}

	gen := signal.NewGenerator(core.WithSampleRate(inRate))

	left, err := gen.Sine(toneHz, 1, inFrames)
	if err != nil {
		log.Fatalf("render: %v", err)
	}

	return [][]float64{left, left}, inFrames * factor
}

// analyzeLines measures the carrier and first sideband pair of the rendered
// output.
func analyzeLines(data []float64, cfg modulator.Config, toneHz float64) {
	freqs := []float64{cfg.CarrierHz}
	if toneHz > 0 {
		freqs = []float64{cfg.CarrierHz - toneHz, cfg.CarrierHz, cfg.CarrierHz + toneHz}
	}

	m, err := spectrum.NewMultiGoertzel(freqs, cfg.SampleRate)
	if err != nil {
		log.Fatalf("analyze: %v", err)
	}

	m.ProcessBlock(data)

	n := float64(len(data))
	for i, p := range m.Powers() {
		amp := 2 * math.Sqrt(p) / n
		fmt.Printf("%8.1f Hz  %8.2f dBFS\n", freqs[i], core.LinearToDB(math.Max(amp, 1e-12)))
	}
}
