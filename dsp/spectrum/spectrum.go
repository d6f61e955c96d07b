package spectrum

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-amtx/dsp/window"
	algofft "github.com/cwbudde/algo-fft"
)

// Analyzer computes one-shot magnitude spectra of real signal blocks.
//
// It is intended for offline verification of modulated output, e.g. locating
// the carrier and sideband lines after ring modulation. The FFT size is fixed
// at construction and blocks shorter than the FFT size are zero padded.
type Analyzer struct {
	fftSize    int
	sampleRate float64
	win        []float64
	winGain    float64
	plan       *algofft.Plan[complex128]
	input      []complex128
	output     []complex128
}

// NewAnalyzer creates a spectrum analyzer with the given FFT size and window.
//
// fftSize must be a power of two of at least 16. The window compensates its
// own coherent gain so a full-scale sine reports a magnitude near 1.
func NewAnalyzer(fftSize int, sampleRate float64, winType window.Type) (*Analyzer, error) {
	if fftSize < 16 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("spectrum: fft size must be a power of two >= 16: %d", fftSize)
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("spectrum: sample rate must be > 0: %v", sampleRate)
	}

	win := window.Generate(winType, fftSize, window.WithPeriodic())
	if len(win) != fftSize {
		return nil, fmt.Errorf("spectrum: invalid window length: %d", len(win))
	}

	sum := 0.0
	for _, w := range win {
		sum += w
	}

	if sum <= 0 {
		return nil, fmt.Errorf("spectrum: window has non-positive coherent gain")
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("spectrum: init fft plan: %w", err)
	}

	return &Analyzer{
		fftSize:    fftSize,
		sampleRate: sampleRate,
		win:        win,
		winGain:    sum / float64(fftSize),
		plan:       plan,
		input:      make([]complex128, fftSize),
		output:     make([]complex128, fftSize),
	}, nil
}

// FFTSize returns the transform length.
func (a *Analyzer) FFTSize() int { return a.fftSize }

// NumBins returns the number of non-redundant spectrum bins (fftSize/2 + 1).
func (a *Analyzer) NumBins() int { return a.fftSize/2 + 1 }

// BinFrequency returns the centre frequency of bin k in Hz.
func (a *Analyzer) BinFrequency(k int) float64 {
	return float64(k) * a.sampleRate / float64(a.fftSize)
}

// NearestBin returns the bin index whose centre frequency is closest to f.
func (a *Analyzer) NearestBin(f float64) int {
	bin := int(math.Round(f * float64(a.fftSize) / a.sampleRate))
	if bin < 0 {
		return 0
	}

	if last := a.fftSize / 2; bin > last {
		return last
	}

	return bin
}

// Magnitudes computes the single-sided amplitude spectrum of a block.
//
// The result has NumBins() entries scaled so a full-scale sine that falls on
// a bin centre reads close to its time-domain amplitude. Blocks longer than
// the FFT size are truncated.
func (a *Analyzer) Magnitudes(input []float64) ([]float64, error) {
	if len(input) == 0 {
		return nil, fmt.Errorf("spectrum: input block is empty")
	}

	n := len(input)
	if n > a.fftSize {
		n = a.fftSize
	}

	for i := 0; i < n; i++ {
		a.input[i] = complex(input[i]*a.win[i], 0)
	}

	for i := n; i < a.fftSize; i++ {
		a.input[i] = 0
	}

	if err := a.plan.Forward(a.output, a.input); err != nil {
		return nil, fmt.Errorf("spectrum: forward fft: %w", err)
	}

	norm := float64(a.fftSize) * a.winGain
	last := a.fftSize / 2

	mags := make([]float64, last+1)
	for k := 0; k <= last; k++ {
		mag := cmplx.Abs(a.output[k]) / norm
		if k > 0 && k < last {
			mag *= 2
		}

		mags[k] = mag
	}

	return mags, nil
}

// MagnitudesDB computes the single-sided spectrum in dBFS with a -130 dB floor.
func (a *Analyzer) MagnitudesDB(input []float64) ([]float64, error) {
	const (
		minDB = -130.0
		eps   = 1e-12
	)

	mags, err := a.Magnitudes(input)
	if err != nil {
		return nil, err
	}

	for k, m := range mags {
		db := 20 * math.Log10(math.Max(eps, m))
		if db < minDB {
			db = minDB
		}

		mags[k] = db
	}

	return mags, nil
}

// PeakBin returns the index and magnitude of the strongest bin within the
// frequency range [lowHz, highHz].
func (a *Analyzer) PeakBin(mags []float64, lowHz, highHz float64) (int, float64) {
	lo := a.NearestBin(lowHz)
	hi := a.NearestBin(highHz)

	if hi >= len(mags) {
		hi = len(mags) - 1
	}

	best, bestMag := lo, 0.0
	for k := lo; k <= hi; k++ {
		if mags[k] > bestMag {
			best, bestMag = k, mags[k]
		}
	}

	return best, bestMag
}
