package hilbert

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-amtx/dsp/window"
)

const (
	// DefaultTaps is the default FIR length.
	DefaultTaps = 256
	// minTaps is the smallest accepted FIR length.
	minTaps = 8
)

// DesignTaps computes the windowed-sinc Hilbert tap table of even length n.
//
// With centre c = (n-1)/2 (integer), the ideal response is
//
//	h[i] = 2/(pi*(i-c))  for odd i-c
//	h[i] = 0             otherwise (including i = c)
//
// shaped by a 4-term Blackman-Harris window over t = i/(n-1). Before
// windowing the table is exactly odd-symmetric about c.
func DesignTaps(n int) ([]float64, error) {
	if err := validateTaps(n); err != nil {
		return nil, err
	}

	taps := idealTaps(n)
	win := window.Generate(window.TypeBlackmanHarris4Term, n)
	for i := range taps {
		taps[i] *= win[i]
	}

	return taps, nil
}

// IdealTaps returns the unwindowed truncated ideal response, exposed for
// symmetry inspection.
func IdealTaps(n int) ([]float64, error) {
	if err := validateTaps(n); err != nil {
		return nil, err
	}

	return idealTaps(n), nil
}

func idealTaps(n int) []float64 {
	taps := make([]float64, n)
	c := (n - 1) / 2

	for i := range taps {
		d := i - c
		if d%2 == 0 {
			continue
		}
		taps[i] = 2 / (math.Pi * float64(d))
	}

	return taps
}

func validateTaps(n int) error {
	if n < minTaps {
		return fmt.Errorf("hilbert: tap count must be >= %d: %d", minTaps, n)
	}
	if n%2 != 0 {
		return fmt.Errorf("hilbert: tap count must be even: %d", n)
	}

	return nil
}
