package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the squared magnitude of the first half of the
// spectrum of the Hann-windowed, mean-removed samples, zero-padded to a power
// of two.
func PowerSpectrum(samples []float64) []float64 {
	if len(samples) < 2 {
		return nil
	}
	n := nextPow2(len(samples))

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(len(samples))

	data := make([]float64, n)
	last := float64(len(samples) - 1)
	for i, v := range samples {
		window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/last))
		data[i] = (v - mean) * window
	}

	spectrum := fft.FFTReal(data)
	ps := make([]float64, n/2)
	for i := range ps {
		mag := cmplx.Abs(spectrum[i])
		ps[i] = mag * mag
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC bin
// of samples taken every dt seconds.
func DominantFrequency(samples []float64, dt float64) (float64, error) {
	if !(dt > 0) {
		return 0, fmt.Errorf("sample interval must be positive, got %g", dt)
	}
	ps := PowerSpectrum(samples)
	if len(ps) < 2 {
		return 0, fmt.Errorf("need at least 4 samples, got %d", len(samples))
	}

	peak := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[peak] {
			peak = i
		}
	}
	if ps[peak] == 0 {
		return 0, nil
	}
	n := 2 * len(ps)
	return float64(peak) / (float64(n) * dt), nil
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
