package analysis

import (
	"math"
	"math/cmplx"

	"github.com/jotingen/pendulum/internal/pendulum"
	"github.com/jotingen/pendulum/internal/sim"
	"github.com/mjibson/go-dsp/fft"
)

// AngleSeries extracts the angle of one body from each frame.
func AngleSeries(frames []sim.Frame, r pendulum.Role) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = float64(f.Bodies[r.Index()].Angle)
	}
	return out
}

// PowerSpectrum returns the magnitude of the first half of the DFT of data,
// after removing its mean.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centred := make([]float64, len(data))
	for i, v := range data {
		centred[i] = v - mean
	}

	coeffs := fft.FFTReal(centred)
	ps := make([]float64, len(coeffs)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC
// component of data sampled every dt seconds. It returns 0 when there is no
// usable signal.
func DominantFrequency(data []float64, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	ps := PowerSpectrum(data)
	best, bestIdx := 0.0, 0
	for i := 1; i < len(ps); i++ {
		if math.IsNaN(ps[i]) {
			return 0
		}
		if ps[i] > best {
			best, bestIdx = ps[i], i
		}
	}
	if bestIdx == 0 {
		return 0
	}
	return float64(bestIdx) / (float64(len(data)) * dt)
}
