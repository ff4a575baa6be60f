package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/bikesim/internal/dynamo"
)

// Spectrum is a one-sided power spectrum.
type Spectrum struct {
	Freqs []float64 // Hz
	Power []float64
}

// Dominant returns the frequency of the strongest non-DC component, 0 for
// a flat spectrum.
func (s Spectrum) Dominant() float64 {
	best, at := 0.0, 0.0
	for i := 1; i < len(s.Power); i++ {
		if s.Power[i] > best {
			best, at = s.Power[i], s.Freqs[i]
		}
	}
	return at
}

// Series extracts sensor index from every state.
func Series(states []dynamo.State, index int) []float64 {
	out := make([]float64, len(states))
	for i, x := range states {
		out[i] = x.At(index)
	}
	return out
}

// RollSpectrum computes the power spectrum of series sampled every dt
// seconds. The mean is removed first.
func RollSpectrum(series []float64, dt float64) (Spectrum, error) {
	if len(series) < 4 {
		return Spectrum{}, fmt.Errorf("need at least 4 samples, got %d", len(series))
	}
	if dt <= 0 {
		return Spectrum{}, fmt.Errorf("sample interval must be positive, got %g", dt)
	}

	mean := stat.Mean(series, nil)
	centered := make([]float64, len(series))
	for i, v := range series {
		centered[i] = v - mean
	}

	n := len(centered)
	coeff := fft.FFTReal(centered)[:n/2+1]

	s := Spectrum{
		Freqs: make([]float64, len(coeff)),
		Power: make([]float64, len(coeff)),
	}
	for i, c := range coeff {
		s.Freqs[i] = float64(i) / (float64(n) * dt)
		a := cmplx.Abs(c)
		s.Power[i] = a * a / float64(n)
	}
	return s, nil
}

// Stats summarizes a series.
type Stats struct {
	Mean, Std, RMS, Min, Max float64
}

func Describe(series []float64) Stats {
	if len(series) == 0 {
		return Stats{}
	}
	var s Stats
	s.Mean, s.Std = stat.MeanStdDev(series, nil)
	if len(series) == 1 {
		s.Std = 0
	}
	s.Min, s.Max = series[0], series[0]
	var sq float64
	for _, v := range series {
		sq += v * v
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
	}
	s.RMS = math.Sqrt(sq / float64(len(series)))
	return s
}
