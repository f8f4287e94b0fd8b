// Package filter designs the floating-point prototypes that are quantized and
// simulated in fixed point: Kaiser windowed FIR lowpass and highpass filters
// and Butterworth IIR filters as second-order sections.
package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"

	"github.com/tphakala/go-fixpoint/internal/mathutil"
)

// KaiserWindow returns a symmetric Kaiser window of the given length,
//
//	w[n] = I₀(β·sqrt(1 - ((n-α)/α)²)) / I₀(β),  α = (length-1)/2
//
// with a peak of 1 at the center.
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}
	w := make([]float64, length)
	if length == 1 {
		w[0] = 1
		return w
	}

	alpha := float64(length-1) / 2
	norm := 1 / mathutil.BesselI0(beta)
	for n := range w {
		r := (float64(n) - alpha) / alpha
		w[n] = mathutil.BesselI0(beta*math.Sqrt(max(0, 1-r*r))) * norm
	}
	return w
}

// FilterParams describes a Kaiser windowed-sinc FIR design.
type FilterParams struct {
	// NumTaps is the filter length. Odd lengths give a type I linear phase
	// filter and are required for highpass designs.
	NumTaps int

	// CutoffFreq is the -6 dB frequency in cycles per sample, (0, 0.5).
	CutoffFreq float64

	// Attenuation is the stopband attenuation in dB used to pick β.
	Attenuation float64

	// Gain is the passband gain.
	Gain float64
}

// Validate checks the parameters.
func (fp *FilterParams) Validate() error {
	switch {
	case fp.NumTaps < mathutil.MinFilterLength || fp.NumTaps > mathutil.MaxFilterLength:
		return fmt.Errorf("%w: %d taps outside [%d, %d]", ErrInvalidParams,
			fp.NumTaps, mathutil.MinFilterLength, mathutil.MaxFilterLength)
	case !(fp.CutoffFreq > 0 && fp.CutoffFreq < nyquist):
		return fmt.Errorf("%w: cutoff %g must be in (0, 0.5)", ErrInvalidParams, fp.CutoffFreq)
	case fp.Attenuation < 0 || math.IsNaN(fp.Attenuation):
		return fmt.Errorf("%w: attenuation %g dB must not be negative", ErrInvalidParams, fp.Attenuation)
	case !(fp.Gain > 0) || math.IsInf(fp.Gain, 0):
		return fmt.Errorf("%w: gain %g must be positive", ErrInvalidParams, fp.Gain)
	}
	return nil
}

// DesignLowPassFilter returns the taps of a Kaiser windowed-sinc lowpass,
// scaled so the DC gain equals params.Gain.
func DesignLowPassFilter(params FilterParams) ([]float64, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	h := windowedSinc(params.NumTaps, params.CutoffFreq, mathutil.KaiserBeta(params.Attenuation))
	if sum := f64.Sum(h); math.Abs(sum) > sincEpsilon {
		f64.Scale(h, h, params.Gain/sum)
	}
	return h, nil
}

// DesignHighPassFilter returns a highpass with the same transition band as
// the lowpass of params, built by spectral inversion: the lowpass (at unit
// gain) is subtracted from a unit impulse at the center tap, then scaled to
// params.Gain.
func DesignHighPassFilter(params FilterParams) ([]float64, error) {
	if params.NumTaps%2 == 0 {
		return nil, fmt.Errorf("%w: highpass needs an odd number of taps, got %d", ErrInvalidParams, params.NumTaps)
	}
	gain := params.Gain
	params.Gain = 1
	h, err := DesignLowPassFilter(params)
	if err != nil {
		return nil, err
	}
	f64.Scale(h, h, -1)
	h[len(h)/2]++
	f64.Scale(h, h, gain)
	return h, nil
}

// DesignLowPassFilterAuto picks the filter length from the attenuation and
// transition width (both in the units of FilterParams) and designs the
// lowpass.
func DesignLowPassFilterAuto(cutoffFreq, transitionBW, attenuation, gain float64) ([]float64, error) {
	return DesignLowPassFilter(FilterParams{
		NumTaps:     mathutil.EstimateFilterLength(attenuation, transitionBW),
		CutoffFreq:  cutoffFreq,
		Attenuation: attenuation,
		Gain:        gain,
	})
}

// windowedSinc returns sin(2πfc·x)/(πx) sampled around the center tap and
// multiplied by a Kaiser window.
func windowedSinc(n int, fc, beta float64) []float64 {
	h := KaiserWindow(n, beta)
	center := float64(n-1) / 2
	for i := range h {
		x := float64(i) - center
		if math.Abs(x) < sincEpsilon {
			h[i] *= 2 * fc
			continue
		}
		h[i] *= math.Sin(2*math.Pi*fc*x) / (math.Pi * x)
	}
	return h
}
