// Package analysis compares fixed-point filters with their floating-point
// prototypes: frequency responses of coefficient sets and statistics of the
// quantization error in simulated output.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/tphakala/simd/c128"
	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrInvalidInput is returned for empty or mismatched inputs.
var ErrInvalidInput = errors.New("invalid analysis input")

// Response is a sampled frequency response from DC to Nyquist inclusive.
type Response struct {
	// Frequencies in cycles per sample, 0 to 0.5.
	Frequencies []float64
	// H holds the complex response at each frequency.
	H []complex128
}

// Magnitude returns |H|.
func (r Response) Magnitude() []float64 {
	m := make([]float64, len(r.H))
	for i, h := range r.H {
		m[i] = cmplx.Abs(h)
	}
	return m
}

// MagnitudeDB returns 20·log10|H|.
func (r Response) MagnitudeDB() []float64 {
	m := r.Magnitude()
	for i, v := range m {
		m[i] = MagnitudeDB(v)
	}
	return m
}

// Phase returns the phase of H in radians.
func (r Response) Phase() []float64 {
	p := make([]float64, len(r.H))
	for i, h := range r.H {
		p[i] = cmplx.Phase(h)
	}
	return p
}

// FrequencyResponse evaluates B(z)/A(z) at points frequencies evenly spaced
// from DC to Nyquist. An empty a means A(z) = 1.
//
// Both polynomials are zero padded to a real FFT of length 2·(points-1),
// enlarged by an integer factor when a polynomial is longer than that; the
// extra bins are skipped.
func FrequencyResponse(b, a []float64, points int) (Response, error) {
	if len(b) == 0 {
		return Response{}, fmt.Errorf("%w: no numerator coefficients", ErrInvalidInput)
	}
	if points < minPoints {
		return Response{}, fmt.Errorf("%w: %d points, need at least %d", ErrInvalidInput, points, minPoints)
	}

	base := 2 * (points - 1)
	stride := 1
	for base*stride < max(len(b), len(a)) {
		stride++
	}
	n := base * stride
	fft := fourier.NewFFT(n)

	num := polyCoefficients(fft, b, n)
	h := make([]complex128, points)
	for i := range h {
		h[i] = num[i*stride]
	}
	if len(a) > 0 {
		den := polyCoefficients(fft, a, n)
		for i := range h {
			d := den[i*stride]
			if d == 0 {
				h[i] = cmplx.Inf()
				continue
			}
			h[i] /= d
		}
	}

	freqs := make([]float64, points)
	for i := range freqs {
		freqs[i] = nyquist * float64(i) / float64(points-1)
	}
	return Response{Frequencies: freqs, H: h}, nil
}

func polyCoefficients(fft *fourier.FFT, p []float64, n int) []complex128 {
	padded := make([]float64, n)
	copy(padded, p)
	return fft.Coefficients(nil, padded)
}

// CascadeResponse returns the product of the responses of second-order
// sections given as rows [b0 b1 b2 a0 a1 a2].
func CascadeResponse(sos [][]float64, points int) (Response, error) {
	if len(sos) == 0 {
		return Response{}, fmt.Errorf("%w: no sections", ErrInvalidInput)
	}
	var total Response
	for i, row := range sos {
		if len(row) != sosColumns {
			return Response{}, fmt.Errorf("%w: section %d has %d columns", ErrInvalidInput, i, len(row))
		}
		r, err := FrequencyResponse(row[:sosColumns/2], row[sosColumns/2:], points)
		if err != nil {
			return Response{}, fmt.Errorf("section %d: %w", i, err)
		}
		if i == 0 {
			total = r
			continue
		}
		c128.Mul(total.H, total.H, r.H)
	}
	return total, nil
}

// MagnitudeDB converts a linear magnitude to dB, flooring at minDB.
func MagnitudeDB(mag float64) float64 {
	if mag <= 0 {
		return minDB
	}
	return max(minDB, 20*math.Log10(mag))
}

// MaxDeviationDB returns the largest absolute difference in dB between two
// responses over the bins where ref is above floorDB. Bins deep in the
// stopband are skipped since their dB difference is dominated by the noise
// floor.
func MaxDeviationDB(ref, test Response, floorDB float64) (float64, error) {
	if len(ref.H) != len(test.H) || len(ref.H) == 0 {
		return 0, fmt.Errorf("%w: response lengths %d and %d", ErrInvalidInput, len(ref.H), len(test.H))
	}
	refDB, testDB := ref.MagnitudeDB(), test.MagnitudeDB()
	var worst float64
	for i := range refDB {
		if refDB[i] < floorDB {
			continue
		}
		worst = max(worst, math.Abs(refDB[i]-testDB[i]))
	}
	return worst, nil
}
