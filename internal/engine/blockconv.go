package engine

import (
	"github.com/tphakala/simd/c128"
	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"
)

// blockConvolver evaluates a valid correlation by overlap-save FFT blocks.
// It gives the same result as f64.ConvolveValid up to rounding and is used
// by the float64 reference for long FIR kernels, where direct evaluation
// costs len(kernel) multiplies per output.
type blockConvolver struct {
	fft    *fourier.FFT
	size   int // FFT length
	step   int // outputs per block, size - kernelLen + 1
	kernel []complex128
	taps   int

	block   []float64
	freq    []complex128
	product []complex128
	result  []float64
}

// newBlockConvolver transforms kernel once. The kernel is applied as in
// ConvolveValid: dst[i] = sum over k of signal[i+k]*kernel[k].
func newBlockConvolver(kernel []float64) *blockConvolver {
	taps := len(kernel)
	if taps == 0 {
		return nil
	}
	size := fftMinBlock
	for size < 2*taps {
		size *= 2
	}
	fft := fourier.NewFFT(size)

	// circular convolution with the reversed kernel is the correlation
	padded := make([]float64, size)
	for i, v := range kernel {
		padded[taps-1-i] = v
	}
	bins := size/2 + 1
	return &blockConvolver{
		fft:     fft,
		size:    size,
		step:    size - taps + 1,
		kernel:  fft.Coefficients(nil, padded),
		taps:    taps,
		block:   make([]float64, size),
		freq:    make([]complex128, bins),
		product: make([]complex128, bins),
		result:  make([]float64, size),
	}
}

// Convolve writes len(signal)-taps+1 outputs to dst.
func (c *blockConvolver) Convolve(dst, signal []float64) {
	n := len(signal) - c.taps + 1
	if n <= 0 || len(dst) < n {
		return
	}
	overlap := c.taps - 1
	scale := 1 / float64(c.size)

	for pos := 0; pos < n; {
		clear(c.block)
		copy(c.block, signal[pos:min(pos+c.size, len(signal))])

		c.freq = c.fft.Coefficients(c.freq, c.block)
		c128.Mul(c.product, c.freq, c.kernel)
		c.result = c.fft.Sequence(c.result, c.product)
		f64.Scale(c.result, c.result, scale)

		valid := min(c.step, n-pos)
		copy(dst[pos:pos+valid], c.result[overlap:overlap+valid])
		pos += valid
	}
}
