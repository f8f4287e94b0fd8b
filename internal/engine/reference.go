package engine

import (
	"fmt"
	"math"

	"github.com/tphakala/go-fixpoint/internal/simdops"
)

// Reference is a floating-point direct form 1 filter with the same
// structure as DirectForm. It serves as the ideal response the fixed-point
// simulation is measured against.
//
// Type parameter F selects float32 or float64 arithmetic.
type Reference[F simdops.Float] struct {
	b, a []F // a excludes a[0]; both normalized by a[0]
	// bRev is b reversed, the kernel layout ConvolveValid expects
	bRev []F

	x *delayLine[F]
	y *delayLine[F]

	work []F

	ops *simdops.Ops[F]

	// conv is set for long float64 FIR kernels
	conv *blockConvolver
}

// NewReference creates a reference filter for coefficients b and a. An empty
// a, or a == {a0}, gives an FIR filter. All coefficients are divided by a[0].
func NewReference[F simdops.Float](b, a []float64) (*Reference[F], error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: no feed-forward coefficients", ErrConfiguration)
	}
	a0 := 1.0
	if len(a) > 0 {
		a0 = a[0]
	}
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return nil, fmt.Errorf("%w: a[0]=%v", ErrConfiguration, a0)
	}

	r := &Reference[F]{ops: simdops.For[F]()}
	r.b = make([]F, len(b))
	r.bRev = make([]F, len(b))
	for i, v := range b {
		r.b[i] = F(v / a0)
		r.bRev[len(b)-1-i] = r.b[i]
	}
	if len(a) > 1 {
		r.a = make([]F, len(a)-1)
		for j, v := range a[1:] {
			r.a[j] = F(v / a0)
		}
	}
	r.x = newDelayLine[F](len(r.b))
	r.y = newDelayLine[F](len(r.a))
	if kernel, ok := any(r.bRev).([]float64); ok && len(r.a) == 0 && len(kernel) >= minTapsForFFT {
		r.conv = newBlockConvolver(kernel)
	}
	return r, nil
}

// Reset clears the filter state.
func (r *Reference[F]) Reset() {
	r.x.Clear()
	r.y.Clear()
}

// Step filters one sample.
func (r *Reference[F]) Step(v F) F {
	r.x.Push(v)
	out := r.ops.DotProductUnsafe(r.b, r.x.Window())
	if len(r.a) > 0 {
		out -= r.ops.DotProductUnsafe(r.a, r.y.Window())
		r.y.Push(out)
	}
	return out
}

// Process filters a block. FIR filters are evaluated as one valid
// correlation over the last len(b)-1 inputs and the block, by FFT blocks for
// long float64 kernels; IIR filters step sample by sample. All paths give
// the result of repeated Step calls up to rounding and can be mixed freely.
func (r *Reference[F]) Process(input []F) []F {
	out := make([]F, len(input))
	if len(r.a) > 0 {
		for i, v := range input {
			out[i] = r.Step(v)
		}
		return out
	}
	if len(input) == 0 {
		return out
	}

	// oldest first: the previous len(b)-1 inputs, then the block
	window := r.x.Window()
	r.work = r.work[:0]
	for i := len(window) - 2; i >= 0; i-- {
		r.work = append(r.work, window[i])
	}
	r.work = append(r.work, input...)
	if r.conv != nil {
		r.conv.Convolve(any(out).([]float64), any(r.work).([]float64))
	} else {
		r.ops.ConvolveValid(out, r.work, r.bRev)
	}

	for _, v := range r.work[len(r.work)-min(len(r.work), r.x.Len()):] {
		r.x.Push(v)
	}
	return out
}

// DCGain returns the gain at zero frequency, sum(b) / (1 + sum(a[1:])).
// It is infinite when the denominator has a zero at z = 1.
func (r *Reference[F]) DCGain() float64 {
	num := float64(r.ops.Sum(r.b))
	den := 1.0
	if len(r.a) > 0 {
		den += float64(r.ops.Sum(r.a))
	}
	return num / den
}

// Order returns the filter order.
func (r *Reference[F]) Order() int {
	return max(len(r.b), len(r.a)+1) - 1
}

// MemoryUsage returns the approximate state memory in bytes.
func (r *Reference[F]) MemoryUsage() int64 {
	var zero F
	size := int64(bytesPerFloat32)
	if _, ok := any(zero).(float64); ok {
		size = bytesPerFloat64
	}
	n := 2*len(r.b) + len(r.a) + 2*(r.x.Len()+r.y.Len()) + cap(r.work)
	mem := int64(n) * size
	if r.conv != nil {
		// block and result buffers plus two complex spectra and the kernel
		mem += int64(2*r.conv.size)*bytesPerFloat64 + int64(3*len(r.conv.freq))*2*bytesPerFloat64
	}
	return mem
}
