// Package simdops binds the SIMD kernels of github.com/tphakala/simd to a
// generic float type, so the floating-point reference filters can be written
// once for float32 and float64.
package simdops

import (
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the type constraint for supported floating-point types.
type Float interface {
	float32 | float64
}

// Ops holds the kernels for one float type.
type Ops[F Float] struct {
	// DotProductUnsafe computes the dot product of two equal length slices
	// without bounds checking.
	DotProductUnsafe func(a, b []F) F

	// ConvolveValid writes the len(signal)-len(kernel)+1 fully overlapped
	// outputs of signal correlated with kernel into dst.
	ConvolveValid func(dst, signal, kernel []F)

	// Sum returns the sum of all elements.
	Sum func(a []F) F
}

var (
	ops32 = Ops[float32]{
		DotProductUnsafe: f32.DotProductUnsafe,
		ConvolveValid:    f32.ConvolveValid,
		Sum:              f32.Sum,
	}
	ops64 = Ops[float64]{
		DotProductUnsafe: f64.DotProductUnsafe,
		ConvolveValid:    f64.ConvolveValid,
		Sum:              f64.Sum,
	}
)

// For returns the kernels for F. The type switch runs once per caller, at
// construction time.
func For[F Float]() *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		ops, ok := any(&ops32).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float32")
		}
		return ops
	case float64:
		ops, ok := any(&ops64).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float64")
		}
		return ops
	default:
		panic("simdops: unsupported float type")
	}
}
