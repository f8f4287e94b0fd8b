package fixp

import (
	"fmt"
	"math"
	"math/bits"
)

// Quantizer converts real values to raw integers of a Format under a
// rounding mode and an overflow mode.
//
// Every value whose scaled magnitude falls outside the format range is
// counted, whatever the overflow mode: values above Max increment Overflows,
// values below Min increment Underflows. The counters accumulate across
// calls until ResetCounters is called.
//
// A Quantizer is not safe for concurrent use.
type Quantizer struct {
	format     Format
	quant      QuantMode
	ovfl       OverflowMode
	overflows  int
	underflows int
}

// NewQuantizer creates a quantizer bound to f.
func NewQuantizer(f Format, quant QuantMode, ovfl OverflowMode) *Quantizer {
	return &Quantizer{format: f, quant: quant, ovfl: ovfl}
}

// Format returns the bound format.
func (q *Quantizer) Format() Format { return q.format }

// QuantMode returns the rounding mode.
func (q *Quantizer) QuantMode() QuantMode { return q.quant }

// OverflowMode returns the overflow mode.
func (q *Quantizer) OverflowMode() OverflowMode { return q.ovfl }

// SetFormat rebinds the quantizer to f. Counters are kept.
func (q *Quantizer) SetFormat(f Format) { q.format = f }

// SetModes changes the rounding and overflow modes. Counters are kept.
func (q *Quantizer) SetModes(quant QuantMode, ovfl OverflowMode) {
	q.quant = quant
	q.ovfl = ovfl
}

// Overflows returns the number of values seen above Max since the last reset.
func (q *Quantizer) Overflows() int { return q.overflows }

// Underflows returns the number of values seen below Min since the last reset.
func (q *Quantizer) Underflows() int { return q.underflows }

// ResetCounters zeroes the overflow and underflow counters.
func (q *Quantizer) ResetCounters() {
	q.overflows = 0
	q.underflows = 0
}

// Quantize scales x, rounds it and applies overflow handling, returning the
// raw integer.
func (q *Quantizer) Quantize(x float64) (int64, error) {
	pre, raw, err := q.scaled(x)
	if err != nil {
		return 0, err
	}
	v, clip := q.limit(pre, raw)
	switch clip {
	case clippedHigh:
		return q.format.Max(), nil
	case clippedLow:
		return q.format.Min(), nil
	}
	v = math.Floor(v)
	if v >= two63 || v < -two63 {
		return 0, fmt.Errorf("%w: %v scaled to %v", ErrOutOfRange, x, v)
	}
	return int64(v), nil
}

// QuantizeFloat is like Quantize but returns the result as a real value
// (raw / Scale). With QuantNone the scaled value is not rounded at all, which
// makes this the bookkeeping path for comparing a signal with and without
// overflow handling.
func (q *Quantizer) QuantizeFloat(x float64) (float64, error) {
	if q.quant != QuantNone {
		raw, err := q.Quantize(x)
		if err != nil {
			return 0, err
		}
		return q.format.Real(raw), nil
	}
	pre, raw, err := q.scaled(x)
	if err != nil {
		return 0, err
	}
	v, clip := q.limit(pre, raw)
	switch clip {
	case clippedHigh:
		v = float64(q.format.Max())
	case clippedLow:
		v = float64(q.format.Min())
	}
	return v / q.format.Scale(), nil
}

// QuantizeSlice quantizes every element of xs. It stops at the first
// element that cannot be quantized and reports its index.
func (q *Quantizer) QuantizeSlice(xs []float64) ([]int64, error) {
	out := make([]int64, len(xs))
	for i, x := range xs {
		v, err := q.Quantize(x)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// QuantizeComplex quantizes the real and imaginary parts of z independently
// with the same format and modes.
func (q *Quantizer) QuantizeComplex(z complex128) (re, im int64, err error) {
	re, err = q.Quantize(real(z))
	if err != nil {
		return 0, 0, fmt.Errorf("real part: %w", err)
	}
	im, err = q.Quantize(imag(z))
	if err != nil {
		return 0, 0, fmt.Errorf("imaginary part: %w", err)
	}
	return re, im, nil
}

// Requantize moves a raw integer with srcWF fractional bits onto the bound
// format. Dropped LSBs are rounded with integer-exact arithmetic according to
// the rounding mode (QuantNone drops them like QuantFloor), added LSBs are
// zero. The overflow mode and counters then apply as in Quantize. A widened
// value that no longer fits 64 bits is out of range by sign; with
// OverflowNone it is pinned to the int64 bound.
func (q *Quantizer) Requantize(raw int64, srcWF int) int64 {
	shift := srcWF - q.format.WF()
	switch {
	case shift > 0:
		raw = shiftRight(raw, shift, q.quant)
	case shift < 0:
		if exceedsRegister(raw, -shift) {
			return q.limitWide(raw, -shift)
		}
		raw <<= uint(-shift)
	}
	return q.limitInt(raw)
}

// exceedsRegister reports whether raw * 2^shift falls outside int64.
func exceedsRegister(raw int64, shift int) bool {
	if raw == 0 {
		return false
	}
	mag := uint64(raw)
	if raw < 0 {
		mag = -mag
	}
	n := bits.Len64(mag) + shift
	if n < registerBits {
		return false
	}
	// -2^63 is the only value of bit length 64 that fits
	return n > registerBits || raw > 0 || mag&(mag-1) != 0
}

// limitWide is limitInt for a value raw * 2^shift beyond int64.
func (q *Quantizer) limitWide(raw int64, shift int) int64 {
	if raw > 0 {
		q.overflows++
	} else {
		q.underflows++
	}
	switch q.ovfl {
	case OverflowSaturate:
		if raw > 0 {
			return q.format.Max()
		}
		return q.format.Min()
	case OverflowWrap:
		// the shift is exact modulo 2^64, which keeps the low W bits
		var wide int64
		if shift < registerBits {
			wide = raw << uint(shift)
		}
		return q.format.Wrap(wide)
	default:
		if raw > 0 {
			return math.MaxInt64
		}
		return math.MinInt64
	}
}

// scaled multiplies x by the format scale and returns the value before and
// after rounding.
func (q *Quantizer) scaled(x float64) (pre, raw float64, err error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, 0, fmt.Errorf("%w: %v", ErrNonFinite, x)
	}
	pre = x * q.format.Scale()
	if math.IsInf(pre, 0) {
		return 0, 0, fmt.Errorf("%w: %v overflows after scaling", ErrNonFinite, x)
	}
	switch q.quant {
	case QuantRound:
		raw = math.Round(pre)
	case QuantFix:
		raw = math.Trunc(pre)
	case QuantFloor:
		raw = math.Floor(pre)
	default:
		raw = pre
	}
	return pre, raw, nil
}

const (
	inRange     = 0
	clippedHigh = 1
	clippedLow  = -1
)

// limit counts out-of-range values and resolves them in the float domain.
// Counting looks at the scaled value before rounding, so -4.1 truncated to
// a representable -4 still registers as an underflow. The returned value is
// derived from the rounded value. Saturation is reported through clip so
// callers can return the exact integer bounds (float64 cannot hold Max
// exactly for W > 53).
func (q *Quantizer) limit(pre, raw float64) (float64, int) {
	lo := float64(q.format.Min())
	top := math.Ldexp(1, q.format.W()-1)
	// top-1 rounds to top for W > 53, hence the second comparison
	above := func(v float64) bool { return v > top-1 || v >= top }
	switch {
	case above(pre):
		q.overflows++
	case pre < lo:
		q.underflows++
	default:
		return raw, inRange
	}
	if raw >= lo && !above(raw) {
		return raw, inRange
	}
	switch q.ovfl {
	case OverflowSaturate:
		if above(raw) {
			return raw, clippedHigh
		}
		return raw, clippedLow
	case OverflowWrap:
		modulus := math.Ldexp(1, q.format.W())
		r := math.Mod(raw-lo, modulus)
		if r < 0 {
			r += modulus
		}
		return r + lo, inRange
	default:
		return raw, inRange
	}
}

// limitInt is limit for raw integers.
func (q *Quantizer) limitInt(raw int64) int64 {
	switch {
	case raw > q.format.Max():
		q.overflows++
	case raw < q.format.Min():
		q.underflows++
	default:
		return raw
	}
	switch q.ovfl {
	case OverflowSaturate:
		if raw > 0 {
			return q.format.Max()
		}
		return q.format.Min()
	case OverflowWrap:
		return q.format.Wrap(raw)
	default:
		return raw
	}
}

// shiftRight divides raw by 2^shift with the given rounding.
func shiftRight(raw int64, shift int, mode QuantMode) int64 {
	if shift >= registerBits {
		shift = registerBits - 1
	}
	s := uint(shift)
	switch mode {
	case QuantRound:
		if raw >= 0 {
			// floor plus the bit just below the new LSB
			return (raw >> s) + ((raw >> (s - 1)) & 1)
		}
		half := int64(1) << (s - 1)
		return (raw + half - 1) >> s
	case QuantFix:
		if raw < 0 {
			return (raw + (int64(1)<<s - 1)) >> s
		}
		return raw >> s
	default:
		return raw >> s
	}
}
