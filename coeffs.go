package fixpoint

import (
	"fmt"
	"math"

	"github.com/tphakala/go-fixpoint/internal/engine"
	"github.com/tphakala/go-fixpoint/internal/filter"
	"github.com/tphakala/go-fixpoint/internal/fixp"
	"github.com/tphakala/go-fixpoint/internal/radix"
)

// Radix selects the textual representation of quantized coefficients.
type Radix = radix.Radix

// Radices.
const (
	RadixDec = radix.Dec
	RadixHex = radix.Hex
	RadixBin = radix.Bin
	RadixCSD = radix.CSD
)

// CoefficientSet holds floating-point filter coefficients. B is the
// numerator, A the denominator with A[0] == 1 for IIR filters (empty for
// FIR). SOS optionally holds second-order sections, one row
// [b0 b1 b2 a0 a1 a2] per section.
type CoefficientSet struct {
	B   []float64
	A   []float64
	SOS [][]float64
}

// QuantizedCoefficientSet holds the raw integers of a CoefficientSet in the
// same order and shape. SOS numerator columns use BFormat, denominator
// columns AFormat.
type QuantizedCoefficientSet struct {
	B   []int64
	A   []int64
	SOS [][]int64

	BFormat Format
	AFormat Format

	// Overflows and Underflows count coefficients that fell outside their
	// format during this quantization.
	Overflows  int
	Underflows int
}

// CoefficientError reports a non-finite coefficient. Array is "b", "a" or
// "sos"; for "sos" Index is the row-major position (row*6 + column).
type CoefficientError struct {
	Array string
	Index int
	Value float64
}

func (e *CoefficientError) Error() string {
	return fmt.Sprintf("%v: %s[%d] = %v is not finite", ErrInvalidCoefficient, e.Array, e.Index, e.Value)
}

// Unwrap returns ErrInvalidCoefficient.
func (e *CoefficientError) Unwrap() error {
	return ErrInvalidCoefficient
}

// QuantizeCoefficients quantizes B with b, A with a and every SOS row
// (numerator with b, denominator with a). A nil a reuses b. Counters start
// at zero for every call, so the returned overflow statistics describe this
// set only.
func QuantizeCoefficients(set CoefficientSet, b Config, a *Config) (*QuantizedCoefficientSet, error) {
	if len(set.B) == 0 && len(set.SOS) == 0 {
		return nil, fmt.Errorf("%w: no coefficients", ErrInvalidCoefficient)
	}
	if err := checkFinite(set); err != nil {
		return nil, err
	}
	if len(set.SOS) > 0 {
		if err := filter.ValidateSOS(set.SOS); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCoefficient, err)
		}
	}

	qb, err := b.NewQuantizer()
	if err != nil {
		return nil, fmt.Errorf("b format: %w", err)
	}
	qa := qb
	if a != nil {
		if qa, err = a.NewQuantizer(); err != nil {
			return nil, fmt.Errorf("a format: %w", err)
		}
	}

	out := &QuantizedCoefficientSet{BFormat: qb.Format(), AFormat: qa.Format()}
	if out.B, err = quantizeArray(qb, arrayB, set.B); err != nil {
		return nil, err
	}
	if out.A, err = quantizeArray(qa, arrayA, set.A); err != nil {
		return nil, err
	}
	for i, row := range set.SOS {
		num, err := quantizeArray(qb, arraySOS, row[:sosSplit])
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		den, err := quantizeArray(qa, arraySOS, row[sosSplit:])
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		out.SOS = append(out.SOS, append(num, den...))
	}

	out.Overflows, out.Underflows = qb.Overflows(), qb.Underflows()
	if qa != qb {
		out.Overflows += qa.Overflows()
		out.Underflows += qa.Underflows()
	}
	return out, nil
}

func checkFinite(set CoefficientSet) error {
	check := func(name string, offset int, xs []float64) error {
		for i, x := range xs {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return &CoefficientError{Array: name, Index: offset + i, Value: x}
			}
		}
		return nil
	}
	if err := check(arrayB, 0, set.B); err != nil {
		return err
	}
	if err := check(arrayA, 0, set.A); err != nil {
		return err
	}
	for i, row := range set.SOS {
		if err := check(arraySOS, i*sosColumns, row); err != nil {
			return err
		}
	}
	return nil
}

func quantizeArray(q *Quantizer, name string, xs []float64) ([]int64, error) {
	if len(xs) == 0 {
		return nil, nil
	}
	out := make([]int64, len(xs))
	for i, x := range xs {
		v, err := q.Quantize(x)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", name, i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Real converts the raw coefficients back to real values, exposing the
// coefficient quantization error on its own.
func (q *QuantizedCoefficientSet) Real() CoefficientSet {
	conv := func(raw []int64, f Format) []float64 {
		if raw == nil {
			return nil
		}
		out := make([]float64, len(raw))
		for i, v := range raw {
			out[i] = f.Real(v)
		}
		return out
	}
	set := CoefficientSet{B: conv(q.B, q.BFormat), A: conv(q.A, q.AFormat)}
	for _, row := range q.SOS {
		set.SOS = append(set.SOS, append(conv(row[:sosSplit], q.BFormat), conv(row[sosSplit:], q.AFormat)...))
	}
	return set
}

// Strings renders B and A in radix r.
func (q *QuantizedCoefficientSet) Strings(r Radix) (b, a []string, err error) {
	if b, err = radixStrings(q.B, q.BFormat, r); err != nil {
		return nil, nil, fmt.Errorf("b: %w", err)
	}
	if a, err = radixStrings(q.A, q.AFormat, r); err != nil {
		return nil, nil, fmt.Errorf("a: %w", err)
	}
	return b, a, nil
}

func radixStrings(raw []int64, f Format, r Radix) ([]string, error) {
	out := make([]string, len(raw))
	for i, v := range raw {
		s, err := radix.Format(v, f, r)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

// AdderCost returns the number of non-zero canonical signed digits over B
// and A[1:], the adders a multiplierless implementation of the taps needs.
func (q *QuantizedCoefficientSet) AdderCost() int {
	n := 0
	for _, v := range q.B {
		n += radix.NonZeroDigits(v)
	}
	for i, v := range q.A {
		if i == 0 {
			continue
		}
		n += radix.NonZeroDigits(v)
	}
	return n
}

// ToRadix renders a raw integer of format f in radix r. Hexadecimal and
// binary output is the W-bit two's complement pattern, zero padded; CSD
// output uses '+', '-' and '0', most significant digit first.
func ToRadix(v int64, f Format, r Radix) (string, error) {
	return radix.Format(v, f, r)
}

// ParseRadix is the inverse of ToRadix.
func ParseRadix(s string, f Format, r Radix) (int64, error) {
	return radix.Parse(s, f, r)
}

// RadixByName parses "dec", "hex", "bin" or "csd".
func RadixByName(name string) (Radix, error) {
	return radix.ParseRadix(name)
}

// CSDDigits returns the canonical signed digits of v, least significant
// first.
func CSDDigits(v int64) []int8 {
	return radix.CSDDigits(v)
}

// ParseQuantMode parses "round", "fix", "floor" or "none".
func ParseQuantMode(s string) (QuantMode, error) {
	return fixp.ParseQuantMode(s)
}

// ParseOverflowMode parses "wrap", "sat" or "none".
func ParseOverflowMode(s string) (OverflowMode, error) {
	return fixp.ParseOverflowMode(s)
}

// ParseAccuPolicy parses "auto", "manual" or "full".
func ParseAccuPolicy(s string) (AccuPolicy, error) {
	return engine.ParseAccuPolicy(s)
}
