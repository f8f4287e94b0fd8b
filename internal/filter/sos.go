package filter

import (
	"fmt"
	"math"
)

// ValidateSOS checks that sos is a non-empty matrix with exactly six finite
// columns per row, [b0 b1 b2 a0 a1 a2], and that every a0 equals 1.
func ValidateSOS(sos [][]float64) error {
	if len(sos) == 0 {
		return fmt.Errorf("%w: no sections", ErrInvalidSOS)
	}
	for i, row := range sos {
		if len(row) != sosColumns {
			return fmt.Errorf("%w: section %d has %d columns, want %d", ErrInvalidSOS, i, len(row), sosColumns)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: section %d column %d is %v", ErrInvalidSOS, i, j, v)
			}
		}
		if row[sosA0] != 1 {
			return fmt.Errorf("%w: section %d has a0=%v, want 1", ErrInvalidSOS, i, row[sosA0])
		}
	}
	return nil
}

// SplitSection returns the numerator and denominator of one section row.
func SplitSection(row []float64) (b, a []float64) {
	return append([]float64(nil), row[:sosA0]...), append([]float64(nil), row[sosA0:]...)
}

// SOSToBA multiplies the sections out into a single transfer function.
// Trailing zero coefficients (first-order sections) are kept, so both
// slices have 2·len(sos)+1 entries.
func SOSToBA(sos [][]float64) (b, a []float64, err error) {
	if err := ValidateSOS(sos); err != nil {
		return nil, nil, err
	}
	b, a = []float64{1}, []float64{1}
	for _, row := range sos {
		sb, sa := SplitSection(row)
		b = polyMul(b, sb)
		a = polyMul(a, sa)
	}
	return b, a, nil
}

func polyMul(p, q []float64) []float64 {
	out := make([]float64, len(p)+len(q)-1)
	for i, x := range p {
		for j, y := range q {
			out[i+j] += x * y
		}
	}
	return out
}

// LowPassBiquad returns the RBJ cookbook lowpass section at cutoff (cycles
// per sample) with quality factor q, normalized to a0 = 1.
func LowPassBiquad(cutoff, q float64) ([]float64, error) {
	cw, alpha, err := biquadTerms(cutoff, q)
	if err != nil {
		return nil, err
	}
	b1 := 1 - cw
	return normalizeSection(b1/2, b1, b1/2, 1+alpha, -2*cw, 1-alpha), nil
}

// HighPassBiquad returns the RBJ cookbook highpass section.
func HighPassBiquad(cutoff, q float64) ([]float64, error) {
	cw, alpha, err := biquadTerms(cutoff, q)
	if err != nil {
		return nil, err
	}
	b1 := 1 + cw
	return normalizeSection(b1/2, -b1, b1/2, 1+alpha, -2*cw, 1-alpha), nil
}

func biquadTerms(cutoff, q float64) (cw, alpha float64, err error) {
	if !(cutoff > 0 && cutoff < nyquist) {
		return 0, 0, fmt.Errorf("%w: cutoff %g must be in (0, 0.5)", ErrInvalidParams, cutoff)
	}
	if !(q > 0) || math.IsInf(q, 0) {
		q = butterworthDefaultQ
	}
	w0 := 2 * math.Pi * cutoff
	return math.Cos(w0), math.Sin(w0) / (2 * q), nil
}

func normalizeSection(b0, b1, b2, a0, a1, a2 float64) []float64 {
	return []float64{b0 / a0, b1 / a0, b2 / a0, 1, a1 / a0, a2 / a0}
}

// ButterworthLowPass designs an order-n Butterworth lowpass as second-order
// sections, the highest-Q section last. Odd orders end with a first-order
// section (b2 = a2 = 0).
func ButterworthLowPass(order int, cutoff float64) ([][]float64, error) {
	return butterworth(order, cutoff, LowPassBiquad, firstOrderLowPass)
}

// ButterworthHighPass designs an order-n Butterworth highpass as second-order
// sections.
func ButterworthHighPass(order int, cutoff float64) ([][]float64, error) {
	return butterworth(order, cutoff, HighPassBiquad, firstOrderHighPass)
}

func butterworth(order int, cutoff float64,
	second func(cutoff, q float64) ([]float64, error),
	first func(k float64) []float64,
) ([][]float64, error) {
	if order < 1 {
		return nil, fmt.Errorf("%w: order %d must be positive", ErrInvalidParams, order)
	}
	if !(cutoff > 0 && cutoff < nyquist) {
		return nil, fmt.Errorf("%w: cutoff %g must be in (0, 0.5)", ErrInvalidParams, cutoff)
	}

	sos := make([][]float64, 0, (order+1)/2)
	for i := order/2 - 1; i >= 0; i-- {
		theta := math.Pi * float64(2*i+1) / float64(2*order)
		s, err := second(cutoff, 1/(2*math.Sin(theta)))
		if err != nil {
			return nil, err
		}
		sos = append(sos, s)
	}
	if order%2 != 0 {
		sos = append(sos, first(math.Tan(math.Pi*cutoff)))
	}
	return sos, nil
}

func firstOrderLowPass(k float64) []float64 {
	norm := 1 / (1 + k)
	return []float64{k * norm, k * norm, 0, 1, (k - 1) * norm, 0}
}

func firstOrderHighPass(k float64) []float64 {
	norm := 1 / (1 + k)
	return []float64{norm, -norm, 0, 1, (k - 1) * norm, 0}
}
