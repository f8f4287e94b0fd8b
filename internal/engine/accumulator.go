package engine

import (
	"fmt"
	"strings"

	"github.com/tphakala/go-fixpoint/internal/fixp"
	"github.com/tphakala/go-fixpoint/internal/mathutil"
)

// AccuPolicy selects how the accumulator format is derived.
type AccuPolicy int

const (
	// AccuAuto sizes the accumulator for product growth plus
	// floor(log2(order)) guard bits.
	AccuAuto AccuPolicy = iota

	// AccuManual uses the caller supplied accumulator format.
	AccuManual

	// AccuFull sizes the accumulator from the actual coefficient magnitudes
	// so a full-scale input cannot overflow it. For FIR filters the bound is
	// exact. For IIR filters it only covers a single step with feedback
	// samples as large as the input, so overflow remains possible.
	AccuFull
)

// String returns the policy name.
func (p AccuPolicy) String() string {
	switch p {
	case AccuAuto:
		return policyNameAuto
	case AccuManual:
		return policyNameManual
	case AccuFull:
		return policyNameFull
	default:
		return fmt.Sprintf("AccuPolicy(%d)", int(p))
	}
}

// ParseAccuPolicy parses "auto", "man" (or "manual") and "full".
func ParseAccuPolicy(s string) (AccuPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case policyNameAuto:
		return AccuAuto, nil
	case policyNameManual, policyNameManualShort:
		return AccuManual, nil
	case policyNameFull:
		return AccuFull, nil
	default:
		return 0, fmt.Errorf("%w: unknown accumulator policy %q", ErrConfiguration, s)
	}
}

// AccumulatorWidth returns the total accumulator word length, sign bit
// included, for an input word of inW bits, a coefficient word of coeffW bits
// and a filter of the given order:
//
//	W_acc = inW + coeffW + floor(log2(order)) + 1
//
// Orders 0 and 1 add no guard bits. The guard bits absorb the growth of
// summing order+1 products in the common case; they are a heuristic and not
// a worst case bound.
func AccumulatorWidth(inW, coeffW, order int) int {
	return inW + coeffW + mathutil.FloorLog2(order) + signBits
}

// deriveAccumulator returns the accumulator format for p.
func deriveAccumulator(p *Params, order int) (fixp.Format, error) {
	wfProd := p.Input.WF() + p.CoeffB.WF()

	switch p.Policy {
	case AccuManual:
		if p.Accumulator == nil {
			return fixp.Format{}, fmt.Errorf("%w: manual accumulator policy needs an accumulator format", ErrConfiguration)
		}
		return *p.Accumulator, nil

	case AccuAuto:
		coeffW := p.CoeffB.W()
		if len(p.A) > 0 {
			coeffW = max(coeffW, p.CoeffA.W())
		}
		return accumulatorFormat(AccumulatorWidth(p.Input.W(), coeffW, order), wfProd)

	case AccuFull:
		// worst case |sum| in units of the product LSB is
		// (Σ|b| + Σ|a_j|) * 2^(W_in-1), with a aligned to the b grid
		var sum uint64
		for _, c := range p.B {
			sum = mathutil.AddSat(sum, mathutil.AbsUint(c))
		}
		shift := p.CoeffB.WF() - p.CoeffA.WF()
		for _, c := range feedbackTaps(p.A) {
			m := mathutil.AbsUint(c)
			switch {
			case shift > 0:
				if mathutil.BitLen(m)+shift > registerBits {
					m = ^uint64(0)
				} else {
					m <<= uint(shift)
				}
			case shift < 0:
				m = (m + (1<<uint(-shift) - 1)) >> uint(-shift)
			}
			sum = mathutil.AddSat(sum, m)
		}
		w := mathutil.BitLen(sum) + p.Input.W() - 1 + signBits
		return accumulatorFormat(w, wfProd)

	default:
		return fixp.Format{}, fmt.Errorf("%w: unknown accumulator policy %d", ErrConfiguration, int(p.Policy))
	}
}

// accumulatorFormat splits a total width w into integer and fractional bits,
// keeping wf fractional bits.
func accumulatorFormat(w, wf int) (fixp.Format, error) {
	wi := max(w-wf-signBits, 0)
	f, err := fixp.NewFormat(wi, wf)
	if err != nil {
		return fixp.Format{}, fmt.Errorf("%w: accumulator of %d bits: %w", ErrConfiguration, w, err)
	}
	return f, nil
}

// feedbackTaps returns a[1:], or nil for FIR filters.
func feedbackTaps(a []int64) []int64 {
	if len(a) < 2 {
		return nil
	}
	return a[1:]
}
