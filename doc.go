// Package fixpoint provides fixed-point quantization and bit-accurate
// simulation of fixed-point direct form filters in pure Go.
//
// A fixed-point format Qm.n has m integer bits, n fractional bits and a
// sign bit, W = m + n + 1 bits in total, and holds the raw integers
// [-2^(W-1), 2^(W-1)-1]. Real values are mapped onto the raw grid by a
// [Quantizer] with a rounding mode (round, fix, floor, none) and an
// overflow mode (wrap, sat, none). Values that fall outside the format are
// counted, never reported as errors.
//
// # Features
//
//   - Formats up to 64 bits with integer, normalized or explicit scaling
//   - Quantizers with cumulative overflow and underflow counters
//   - Coefficient quantization with decimal, hexadecimal, binary and
//     canonical signed digit (CSD) export and parsing
//   - FIR direct form and IIR direct form 1 simulation with full precision
//     products, a sized accumulator that clamps on overflow and requantized
//     output
//   - Cascades of second-order sections
//   - A floating-point reference filter accelerated with
//     github.com/tphakala/simd for measuring quantization effects
//
// # Quick Start
//
// Quantizing a value:
//
//	cfg := fixpoint.Config{WI: 2, WF: 0, Quant: fixpoint.QuantFix, Ovfl: fixpoint.OverflowSaturate}
//	q, err := cfg.NewQuantizer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	raw, _ := q.Quantize(5) // 3, and q.Overflows() == 1
//
// Running a filter in Q0.15:
//
//	set, _ := fixpoint.DesignLowPass(63, 0.2, 80)
//	q15, _ := fixpoint.PresetConfig("q15")
//	f, err := fixpoint.NewFilter(fixpoint.FilterConfig{
//	    Input:  q15,
//	    Output: q15,
//	    Coeff:  q15,
//	    Policy: fixpoint.AccuAuto,
//	}, set)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := f.ProcessFloat(signal)
//
// # Accumulator Sizing
//
// [AccuAuto] sizes the accumulator as W_in + W_coeff + floor(log2(order))
// + 1 bits with W_in + W_coeff fractional bits, the usual guard bit
// heuristic; it is not a worst case bound. [AccuFull] sums the coefficient
// magnitudes and is exact for FIR filters, but only bounds a single step of
// an IIR filter. [AccuManual] uses the configured accumulator format.
//
// In every policy products are formed at full precision and summed in a
// register one guard bit wider than the accumulator; when the guard and
// sign bits disagree the accumulator is clamped and flagged.
//
// # Thread Safety
//
// Quantizers, filters and cascades are not safe for concurrent use.
// Independent instances share no state, so channels can be filtered in
// parallel with one instance each, see [FilterChannels].
package fixpoint
