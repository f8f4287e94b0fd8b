// Package engine implements the bit-accurate direct form filter simulator and
// a floating-point reference filter to compare it against.
package engine

import (
	"context"
	"fmt"

	"github.com/tphakala/go-fixpoint/internal/fixp"
)

// State is the lifecycle state of a DirectForm.
type State int

// Simulator states. Setup moves any state to StateConfigured, Reset moves a
// configured or finished simulator to StateRunning, Finish ends a run.
const (
	StateUnconfigured State = iota
	StateConfigured
	StateRunning
	StateFinished
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfigured:
		return "configured"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Params configures a DirectForm. Coefficients are raw integers already
// quantized to CoeffB and CoeffA.
type Params struct {
	Input  fixp.Format
	Output fixp.Format
	CoeffB fixp.Format
	// CoeffA is ignored for FIR filters (len(A) <= 1).
	CoeffA fixp.Format

	// Accumulator is required by AccuManual and ignored otherwise.
	Accumulator *fixp.Format
	// Feedback overrides the default feedback register format
	// {WI: acc.WI, WF: in.WF + coeffB.WF - coeffA.WF}.
	Feedback *fixp.Format
	Policy   AccuPolicy

	// B holds the feed-forward taps. A holds the feedback taps with A[0]
	// equal to the raw representation of 1.0; empty or {1.0} means FIR.
	B []int64
	A []int64

	OutputQuant    fixp.QuantMode
	OutputOverflow fixp.OverflowMode
}

// Flags reports accumulator overflow of the most recent Step.
type Flags struct {
	Overflow  bool
	Underflow bool
}

// DirectForm simulates an FIR direct form or IIR direct form 1 filter in
// fixed-point arithmetic. Products are formed at full precision
// (WF_in + WF_coeff fractional bits) and summed without intermediate
// rounding in a two's complement register one guard bit wider than the
// accumulator. The accumulator is then checked with the sign bit pair test,
// clamped on overflow and requantized to the output format. IIR feedback
// taps the clamped accumulator, truncated to the feedback format.
//
// A DirectForm is not safe for concurrent use; independent instances share
// no state.
type DirectForm struct {
	state State

	in, coeffB, coeffA fixp.Format
	acc, fb            fixp.Format
	policy             AccuPolicy

	b, a  []int64
	order int
	iir   bool

	// fractional bits of the feed-forward and feedback product sums
	wfProd   int
	wfFbProd int

	x   *delayLine[int64]
	y   *delayLine[int64]
	out *fixp.Quantizer

	accRaw        int64
	flags         Flags
	accOverflows  int
	accUnderflows int
}

// NewDirectForm returns an unconfigured simulator.
func NewDirectForm() *DirectForm {
	return &DirectForm{}
}

// Setup validates p, derives the accumulator and feedback formats and
// allocates the delay lines. It may be called in any state and leaves the
// simulator configured with cleared registers.
func (d *DirectForm) Setup(p Params) error {
	if len(p.B) == 0 {
		return fmt.Errorf("%w: no feed-forward coefficients", ErrConfiguration)
	}
	if err := checkTaps("b", p.B, p.CoeffB); err != nil {
		return err
	}

	iir := len(p.A) > 1
	if len(p.A) > 0 {
		if err := checkTaps("a", p.A, p.CoeffA); err != nil {
			return err
		}
		one := int64(1) << uint(p.CoeffA.WF())
		if p.CoeffA.WF() >= registerBits-1 || p.A[0] != one {
			return fmt.Errorf("%w: a[0]=%d must equal 1.0 in %s (%d)", ErrConfiguration, p.A[0], p.CoeffA, one)
		}
	}

	order := max(len(p.B), len(p.A)) - 1
	acc, err := deriveAccumulator(&p, order)
	if err != nil {
		return err
	}

	wfProd := p.Input.WF() + p.CoeffB.WF()
	need := acc.W() + guardBits + max(0, wfProd-acc.WF())

	var fb fixp.Format
	wfFbProd := wfProd
	if iir {
		if p.Feedback != nil {
			fb = *p.Feedback
		} else {
			wf := p.Input.WF() + p.CoeffB.WF() - p.CoeffA.WF()
			if wf < 0 {
				return fmt.Errorf("%w: coefficient a has more fractional bits than input and b together, set a feedback format", ErrConfiguration)
			}
			fb, err = fixp.NewFormat(acc.WI(), wf)
			if err != nil {
				return fmt.Errorf("%w: feedback format: %w", ErrConfiguration, err)
			}
		}
		wfFbProd = fb.WF() + p.CoeffA.WF()
		need += max(0, wfFbProd-wfProd)
	}
	if need > registerBits {
		return fmt.Errorf("%w: accumulator %s needs %d register bits, have %d", ErrConfiguration, acc, need, registerBits)
	}

	d.in, d.coeffB, d.coeffA = p.Input, p.CoeffB, p.CoeffA
	d.acc, d.fb = acc, fb
	d.policy = p.Policy
	d.b = append([]int64(nil), p.B...)
	d.a = nil
	if iir {
		d.a = append([]int64(nil), p.A...)
	}
	d.order = order
	d.iir = iir
	d.wfProd, d.wfFbProd = wfProd, wfFbProd
	d.x = newDelayLine[int64](len(p.B))
	d.y = newDelayLine[int64](len(d.a) - min(len(d.a), 1))
	d.out = fixp.NewQuantizer(p.Output, p.OutputQuant, p.OutputOverflow)
	d.clear()
	d.state = StateConfigured
	return nil
}

func checkTaps(name string, taps []int64, f fixp.Format) error {
	for i, c := range taps {
		if !f.Contains(c) {
			return fmt.Errorf("%w: %s[%d]=%d does not fit %s", ErrConfiguration, name, i, c, f)
		}
	}
	return nil
}

// Reset zeroes the delay lines, the accumulator, the flags and all counters
// and starts a run.
func (d *DirectForm) Reset() error {
	if d.state == StateUnconfigured {
		return ErrNotConfigured
	}
	d.clear()
	d.state = StateRunning
	return nil
}

func (d *DirectForm) clear() {
	d.x.Clear()
	d.y.Clear()
	d.accRaw = 0
	d.flags = Flags{}
	d.accOverflows = 0
	d.accUnderflows = 0
	d.out.ResetCounters()
}

// Finish ends the current run. Step fails until the next Reset.
func (d *DirectForm) Finish() error {
	if d.state == StateUnconfigured {
		return ErrNotConfigured
	}
	d.state = StateFinished
	return nil
}

// Step filters one raw input sample and returns the raw output sample.
// The input is wrapped into the input format first.
func (d *DirectForm) Step(x int64) (int64, error) {
	if d.state != StateRunning {
		return 0, fmt.Errorf("%w: state %s", ErrNotConfigured, d.state)
	}
	return d.step(x), nil
}

func (d *DirectForm) step(x int64) int64 {
	d.x.Push(d.in.Wrap(x))

	// wrapping int64 multiply-accumulate: the low register bits are exact
	// even when an intermediate sum wraps
	var sum int64
	for i, xi := range d.x.Window() {
		sum += d.b[i] * xi
	}
	if d.iir {
		var fbSum int64
		for j, yj := range d.y.Window() {
			fbSum += d.a[j+1] * yj
		}
		sum -= align(fbSum, d.wfFbProd, d.wfProd)
	}
	sum = align(sum, d.wfProd, d.acc.WF())

	d.accRaw = d.checkAccumulator(sum)

	if d.iir {
		v := align(d.accRaw, d.acc.WF(), d.fb.WF())
		d.y.Push(d.fb.Wrap(v))
	}
	return d.out.Requantize(d.accRaw, d.acc.WF())
}

// checkAccumulator sign-extends sum from W_acc+1 bits and compares the guard
// bit with the accumulator sign bit. 00 and 11 pass, 01 clamps to Max and
// 10 clamps to Min.
func (d *DirectForm) checkAccumulator(sum int64) int64 {
	w := d.acc.W()
	shift := uint(registerBits - w - guardBits)
	reg := (sum << shift) >> shift

	d.flags = Flags{}
	switch reg >> uint(w-1) {
	case 1:
		d.flags.Overflow = true
		d.accOverflows++
		return d.acc.Max()
	case -2:
		d.flags.Underflow = true
		d.accUnderflows++
		return d.acc.Min()
	default:
		return reg
	}
}

// align moves a raw value from wf fractional bits to target fractional
// bits, dropping LSBs with floor.
func align(v int64, wf, target int) int64 {
	switch {
	case wf > target:
		return v >> uint(wf-target)
	case wf < target:
		return v << uint(target-wf)
	default:
		return v
	}
}

// Run resets the simulator and filters stimulus.
func (d *DirectForm) Run(stimulus []int64) ([]int64, error) {
	if err := d.Reset(); err != nil {
		return nil, err
	}
	return d.RunFrame(stimulus)
}

// RunFrame filters frame without resetting, continuing from the current
// register contents.
func (d *DirectForm) RunFrame(frame []int64) ([]int64, error) {
	if d.state != StateRunning {
		return nil, fmt.Errorf("%w: state %s", ErrNotConfigured, d.state)
	}
	out := make([]int64, len(frame))
	for i, x := range frame {
		out[i] = d.step(x)
	}
	return out, nil
}

// RunContext is Run with cooperative cancellation.
func (d *DirectForm) RunContext(ctx context.Context, stimulus []int64) ([]int64, error) {
	if err := d.Reset(); err != nil {
		return nil, err
	}
	return d.RunFrameContext(ctx, stimulus)
}

// RunFrameContext is RunFrame with cooperative cancellation. The context is
// checked every cancelCheckInterval samples. On cancellation the outputs
// produced so far are returned with the context error; the registers hold
// the state after the last processed sample, so the remaining input can be
// fed with RunFrame.
func (d *DirectForm) RunFrameContext(ctx context.Context, frame []int64) ([]int64, error) {
	if d.state != StateRunning {
		return nil, fmt.Errorf("%w: state %s", ErrNotConfigured, d.state)
	}
	out := make([]int64, 0, len(frame))
	for i, x := range frame {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return out, err
			}
		}
		out = append(out, d.step(x))
	}
	return out, nil
}

// Process implements the cascade stage interface. It behaves like RunFrame.
func (d *DirectForm) Process(frame []int64) ([]int64, error) {
	return d.RunFrame(frame)
}

// State returns the lifecycle state.
func (d *DirectForm) State() State { return d.state }

// Flags returns the overflow flags of the most recent Step.
func (d *DirectForm) Flags() Flags { return d.flags }

// Overflows returns how many steps clamped the accumulator to Max since the
// last Reset.
func (d *DirectForm) Overflows() int { return d.accOverflows }

// Underflows returns how many steps clamped the accumulator to Min since the
// last Reset.
func (d *DirectForm) Underflows() int { return d.accUnderflows }

// OutputOverflows returns the output quantizer counters since the last Reset.
func (d *DirectForm) OutputOverflows() (overflows, underflows int) {
	if d.out == nil {
		return 0, 0
	}
	return d.out.Overflows(), d.out.Underflows()
}

// Accumulator returns the raw accumulator of the most recent Step, after
// clamping.
func (d *DirectForm) Accumulator() int64 { return d.accRaw }

// Registers returns copies of the feed-forward and feedback delay lines,
// newest sample first.
func (d *DirectForm) Registers() (ff, fb []int64) {
	if d.x == nil {
		return nil, nil
	}
	return append([]int64(nil), d.x.Window()...), append([]int64(nil), d.y.Window()...)
}

// Order returns the filter order, max(len(b), len(a)) - 1.
func (d *DirectForm) Order() int { return d.order }

// IsIIR reports whether the filter has feedback taps.
func (d *DirectForm) IsIIR() bool { return d.iir }

// Policy returns the accumulator policy in use.
func (d *DirectForm) Policy() AccuPolicy { return d.policy }

// InputFormat returns the input format.
func (d *DirectForm) InputFormat() fixp.Format { return d.in }

// OutputFormat returns the output format.
func (d *DirectForm) OutputFormat() fixp.Format {
	if d.out == nil {
		return fixp.Format{}
	}
	return d.out.Format()
}

// AccumulatorFormat returns the derived accumulator format.
func (d *DirectForm) AccumulatorFormat() fixp.Format { return d.acc }

// FeedbackFormat returns the feedback register format. It is the zero
// Format for FIR filters.
func (d *DirectForm) FeedbackFormat() fixp.Format { return d.fb }

// MemoryUsage returns the approximate register memory in bytes.
func (d *DirectForm) MemoryUsage() int64 {
	n := len(d.b) + len(d.a)
	if d.x != nil {
		n += 2 * (d.x.Len() + d.y.Len())
	}
	return int64(n) * bytesPerInt64
}
