package fixpoint

import (
	"context"
	"fmt"

	"github.com/tphakala/simd/cpu"

	"github.com/tphakala/go-fixpoint/internal/engine"
	"github.com/tphakala/go-fixpoint/internal/filter"
)

// Flags reports accumulator overflow of the most recent sample.
type Flags = engine.Flags

// Reference is a floating-point direct form filter used as the ideal
// response a fixed-point filter is compared against.
type Reference = engine.Reference[float64]

// FilterConfig holds the quantization points of a direct form filter.
type FilterConfig struct {
	// Input quantizes real input samples in ProcessFloat. Raw input given
	// to Process is wrapped into this format.
	Input Config

	// Output is the format, rounding and overflow handling of the result.
	Output Config

	// Coeff quantizes the numerator, and the denominator unless CoeffA is
	// set.
	Coeff  Config
	CoeffA *Config

	// Policy selects how the accumulator is sized. AccuManual takes the
	// format from Accumulator; its modes are ignored since the accumulator
	// always clamps.
	Policy      AccuPolicy
	Accumulator *Config

	// Feedback overrides the IIR feedback register format.
	Feedback *Config
}

// Validate checks every configured format.
func (c *FilterConfig) Validate() error {
	check := func(name string, cfg *Config) error {
		if cfg == nil {
			return nil
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}
	for _, p := range []struct {
		name string
		cfg  *Config
	}{
		{"input", &c.Input},
		{"output", &c.Output},
		{"coefficients", &c.Coeff},
		{"denominator coefficients", c.CoeffA},
		{"accumulator", c.Accumulator},
		{"feedback", c.Feedback},
	} {
		if err := check(p.name, p.cfg); err != nil {
			return err
		}
	}
	if c.Policy == AccuManual && c.Accumulator == nil {
		return fmt.Errorf("%w: manual accumulator policy needs an accumulator format", ErrConfiguration)
	}
	return nil
}

// params builds simulator parameters for quantized taps.
func (c *FilterConfig) params(in Config, b, a []int64, bf, af Format) (engine.Params, error) {
	p := engine.Params{
		CoeffB:         bf,
		CoeffA:         af,
		Policy:         c.Policy,
		B:              b,
		A:              a,
		OutputQuant:    c.Output.Quant,
		OutputOverflow: c.Output.Ovfl,
	}
	var err error
	if p.Input, err = in.Format(); err != nil {
		return engine.Params{}, fmt.Errorf("input: %w", err)
	}
	if p.Output, err = c.Output.Format(); err != nil {
		return engine.Params{}, fmt.Errorf("output: %w", err)
	}
	if c.Accumulator != nil {
		f, err := c.Accumulator.Format()
		if err != nil {
			return engine.Params{}, fmt.Errorf("accumulator: %w", err)
		}
		p.Accumulator = &f
	}
	if c.Feedback != nil {
		f, err := c.Feedback.Format()
		if err != nil {
			return engine.Params{}, fmt.Errorf("feedback: %w", err)
		}
		p.Feedback = &f
	}
	return p, nil
}

// Stats collects the overflow counters of a filter since its last Reset.
type Stats struct {
	InputOverflows        int
	InputUnderflows       int
	AccumulatorOverflows  int
	AccumulatorUnderflows int
	OutputOverflows       int
	OutputUnderflows      int
}

// Total returns the sum of all counters.
func (s Stats) Total() int {
	return s.InputOverflows + s.InputUnderflows +
		s.AccumulatorOverflows + s.AccumulatorUnderflows +
		s.OutputOverflows + s.OutputUnderflows
}

// Add returns the element-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		InputOverflows:        s.InputOverflows + o.InputOverflows,
		InputUnderflows:       s.InputUnderflows + o.InputUnderflows,
		AccumulatorOverflows:  s.AccumulatorOverflows + o.AccumulatorOverflows,
		AccumulatorUnderflows: s.AccumulatorUnderflows + o.AccumulatorUnderflows,
		OutputOverflows:       s.OutputOverflows + o.OutputOverflows,
		OutputUnderflows:      s.OutputUnderflows + o.OutputUnderflows,
	}
}

// Info describes a configured filter.
type Info struct {
	// Structure names the filter structure.
	Structure string

	// Order is the filter order (sum of section orders for cascades).
	Order int

	// Sections is 1 for a single filter.
	Sections int

	Input       Format
	Output      Format
	Accumulator Format
	Policy      AccuPolicy

	// MemoryUsage is the approximate register memory in bytes.
	MemoryUsage int64

	// SIMDEnabled and SIMDType describe the vector path of the floating
	// point reference.
	SIMDEnabled bool
	SIMDType    string
}

func simdInfo() (bool, string) {
	s := cpu.Info()
	return s != "", s
}

// Filter is a bit-accurate fixed-point direct form filter: FIR direct form
// when the denominator is empty or {1}, IIR direct form 1 otherwise.
//
// A Filter keeps state between Process calls, so a signal may be fed in
// frames of any size. It is not safe for concurrent use; independent
// filters share nothing.
type Filter struct {
	cfg    FilterConfig
	coeffs *QuantizedCoefficientSet
	df     *engine.DirectForm
	in     *Quantizer
}

// NewFilter quantizes set.B and set.A and configures a filter ready to run.
// An IIR denominator must be normalized (A[0] == 1) and its format must
// hold 1.0 exactly, so it needs at least one integer bit.
func NewFilter(cfg FilterConfig, set CoefficientSet) (*Filter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(set.B) == 0 {
		return nil, fmt.Errorf("%w: no numerator coefficients", ErrConfiguration)
	}
	a := set.A
	if len(a) == 1 {
		if a[0] != 1 {
			return nil, fmt.Errorf("%w: a[0]=%v must be 1", ErrConfiguration, a[0])
		}
		// {1} is the FIR denominator; its raw 1.0 may not fit the format
		a = nil
	}
	q, err := QuantizeCoefficients(CoefficientSet{B: set.B, A: a}, cfg.Coeff, cfg.CoeffA)
	if err != nil {
		return nil, err
	}
	return newFilter(cfg, cfg.Input, q)
}

func newFilter(cfg FilterConfig, in Config, q *QuantizedCoefficientSet) (*Filter, error) {
	p, err := cfg.params(in, q.B, q.A, q.BFormat, q.AFormat)
	if err != nil {
		return nil, err
	}
	df := engine.NewDirectForm()
	if err := df.Setup(p); err != nil {
		return nil, err
	}
	if err := df.Reset(); err != nil {
		return nil, err
	}
	inq, err := in.NewQuantizer()
	if err != nil {
		return nil, err
	}
	return &Filter{cfg: cfg, coeffs: q, df: df, in: inq}, nil
}

// Step filters one raw sample.
func (f *Filter) Step(x int64) (int64, error) {
	return f.df.Step(x)
}

// Process filters raw samples of the input format, continuing from the
// current state.
func (f *Filter) Process(input []int64) ([]int64, error) {
	return f.df.RunFrame(input)
}

// ProcessContext is Process with cooperative cancellation. On cancellation
// it returns the samples produced so far together with the context error,
// and the filter can resume with the rest of the input.
func (f *Filter) ProcessContext(ctx context.Context, input []int64) ([]int64, error) {
	return f.df.RunFrameContext(ctx, input)
}

// QuantizeInput converts real samples to raw input samples with the input
// configuration.
func (f *Filter) QuantizeInput(input []float64) ([]int64, error) {
	return f.in.QuantizeSlice(input)
}

// ProcessFloat quantizes real samples, filters them and returns the output
// as real values.
func (f *Filter) ProcessFloat(input []float64) ([]float64, error) {
	raw, err := f.QuantizeInput(input)
	if err != nil {
		return nil, err
	}
	out, err := f.Process(raw)
	if err != nil {
		return nil, err
	}
	return toReal(out, f.OutputFormat()), nil
}

func toReal(raw []int64, f Format) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = f.Real(v)
	}
	return out
}

// Reset clears the registers and all counters.
func (f *Filter) Reset() error {
	f.in.ResetCounters()
	return f.df.Reset()
}

// Finish ends the run. Processing fails until the next Reset.
func (f *Filter) Finish() error {
	return f.df.Finish()
}

// Flags returns the accumulator flags of the most recent sample.
func (f *Filter) Flags() Flags { return f.df.Flags() }

// Stats returns the overflow counters since the last Reset.
func (f *Filter) Stats() Stats {
	outOv, outUn := f.df.OutputOverflows()
	return Stats{
		InputOverflows:        f.in.Overflows(),
		InputUnderflows:       f.in.Underflows(),
		AccumulatorOverflows:  f.df.Overflows(),
		AccumulatorUnderflows: f.df.Underflows(),
		OutputOverflows:       outOv,
		OutputUnderflows:      outUn,
	}
}

// Coefficients returns the quantized coefficients.
func (f *Filter) Coefficients() *QuantizedCoefficientSet { return f.coeffs }

// Order returns the filter order.
func (f *Filter) Order() int { return f.df.Order() }

// IsIIR reports whether the filter has feedback.
func (f *Filter) IsIIR() bool { return f.df.IsIIR() }

// InputFormat returns the input format.
func (f *Filter) InputFormat() Format { return f.df.InputFormat() }

// OutputFormat returns the output format.
func (f *Filter) OutputFormat() Format { return f.df.OutputFormat() }

// AccumulatorFormat returns the accumulator format chosen by the policy.
func (f *Filter) AccumulatorFormat() Format { return f.df.AccumulatorFormat() }

// FeedbackFormat returns the IIR feedback register format.
func (f *Filter) FeedbackFormat() Format { return f.df.FeedbackFormat() }

// Registers returns copies of the delay lines, newest sample first.
func (f *Filter) Registers() (ff, fb []int64) { return f.df.Registers() }

// MemoryUsage returns the approximate register memory in bytes.
func (f *Filter) MemoryUsage() int64 { return f.df.MemoryUsage() }

// Info describes the filter.
func (f *Filter) Info() Info {
	structure := structureFIR
	if f.IsIIR() {
		structure = structureIIR
	}
	enabled, simd := simdInfo()
	return Info{
		Structure:   structure,
		Order:       f.Order(),
		Sections:    1,
		Input:       f.InputFormat(),
		Output:      f.OutputFormat(),
		Accumulator: f.AccumulatorFormat(),
		Policy:      f.df.Policy(),
		MemoryUsage: f.MemoryUsage(),
		SIMDEnabled: enabled,
		SIMDType:    simd,
	}
}

// QuantizedReference returns a floating-point filter running the quantized
// coefficients, which separates coefficient quantization from arithmetic
// quantization effects.
func (f *Filter) QuantizedReference() (*Reference, error) {
	return NewReference(f.coeffs.Real())
}

// NewReference creates the floating-point reference for set. A set with
// second-order sections is multiplied out into a single transfer function.
func NewReference(set CoefficientSet) (*Reference, error) {
	b, a := set.B, set.A
	if len(set.SOS) > 0 {
		var err error
		if b, a, err = filter.SOSToBA(set.SOS); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCoefficient, err)
		}
	}
	return engine.NewReference[float64](b, a)
}
