package fixpoint

import (
	"context"
	"fmt"

	"github.com/tphakala/go-fixpoint/internal/pipeline"
)

// Cascade runs second-order sections in series, each one a fixed-point IIR
// direct form 1 filter. The first section reads the input format; every
// section writes the output format, which is also the input format of the
// sections after the first.
type Cascade struct {
	coeffs   *QuantizedCoefficientSet
	sections []*Filter
	pipe     *pipeline.Cascade
}

// NewCascade validates and quantizes sos (rows [b0 b1 b2 a0 a1 a2] with
// a0 == 1) and builds one section per row.
func NewCascade(cfg FilterConfig, sos [][]float64) (*Cascade, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	q, err := QuantizeCoefficients(CoefficientSet{SOS: sos}, cfg.Coeff, cfg.CoeffA)
	if err != nil {
		return nil, err
	}

	c := &Cascade{coeffs: q}
	stages := make([]pipeline.Stage, 0, len(q.SOS))
	for i, row := range q.SOS {
		in := cfg.Input
		if i > 0 {
			in = cfg.Output
		}
		sec, err := newFilter(cfg, in, &QuantizedCoefficientSet{
			B:       row[:sosSplit],
			A:       row[sosSplit:],
			BFormat: q.BFormat,
			AFormat: q.AFormat,
		})
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		c.sections = append(c.sections, sec)
		stages = append(stages, sec)
	}
	if c.pipe, err = pipeline.BuildCascade(stages...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return c, nil
}

// Process filters raw samples through every section, continuing from the
// current state.
func (c *Cascade) Process(input []int64) ([]int64, error) {
	return c.pipe.Process(input)
}

// ProcessContext is Process with a cancellation check between sections.
// A cancelled call leaves earlier sections advanced, so Reset before
// reusing the cascade.
func (c *Cascade) ProcessContext(ctx context.Context, input []int64) ([]int64, error) {
	return c.pipe.ProcessContext(ctx, input)
}

// ProcessFloat quantizes real samples with the input configuration, filters
// them and returns real output.
func (c *Cascade) ProcessFloat(input []float64) ([]float64, error) {
	raw, err := c.sections[0].QuantizeInput(input)
	if err != nil {
		return nil, err
	}
	out, err := c.Process(raw)
	if err != nil {
		return nil, err
	}
	return toReal(out, c.OutputFormat()), nil
}

// Reset clears every section.
func (c *Cascade) Reset() error {
	return c.pipe.Reset()
}

// Stats sums the counters of all sections.
func (c *Cascade) Stats() Stats {
	var total Stats
	for _, s := range c.sections {
		total = total.Add(s.Stats())
	}
	return total
}

// Coefficients returns the quantized sections.
func (c *Cascade) Coefficients() *QuantizedCoefficientSet { return c.coeffs }

// Len returns the number of sections.
func (c *Cascade) Len() int { return len(c.sections) }

// Section returns section i.
func (c *Cascade) Section(i int) *Filter { return c.sections[i] }

// Order returns the sum of the section orders.
func (c *Cascade) Order() int { return c.pipe.Order() }

// InputFormat returns the input format of the first section.
func (c *Cascade) InputFormat() Format { return c.pipe.InputFormat() }

// OutputFormat returns the output format of the last section.
func (c *Cascade) OutputFormat() Format { return c.pipe.OutputFormat() }

// MemoryUsage returns the approximate register memory in bytes.
func (c *Cascade) MemoryUsage() int64 { return c.pipe.MemoryUsage() }

// Info describes the cascade. Accumulator is the first section's format.
func (c *Cascade) Info() Info {
	info := c.sections[0].Info()
	info.Structure = fmt.Sprintf(structureCascade, c.Len())
	info.Order = c.Order()
	info.Sections = c.Len()
	info.Output = c.OutputFormat()
	info.MemoryUsage = c.MemoryUsage()
	return info
}

// QuantizedReference returns a floating-point filter running the quantized
// sections multiplied out.
func (c *Cascade) QuantizedReference() (*Reference, error) {
	return NewReference(c.coeffs.Real())
}
