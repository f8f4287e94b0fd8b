// Package pipeline chains fixed-point filter stages into a cascade, the way
// second-order sections of a high order IIR filter are run in series.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/tphakala/go-fixpoint/internal/fixp"
)

// ErrFormatMismatch indicates adjacent stages whose output and input
// formats differ.
var ErrFormatMismatch = errors.New("stage formats do not match")

// Stage is a single processing stage of a cascade. It consumes and produces
// raw fixed-point samples.
type Stage interface {
	// Process filters input, continuing from the current state.
	Process(input []int64) ([]int64, error)

	// Reset clears internal state and readies the stage for a new run.
	Reset() error

	// Order returns the filter order of the stage.
	Order() int

	// InputFormat returns the format Process expects.
	InputFormat() fixp.Format

	// OutputFormat returns the format Process produces.
	OutputFormat() fixp.Format

	// MemoryUsage returns approximate memory usage in bytes.
	MemoryUsage() int64
}

// StageInfo summarizes a stage for reporting.
type StageInfo struct {
	Index  int
	Order  int
	Input  fixp.Format
	Output fixp.Format
}

// Cascade runs stages in series. Each stage receives the previous stage's
// raw output unchanged, so adjacent formats must agree.
type Cascade struct {
	stages []Stage
}

// BuildCascade validates that each stage's output format has the same
// integer and fractional bits as the next stage's input format.
func BuildCascade(stages ...Stage) (*Cascade, error) {
	if len(stages) == 0 {
		return nil, errors.New("cascade needs at least one stage")
	}
	for i := 1; i < len(stages); i++ {
		out := stages[i-1].OutputFormat()
		in := stages[i].InputFormat()
		if !out.SameWidth(in) {
			return nil, fmt.Errorf("%w: stage %d produces %s, stage %d expects %s",
				ErrFormatMismatch, i-1, out, i, in)
		}
	}
	return &Cascade{stages: append([]Stage(nil), stages...)}, nil
}

// Process pushes input through every stage.
func (c *Cascade) Process(input []int64) ([]int64, error) {
	return c.ProcessContext(context.Background(), input)
}

// ProcessContext is Process with a cancellation check between stages.
func (c *Cascade) ProcessContext(ctx context.Context, input []int64) ([]int64, error) {
	data := input
	for i, s := range c.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := s.Process(data)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		data = out
	}
	return data, nil
}

// Reset resets every stage.
func (c *Cascade) Reset() error {
	for i, s := range c.stages {
		if err := s.Reset(); err != nil {
			return fmt.Errorf("stage %d: %w", i, err)
		}
	}
	return nil
}

// Order returns the sum of the stage orders.
func (c *Cascade) Order() int {
	n := 0
	for _, s := range c.stages {
		n += s.Order()
	}
	return n
}

// InputFormat returns the first stage's input format.
func (c *Cascade) InputFormat() fixp.Format { return c.stages[0].InputFormat() }

// OutputFormat returns the last stage's output format.
func (c *Cascade) OutputFormat() fixp.Format { return c.stages[len(c.stages)-1].OutputFormat() }

// MemoryUsage returns the summed memory usage of all stages.
func (c *Cascade) MemoryUsage() int64 {
	var n int64
	for _, s := range c.stages {
		n += s.MemoryUsage()
	}
	return n
}

// Len returns the number of stages.
func (c *Cascade) Len() int { return len(c.stages) }

// Stage returns stage i.
func (c *Cascade) Stage(i int) Stage { return c.stages[i] }

// Stages describes every stage in order.
func (c *Cascade) Stages() []StageInfo {
	infos := make([]StageInfo, 0, len(c.stages))
	for i, s := range c.stages {
		infos = append(infos, StageInfo{
			Index:  i,
			Order:  s.Order(),
			Input:  s.InputFormat(),
			Output: s.OutputFormat(),
		})
	}
	return infos
}
