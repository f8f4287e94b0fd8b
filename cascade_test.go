package fixpoint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-fixpoint/internal/analysis"
	"github.com/tphakala/go-fixpoint/internal/testutil"
)

func sectionConfig() FilterConfig {
	return FilterConfig{
		Input:  fractional(15),
		Output: fractional(15),
		Coeff:  Config{WI: 1, WF: 22, Quant: QuantRound, Ovfl: OverflowSaturate},
		Policy: AccuAuto,
	}
}

func TestCascade_SingleSectionEqualsFilter(t *testing.T) {
	set, err := DesignButterworth(2, 0.12)
	require.NoError(t, err)
	require.Len(t, set.SOS, 1)
	cfg := sectionConfig()

	c, err := NewCascade(cfg, set.SOS)
	require.NoError(t, err)
	row := set.SOS[0]
	f, err := NewFilter(cfg, CoefficientSet{B: row[:3], A: row[3:]})
	require.NoError(t, err)

	input := testutil.RawNoise(2000, -16000, 16000, 5)
	want, err := f.Process(input)
	require.NoError(t, err)
	got, err := c.Process(input)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, f.Stats(), c.Stats())
}

func TestCascade_ButterworthAgainstReference(t *testing.T) {
	set, err := DesignButterworth(5, 0.1)
	require.NoError(t, err)

	c, err := NewCascade(sectionConfig(), set.SOS)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 6, c.Order())

	input := testutil.Sine(4096, 0.01, 0.5)
	got, err := c.ProcessFloat(input)
	require.NoError(t, err)

	ref, err := NewReference(set)
	require.NoError(t, err)
	stats, err := analysis.Compare(ref.Process(input), got)
	require.NoError(t, err)
	assert.Greater(t, stats.SNR, 50.0, stats.String())
	assert.Zero(t, c.Stats().Total())

	info := c.Info()
	assert.Equal(t, "cascade of 3 direct form 1 sections", info.Structure)
	assert.Equal(t, 3, info.Sections)
	assert.Equal(t, c.MemoryUsage(), info.MemoryUsage)

	qref, err := c.QuantizedReference()
	require.NoError(t, err)
	assert.Equal(t, 6, qref.Order())
}

func TestCascade_ResetAndCancel(t *testing.T) {
	set, err := DesignButterworth(4, 0.2)
	require.NoError(t, err)
	c, err := NewCascade(sectionConfig(), set.SOS)
	require.NoError(t, err)

	input := testutil.RawNoise(256, -8000, 8000, 9)
	first, err := c.Process(input)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.ProcessContext(ctx, input)
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, c.Reset())
	again, err := c.Process(input)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestCascade_SectionFormats(t *testing.T) {
	set, err := DesignButterworth(4, 0.2)
	require.NoError(t, err)
	cfg := sectionConfig()
	cfg.Input = fractional(11)

	c, err := NewCascade(cfg, set.SOS)
	require.NoError(t, err)
	assert.Equal(t, "Q0.11", c.InputFormat().String())
	assert.Equal(t, "Q0.15", c.Section(1).InputFormat().String())
	assert.Equal(t, "Q0.15", c.OutputFormat().String())
}

func TestNewCascade_InvalidSOS(t *testing.T) {
	cfg := sectionConfig()
	tests := []struct {
		name string
		sos  [][]float64
	}{
		{"empty", nil},
		{"five_columns", [][]float64{{1, 0, 0, 1, 0}}},
		{"a0_not_one", [][]float64{{1, 0, 0, 0.5, 0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCascade(cfg, tt.sos)
			assert.ErrorIs(t, err, ErrInvalidCoefficient)
		})
	}
}
