package fixpoint

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantizeCoefficients(t *testing.T) {
	b := Config{WI: 0, WF: 3, Quant: QuantRound, Ovfl: OverflowSaturate}
	a := Config{WI: 1, WF: 6, Quant: QuantRound, Ovfl: OverflowSaturate}

	q, err := QuantizeCoefficients(CoefficientSet{
		B: []float64{0.5, -0.25, 1.0, -1.0},
		A: []float64{1, -0.75, 0.125},
	}, b, &a)
	require.NoError(t, err)

	assert.Equal(t, []int64{4, -2, 7, -8}, q.B)
	assert.Equal(t, []int64{64, -48, 8}, q.A)
	assert.Equal(t, "Q0.3", q.BFormat.String())
	assert.Equal(t, "Q1.6", q.AFormat.String())
	// 1.0 saturates, -1.0 is exactly Min
	assert.Equal(t, 1, q.Overflows)
	assert.Equal(t, 0, q.Underflows)
}

func TestQuantizeCoefficients_SharedFormatAndFreshCounters(t *testing.T) {
	cfg := Config{WI: 0, WF: 7, Quant: QuantRound, Ovfl: OverflowSaturate}
	set := CoefficientSet{B: []float64{2, -2}, A: []float64{3}}

	for range 2 {
		q, err := QuantizeCoefficients(set, cfg, nil)
		require.NoError(t, err)
		assert.Equal(t, q.BFormat, q.AFormat)
		assert.Equal(t, 2, q.Overflows)
		assert.Equal(t, 1, q.Underflows)
	}
}

func TestQuantizeCoefficients_SOS(t *testing.T) {
	b := Config{WI: 0, WF: 7, Quant: QuantRound, Ovfl: OverflowSaturate}
	a := Config{WI: 1, WF: 6, Quant: QuantRound, Ovfl: OverflowSaturate}
	sos := [][]float64{
		{0.25, 0.5, 0.25, 1, -0.5, 0.25},
		{0.5, 0.5, 0, 1, 0.75, 0},
	}

	q, err := QuantizeCoefficients(CoefficientSet{SOS: sos}, b, &a)
	require.NoError(t, err)
	assert.Equal(t, [][]int64{
		{32, 64, 32, 64, -32, 16},
		{64, 64, 0, 64, 48, 0},
	}, q.SOS)
	assert.Empty(t, q.B)

	back := q.Real()
	for i := range sos {
		assert.InDeltaSlice(t, sos[i], back.SOS[i], 0)
	}
}

func TestQuantizeCoefficients_Errors(t *testing.T) {
	cfg := Config{WI: 1, WF: 14, Quant: QuantRound, Ovfl: OverflowSaturate}

	tests := []struct {
		name      string
		set       CoefficientSet
		wantArray string
		wantIndex int
	}{
		{"nan_in_b", CoefficientSet{B: []float64{0.1, math.NaN()}}, "b", 1},
		{"inf_in_a", CoefficientSet{B: []float64{0.1}, A: []float64{1, math.Inf(-1)}}, "a", 1},
		{"nan_in_sos", CoefficientSet{SOS: [][]float64{{1, 0, 0, 1, 0, 0}, {1, 0, 0, 1, math.NaN(), 0}}}, "sos", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := QuantizeCoefficients(tt.set, cfg, nil)
			require.ErrorIs(t, err, ErrInvalidCoefficient)

			var ce *CoefficientError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.wantArray, ce.Array)
			assert.Equal(t, tt.wantIndex, ce.Index)
			assert.Contains(t, err.Error(), tt.wantArray)
		})
	}

	_, err := QuantizeCoefficients(CoefficientSet{}, cfg, nil)
	assert.ErrorIs(t, err, ErrInvalidCoefficient)

	_, err = QuantizeCoefficients(CoefficientSet{SOS: [][]float64{{1, 0, 0, 2, 0, 0}}}, cfg, nil)
	assert.ErrorIs(t, err, ErrInvalidCoefficient)

	_, err = QuantizeCoefficients(CoefficientSet{B: []float64{1}}, Config{WI: -1}, nil)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestQuantizedCoefficientSet_Strings(t *testing.T) {
	cfg := Config{WI: 0, WF: 7, Quant: QuantRound, Ovfl: OverflowSaturate}
	q, err := QuantizeCoefficients(CoefficientSet{B: []float64{0.5, -0.5, -1}}, cfg, nil)
	require.NoError(t, err)

	tests := []struct {
		radix Radix
		want  []string
	}{
		{RadixDec, []string{"64", "-64", "-128"}},
		{RadixHex, []string{"40", "c0", "80"}},
		{RadixBin, []string{"01000000", "11000000", "10000000"}},
		{RadixCSD, []string{"+000000", "-000000", "-0000000"}},
	}
	for _, tt := range tests {
		t.Run(tt.radix.String(), func(t *testing.T) {
			b, a, err := q.Strings(tt.radix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, b)
			assert.Empty(t, a)
		})
	}
}

func TestRadixRoundTrip(t *testing.T) {
	f, err := NewFormat(3, 4)
	require.NoError(t, err)

	for _, r := range []Radix{RadixDec, RadixHex, RadixBin, RadixCSD} {
		for v := f.Min(); v <= f.Max(); v++ {
			s, err := ToRadix(v, f, r)
			require.NoError(t, err)
			got, err := ParseRadix(s, f, r)
			require.NoError(t, err)
			require.Equal(t, v, got, "%s %q", r, s)
		}
	}

	_, err = ToRadix(f.Max()+1, f, RadixHex)
	assert.ErrorIs(t, err, ErrInvalidFormat)

	r, err := RadixByName("CSD")
	require.NoError(t, err)
	assert.Equal(t, RadixCSD, r)
}

func TestAdderCost(t *testing.T) {
	q := &QuantizedCoefficientSet{
		B: []int64{7, 3, 0, 64},
		A: []int64{1 << 10, 5},
	}
	// 7 = +00-, 3 = +0-, 64 = +000000, 5 = +0+; a[0] is free
	assert.Equal(t, 2+2+0+1+2, q.AdderCost())
	assert.Len(t, CSDDigits(7), 4)
}
