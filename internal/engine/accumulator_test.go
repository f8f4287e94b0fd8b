package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-fixpoint/internal/fixp"
)

func TestAccumulatorWidth(t *testing.T) {
	tests := []struct {
		name               string
		inW, coeffW, order int
		want               int
	}{
		{"order_8_16x24", 16, 24, 8, 44},
		{"order_0", 16, 16, 0, 33},
		{"order_1", 16, 16, 1, 33},
		{"order_7", 16, 16, 7, 35},
		{"order_64", 12, 12, 64, 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AccumulatorWidth(tt.inW, tt.coeffW, tt.order))
		})
	}
}

func TestDeriveAccumulator_Auto(t *testing.T) {
	// 16-bit input, 24-bit coefficients, order 8 -> 44 bits
	p := Params{
		Input:  fixp.MustFormat(0, 15),
		CoeffB: fixp.MustFormat(1, 22),
		Policy: AccuAuto,
		B:      make([]int64, 9),
	}
	acc, err := deriveAccumulator(&p, 8)
	require.NoError(t, err)
	assert.Equal(t, 44, acc.W())
	assert.Equal(t, 37, acc.WF())
	assert.Equal(t, 6, acc.WI())
}

func TestDeriveAccumulator_Manual(t *testing.T) {
	acc := fixp.MustFormat(10, 20)
	p := Params{Policy: AccuManual, Accumulator: &acc}

	got, err := deriveAccumulator(&p, 3)
	require.NoError(t, err)
	assert.Equal(t, acc, got)

	p.Accumulator = nil
	_, err = deriveAccumulator(&p, 3)
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestDeriveAccumulator_FullWithFeedback(t *testing.T) {
	// b in Q1.6, a in Q1.4: a taps are scaled up by 2^2 onto the b grid
	p := Params{
		Input:  fixp.MustFormat(0, 7),
		CoeffB: fixp.MustFormat(1, 6),
		CoeffA: fixp.MustFormat(1, 4),
		Policy: AccuFull,
		B:      []int64{32, 32},
		A:      []int64{16, -8},
	}
	acc, err := deriveAccumulator(&p, 1)
	require.NoError(t, err)
	// Σ = 64 + 8*4 = 96 -> 7 bits, + 7 input magnitude bits + sign
	assert.Equal(t, 15, acc.W())
	assert.Equal(t, 13, acc.WF())

	// coarser b grid: a taps are scaled down, rounding up
	p.CoeffB = fixp.MustFormat(1, 2)
	p.B = []int64{2, 2}
	p.A = []int64{16, -9}
	acc, err = deriveAccumulator(&p, 1)
	require.NoError(t, err)
	// Σ = 4 + ceil(9/4) = 7 -> 3 bits
	assert.Equal(t, 11, acc.W())
}

func TestParseAccuPolicy(t *testing.T) {
	for s, want := range map[string]AccuPolicy{
		"auto": AccuAuto, "man": AccuManual, "Manual": AccuManual, "full": AccuFull,
	} {
		got, err := ParseAccuPolicy(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseAccuPolicy("huge")
	require.ErrorIs(t, err, ErrConfiguration)

	assert.Equal(t, "full", AccuFull.String())
	assert.Equal(t, "AccuPolicy(7)", AccuPolicy(7).String())
}
