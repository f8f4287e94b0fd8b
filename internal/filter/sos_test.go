package filter

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSOS(t *testing.T) {
	tests := []struct {
		name    string
		sos     [][]float64
		wantErr bool
	}{
		{"single", [][]float64{{1, 2, 1, 1, -0.5, 0.25}}, false},
		{"two", [][]float64{{1, 0, 0, 1, 0, 0}, {0.5, 0.5, 0, 1, -0.1, 0}}, false},
		{"empty", nil, true},
		{"short_row", [][]float64{{1, 2, 1, 1, -0.5}}, true},
		{"long_row", [][]float64{{1, 2, 1, 1, -0.5, 0.25, 0}}, true},
		{"a0_not_one", [][]float64{{1, 2, 1, 2, -0.5, 0.25}}, true},
		{"nan", [][]float64{{1, math.NaN(), 1, 1, -0.5, 0.25}}, true},
		{"inf", [][]float64{{1, 2, 1, 1, math.Inf(1), 0.25}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSOS(tt.sos)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSOS)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSOSToBA(t *testing.T) {
	// (1 + z⁻¹)(1 - z⁻¹) = 1 - z⁻², (1 - 0.5z⁻¹)(1 + 0.25z⁻¹) = 1 - 0.25z⁻¹ - 0.125z⁻²
	sos := [][]float64{
		{1, 1, 0, 1, -0.5, 0},
		{1, -1, 0, 1, 0.25, 0},
	}
	b, a, err := SOSToBA(sos)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 0, -1, 0, 0}, b, 1e-15)
	assert.InDeltaSlice(t, []float64{1, -0.25, -0.125, 0, 0}, a, 1e-15)

	_, _, err = SOSToBA(nil)
	assert.ErrorIs(t, err, ErrInvalidSOS)
}

func TestSOSToBA_MatchesCascadeResponse(t *testing.T) {
	sos, err := ButterworthLowPass(5, 0.1)
	require.NoError(t, err)
	b, a, err := SOSToBA(sos)
	require.NoError(t, err)

	for _, f := range []float64{0, 0.05, 0.1, 0.2, 0.4} {
		want := complex(1, 0)
		for _, row := range sos {
			sb, sa := SplitSection(row)
			want *= response(sb, sa, f)
		}
		got := response(b, a, f)
		assert.InDelta(t, cmplx.Abs(want), cmplx.Abs(got), 1e-9, "f=%g", f)
	}
}

func TestButterworthLowPass(t *testing.T) {
	const cutoff = 0.1
	for _, order := range []int{1, 2, 3, 4, 7, 8} {
		sos, err := ButterworthLowPass(order, cutoff)
		require.NoError(t, err)
		require.NoError(t, ValidateSOS(sos))
		assert.Len(t, sos, (order+1)/2, "order %d", order)

		b, a, err := SOSToBA(sos)
		require.NoError(t, err)
		assert.InDelta(t, 0, magnitudeDB(b, a, 0), 1e-9, "order %d DC gain", order)
		assert.InDelta(t, -10*math.Log10(2), magnitudeDB(b, a, cutoff), 1e-6, "order %d -3 dB point", order)
		assert.Less(t, magnitudeDB(b, a, 0.4), magnitudeDB(b, a, 0.2), "order %d monotonic stopband", order)
	}
}

func TestButterworthLowPass_OddOrderEndsWithFirstOrderSection(t *testing.T) {
	sos, err := ButterworthLowPass(3, 0.2)
	require.NoError(t, err)
	last := sos[len(sos)-1]
	assert.Zero(t, last[2])
	assert.Zero(t, last[5])
}

func TestButterworthHighPass(t *testing.T) {
	const cutoff = 0.2
	for _, order := range []int{1, 2, 5} {
		sos, err := ButterworthHighPass(order, cutoff)
		require.NoError(t, err)
		b, a, err := SOSToBA(sos)
		require.NoError(t, err)

		assert.InDelta(t, 1, cmplx.Abs(response(b, a, nyquist)), 1e-9, "order %d Nyquist gain", order)
		assert.InDelta(t, 0, cmplx.Abs(response(b, a, 0)), 1e-9, "order %d DC gain", order)
		assert.InDelta(t, -10*math.Log10(2), magnitudeDB(b, a, cutoff), 1e-6, "order %d -3 dB point", order)
	}
}

func TestButterworth_InvalidParams(t *testing.T) {
	_, err := ButterworthLowPass(0, 0.1)
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = ButterworthLowPass(2, 0.5)
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = ButterworthHighPass(2, -0.1)
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = LowPassBiquad(0.7, 0.7)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestLowPassBiquad_DefaultQ(t *testing.T) {
	withDefault, err := LowPassBiquad(0.1, 0)
	require.NoError(t, err)
	explicit, err := LowPassBiquad(0.1, 1/math.Sqrt2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, explicit, withDefault, 1e-15)
}
