package mathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/go-fixpoint/internal/testutil"
)

// TestBesselI0 tests BesselI0 against tabulated values.
func TestBesselI0(t *testing.T) {
	tests := []struct {
		name      string
		x         float64
		expected  float64
		tolerance float64
	}{
		{"Zero", 0.0, 1.0, 1e-15},
		{"Small positive", 0.5, 1.063483370741324, 1e-12},
		{"One", 1.0, 1.266065877752008, 1e-12},
		{"Two", 2.0, 2.279585302336067, 1e-12},
		{"Five", 5.0, 27.23987182360445, 1e-12},
		{"Ten", 10.0, 2815.716628466254, 1e-12},
		{"Twenty", 20.0, 4.355828255955353e7, 1e-11},
		{"Negative one", -1.0, 1.266065877752008, 1e-12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertRelativeError(t, tt.expected, BesselI0(tt.x), tt.tolerance)
		})
	}
}

// TestBesselI0_Monotonic tests I₀(x) is increasing for x > 0.
func TestBesselI0_Monotonic(t *testing.T) {
	prev := BesselI0(0)
	for x := 0.1; x < 15.0; x += 0.1 {
		curr := BesselI0(x)
		assert.Greater(t, curr, prev, "not increasing at x=%v", x)
		prev = curr
	}
}

// TestKaiserBeta tests the β fit in each region.
func TestKaiserBeta(t *testing.T) {
	tests := []struct {
		name        string
		attenuation float64
		expectedMin float64
		expectedMax float64
	}{
		{"20dB", 20.0, 0.0, 0.0},
		{"40dB", 40.0, 3.3, 3.5},
		{"60dB", 60.0, 5.6, 5.7},
		{"100dB", 100.0, 10.0, 10.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertInRange(t, KaiserBeta(tt.attenuation), tt.expectedMin, tt.expectedMax)
		})
	}
}

// TestEstimateFilterLength tests the Kaiser length estimate.
func TestEstimateFilterLength(t *testing.T) {
	tests := []struct {
		name         string
		attenuation  float64
		transitionBW float64
		want         int
	}{
		// (60-7.95)/(14.36*0.1)+1 = 37.2 -> 38 -> 39
		{"60dB_wide", 60, 0.1, 39},
		// (80-7.95)/(14.36*0.05)+1 = 101.3 -> 102 -> 103
		{"80dB_narrow", 80, 0.05, 103},
		{"floor", 10, 0.5, MinFilterLength},
		{"ceiling", 200, 0.0001, MaxFilterLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taps := EstimateFilterLength(tt.attenuation, tt.transitionBW)
			assert.Equal(t, tt.want, taps)
			assert.Equal(t, 1, taps%2, "length should be odd")
		})
	}

	assert.GreaterOrEqual(t, EstimateFilterLength(100, 0), MinFilterLength)
}

// BenchmarkBesselI0 benchmarks BesselI0 at a typical β.
func BenchmarkBesselI0(b *testing.B) {
	for b.Loop() {
		_ = BesselI0(8.6)
	}
}
