package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NoiseStats summarizes the error between a reference signal and a test
// signal of the same length, typically float reference output against
// fixed-point output converted back to real values.
type NoiseStats struct {
	Mean   float64 // mean error (DC offset introduced by rounding)
	StdDev float64
	RMS    float64
	Peak   float64 // largest absolute error
	SNR    float64 // signal to error power in dB, +Inf for identical signals
}

// Compare computes NoiseStats for test - ref.
func Compare(ref, test []float64) (NoiseStats, error) {
	if len(ref) != len(test) || len(ref) == 0 {
		return NoiseStats{}, fmt.Errorf("%w: signal lengths %d and %d", ErrInvalidInput, len(ref), len(test))
	}

	diff := make([]float64, len(test))
	floats.SubTo(diff, test, ref)

	var s NoiseStats
	if len(diff) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(diff, nil)
	} else {
		s.Mean = diff[0]
	}
	s.RMS = floats.Norm(diff, 2) / math.Sqrt(float64(len(diff)))
	s.Peak = floats.Norm(diff, math.Inf(1))

	noise := floats.Dot(diff, diff)
	signal := floats.Dot(ref, ref)
	switch {
	case noise == 0:
		s.SNR = math.Inf(1)
	case signal == 0:
		s.SNR = math.Inf(-1)
	default:
		s.SNR = 10 * math.Log10(signal/noise)
	}
	return s, nil
}

// String renders the statistics on one line.
func (s NoiseStats) String() string {
	return fmt.Sprintf("mean=%.3g std=%.3g rms=%.3g peak=%.3g snr=%.2f dB",
		s.Mean, s.StdDev, s.RMS, s.Peak, s.SNR)
}

// IdealSNR returns the SNR in dB of a full-scale sine quantized by rounding
// to w bits, 6.02·w + 1.76.
func IdealSNR(w int) float64 {
	return idealSNRSlope*float64(w) + idealSNROffset
}
