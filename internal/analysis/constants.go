package analysis

const (
	nyquist   = 0.5
	minPoints = 2

	// minDB is the floor used for zero magnitudes.
	minDB = -400.0

	sosColumns = 6
)

// Quantization noise of a full-scale sine.
const (
	idealSNRSlope  = 6.02
	idealSNROffset = 1.76
)
