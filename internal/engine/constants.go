package engine

// Register layout.
const (
	registerBits = 64
	signBits     = 1

	// guardBits is the extra MSB the accumulator is computed with. The sum
	// is sign-extended from W_acc+guardBits bits and the two top bits are
	// compared to detect overflow.
	guardBits = 1
)

// Accumulator policy names as they appear in configuration records.
const (
	policyNameAuto        = "auto"
	policyNameManual      = "manual"
	policyNameManualShort = "man"
	policyNameFull        = "full"
)

// cancelCheckInterval is how many samples RunContext processes between
// context checks.
const cancelCheckInterval = 1024

// Byte sizes for memory estimates.
const (
	bytesPerInt64   = 8
	bytesPerFloat32 = 4
	bytesPerFloat64 = 8
)

// Block convolution in the float64 reference.
const (
	// minTapsForFFT is the FIR length from which the reference switches
	// to overlap-save FFT evaluation.
	minTapsForFFT = 400

	// fftMinBlock is the smallest FFT length used for block convolution.
	fftMinBlock = 512
)
