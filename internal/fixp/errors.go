package fixp

import "errors"

// Errors returned by format construction and quantization.
var (
	// ErrInvalidFormat indicates a malformed fixed-point format or mode name.
	ErrInvalidFormat = errors.New("invalid fixed-point format")

	// ErrNonFinite indicates a NaN or infinite value was offered for quantization.
	ErrNonFinite = errors.New("value is not finite")

	// ErrOutOfRange indicates a quantized value that cannot be held in 64 bits.
	ErrOutOfRange = errors.New("value out of 64-bit range")
)
