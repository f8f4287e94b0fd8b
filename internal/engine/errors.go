package engine

import "errors"

// Errors returned by simulator configuration and stepping.
var (
	// ErrConfiguration indicates empty or inconsistent coefficients, formats
	// that do not fit the 64-bit register, or an unsatisfiable accumulator
	// policy.
	ErrConfiguration = errors.New("invalid simulator configuration")

	// ErrNotConfigured indicates Step or Run before Setup and Reset, or after
	// Finish.
	ErrNotConfigured = errors.New("simulator not configured")
)
