package filter

import "errors"

var (
	// ErrInvalidParams indicates design parameters outside their valid range.
	ErrInvalidParams = errors.New("invalid filter parameters")

	// ErrInvalidSOS indicates a malformed second-order section array.
	ErrInvalidSOS = errors.New("invalid second-order sections")
)
