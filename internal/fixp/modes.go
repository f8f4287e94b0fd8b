package fixp

import (
	"fmt"
	"strings"
)

// QuantMode selects how the scaled value is brought onto the integer grid.
type QuantMode int

const (
	// QuantRound rounds to the nearest integer, ties away from zero
	// (2.5 -> 3, -2.5 -> -3), the behavior of an add-half-then-truncate
	// rounding stage applied to the magnitude.
	QuantRound QuantMode = iota

	// QuantFix truncates toward zero.
	QuantFix

	// QuantFloor truncates toward negative infinity (drop the LSBs of a
	// two's complement word).
	QuantFloor

	// QuantNone performs no rounding. Paths that must yield an integer
	// drop the remaining fraction the way QuantFloor does.
	QuantNone
)

// String returns the configuration name of the mode.
func (m QuantMode) String() string {
	switch m {
	case QuantRound:
		return quantNameRound
	case QuantFix:
		return quantNameFix
	case QuantFloor:
		return quantNameFloor
	case QuantNone:
		return quantNameNone
	default:
		return fmt.Sprintf("QuantMode(%d)", int(m))
	}
}

// ParseQuantMode parses "round", "fix", "floor" or "none".
func ParseQuantMode(s string) (QuantMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case quantNameRound:
		return QuantRound, nil
	case quantNameFix:
		return QuantFix, nil
	case quantNameFloor:
		return QuantFloor, nil
	case quantNameNone:
		return QuantNone, nil
	default:
		return 0, fmt.Errorf("%w: unknown quantization mode %q", ErrInvalidFormat, s)
	}
}

// OverflowMode selects what happens to values outside the format range.
type OverflowMode int

const (
	// OverflowWrap wraps around modulo 2^W (two's complement).
	OverflowWrap OverflowMode = iota

	// OverflowSaturate clips to Min or Max.
	OverflowSaturate

	// OverflowNone lets values exceed the nominal range. It is used to
	// inspect how far a signal would overflow before a word length is chosen.
	OverflowNone
)

// String returns the configuration name of the mode.
func (m OverflowMode) String() string {
	switch m {
	case OverflowWrap:
		return ovflNameWrap
	case OverflowSaturate:
		return ovflNameSat
	case OverflowNone:
		return ovflNameNone
	default:
		return fmt.Sprintf("OverflowMode(%d)", int(m))
	}
}

// ParseOverflowMode parses "wrap", "sat" (or "saturate") and "none".
func ParseOverflowMode(s string) (OverflowMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ovflNameWrap:
		return OverflowWrap, nil
	case ovflNameSat, ovflNameSatLong:
		return OverflowSaturate, nil
	case ovflNameNone, ovflNameNoneLong:
		return OverflowNone, nil
	default:
		return 0, fmt.Errorf("%w: unknown overflow mode %q", ErrInvalidFormat, s)
	}
}
