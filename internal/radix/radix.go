// Package radix renders raw fixed-point integers as decimal, hexadecimal,
// binary or canonical signed digit text and parses them back.
package radix

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tphakala/go-fixpoint/internal/fixp"
)

// Radix selects a textual representation.
type Radix int

const (
	// Dec is a signed decimal integer.
	Dec Radix = iota
	// Hex is the W-bit two's complement pattern in lowercase hexadecimal.
	Hex
	// Bin is the W-bit two's complement pattern in binary.
	Bin
	// CSD is the canonical signed digit form using '+', '-' and '0'.
	CSD
)

// String returns the radix name.
func (r Radix) String() string {
	switch r {
	case Dec:
		return nameDec
	case Hex:
		return nameHex
	case Bin:
		return nameBin
	case CSD:
		return nameCSD
	default:
		return fmt.Sprintf("Radix(%d)", int(r))
	}
}

// ParseRadix parses "dec", "hex", "bin" or "csd".
func ParseRadix(name string) (Radix, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case nameDec:
		return Dec, nil
	case nameHex:
		return Hex, nil
	case nameBin:
		return Bin, nil
	case nameCSD:
		return CSD, nil
	default:
		return 0, fmt.Errorf("%w: unknown radix %q", fixp.ErrInvalidFormat, name)
	}
}

// Format renders raw, an integer of format f, in radix r.
func Format(raw int64, f fixp.Format, r Radix) (string, error) {
	if !f.Contains(raw) {
		return "", fmt.Errorf("%w: %d does not fit %s", fixp.ErrInvalidFormat, raw, f)
	}
	w := f.W()
	switch r {
	case Dec:
		return strconv.FormatInt(raw, 10), nil
	case Hex:
		s := strconv.FormatUint(pattern(raw, w), 16)
		return pad(s, (w+hexDigitBits-1)/hexDigitBits), nil
	case Bin:
		return pad(strconv.FormatUint(pattern(raw, w), 2), w), nil
	case CSD:
		return CSDString(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown radix %d", fixp.ErrInvalidFormat, int(r))
	}
}

// Parse reads text written in radix r back into a raw integer of format f.
// Hex and binary text is read as a W-bit two's complement pattern with an
// optional 0x or 0b prefix.
func Parse(s string, f fixp.Format, r Radix) (int64, error) {
	s = strings.TrimSpace(s)
	w := f.W()

	var raw int64
	switch r {
	case Dec:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", fixp.ErrInvalidFormat, err)
		}
		raw = v
	case Hex, Bin:
		base, prefix := 16, "0x"
		if r == Bin {
			base, prefix = 2, "0b"
		}
		s = strings.TrimPrefix(strings.ToLower(s), prefix)
		u, err := strconv.ParseUint(s, base, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", fixp.ErrInvalidFormat, err)
		}
		if w < registerBits && u>>uint(w) != 0 {
			return 0, fmt.Errorf("%w: %q is wider than %d bits", fixp.ErrInvalidFormat, s, w)
		}
		raw = signExtend(u, w)
	case CSD:
		v, err := ParseCSD(s)
		if err != nil {
			return 0, err
		}
		raw = v
	default:
		return 0, fmt.Errorf("%w: unknown radix %d", fixp.ErrInvalidFormat, int(r))
	}

	if !f.Contains(raw) {
		return 0, fmt.Errorf("%w: %d does not fit %s", fixp.ErrInvalidFormat, raw, f)
	}
	return raw, nil
}

// pattern returns the low w bits of raw.
func pattern(raw int64, w int) uint64 {
	u := uint64(raw)
	if w < registerBits {
		u &= 1<<uint(w) - 1
	}
	return u
}

func signExtend(u uint64, w int) int64 {
	shift := uint(registerBits - w)
	return int64(u<<shift) >> shift
}

func pad(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat("0", n-len(s)) + s
}
