package radix

import (
	"fmt"
	"strings"

	"github.com/tphakala/go-fixpoint/internal/fixp"
)

// CSDDigits returns the canonical signed digit representation of v, least
// significant digit first. Every digit is -1, 0 or +1 and no two adjacent
// digits are non-zero. Zero yields an empty slice.
//
// The residual is consumed from the LSB: an odd residual emits +1 when it is
// 1 mod 4 and -1 when it is 3 mod 4, the digit is subtracted and the residual
// halved. Arithmetic shifts keep this exact for negative values, including
// math.MinInt64.
func CSDDigits(v int64) []int8 {
	var digits []int8
	for v != 0 {
		if v&1 == 0 {
			digits = append(digits, 0)
			v >>= 1
			continue
		}
		if v&3 == 1 {
			digits = append(digits, 1)
			v >>= 1
		} else {
			digits = append(digits, -1)
			v = v>>1 + 1
		}
	}
	return digits
}

// EvalCSD returns the integer a digit slice (LSB first) stands for.
func EvalCSD(digits []int8) int64 {
	var v int64
	for i := len(digits) - 1; i >= 0; i-- {
		v = v<<1 + int64(digits[i])
	}
	return v
}

// NonZeroDigits returns the number of non-zero CSD digits of v, the number
// of adders or subtractors a shift-and-add multiplier by v needs plus one.
func NonZeroDigits(v int64) int {
	n := 0
	for _, d := range CSDDigits(v) {
		if d != 0 {
			n++
		}
	}
	return n
}

// IsCanonical reports whether digits contains only -1, 0, +1 with no two
// adjacent non-zero digits.
func IsCanonical(digits []int8) bool {
	for i, d := range digits {
		if d < -1 || d > 1 {
			return false
		}
		if d != 0 && i > 0 && digits[i-1] != 0 {
			return false
		}
	}
	return true
}

// CSDString renders v as CSD text, most significant digit first.
func CSDString(v int64) string {
	digits := CSDDigits(v)
	if len(digits) == 0 {
		return string(csdZero)
	}
	var b strings.Builder
	b.Grow(len(digits))
	for i := len(digits) - 1; i >= 0; i-- {
		switch digits[i] {
		case 1:
			b.WriteByte(csdPlus)
		case -1:
			b.WriteByte(csdMinus)
		default:
			b.WriteByte(csdZero)
		}
	}
	return b.String()
}

// ParseCSD reads CSD text (most significant digit first). Non-canonical
// digit strings are accepted as long as they only use '+', '-' and '0'.
func ParseCSD(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty CSD string", fixp.ErrInvalidFormat)
	}
	if len(s) > registerBits {
		return 0, fmt.Errorf("%w: CSD string longer than %d digits", fixp.ErrInvalidFormat, registerBits)
	}
	digits := make([]int8, len(s))
	for i := range len(s) {
		var d int8
		switch s[i] {
		case csdPlus:
			d = 1
		case csdMinus:
			d = -1
		case csdZero:
		default:
			return 0, fmt.Errorf("%w: invalid CSD digit %q", fixp.ErrInvalidFormat, s[i])
		}
		digits[len(s)-1-i] = d
	}
	return EvalCSD(digits), nil
}
