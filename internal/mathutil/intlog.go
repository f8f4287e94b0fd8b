package mathutil

import "math/bits"

// FloorLog2 returns floor(log2(n)) for n >= 1 and 0 for n <= 1. Accumulator
// sizing treats zero- and first-order filters alike, so the zero case needs
// no special handling by callers.
func FloorLog2(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len64(uint64(n)) - 1
}

// BitLen returns the number of bits needed to hold the unsigned magnitude
// u, 0 for u == 0.
func BitLen(u uint64) int {
	return bits.Len64(u)
}

// AbsUint returns |v| as an unsigned value. It is exact for math.MinInt64.
func AbsUint(v int64) uint64 {
	if v < 0 {
		return uint64(^v) + 1
	}
	return uint64(v)
}

// AddSat returns a+b, clamped to the largest uint64 on carry.
func AddSat(a, b uint64) uint64 {
	s, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return ^uint64(0)
	}
	return s
}
