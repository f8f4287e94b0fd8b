package filter

import "math"

const (
	// nyquist is half the sample rate in cycles per sample.
	nyquist = 0.5

	sincEpsilon = 1e-10
)

// Second-order section layout: one row per section,
// [b0 b1 b2 a0 a1 a2].
const (
	sosColumns = 6
	sosA0      = 3
)

// butterworthDefaultQ is the Q of a second-order Butterworth section.
const butterworthDefaultQ = 1 / math.Sqrt2
