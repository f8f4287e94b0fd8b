// Package mathutil provides the numeric helpers shared by filter design and
// word length analysis.
package mathutil

import "math"

// BesselI0 computes the modified Bessel function of the first kind, order
// zero, by summing its power series
//
//	I₀(x) = Σ ((x/2)^k / k!)²
//
// until a term no longer changes the sum. The series converges for every x
// and is accurate to double precision for the β range Kaiser windows use.
func BesselI0(x float64) float64 {
	half := x / 2
	sum, term := 1.0, 1.0
	for k := 1; k < besselMaxTerms; k++ {
		f := half / float64(k)
		term *= f * f
		sum += term
		if term < sum*besselEpsilon {
			break
		}
	}
	return sum
}

// KaiserBeta returns the Kaiser window β for a stopband attenuation in dB
// (Kaiser's empirical fit).
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserAttHigh:
		return kaiserBetaHighCoeff * (attenuation - kaiserBetaHighOffset)
	case attenuation >= kaiserAttMedium:
		d := attenuation - kaiserAttMedium
		return kaiserBetaMedCoeff1*math.Pow(d, kaiserBetaMedPower) + kaiserBetaMedCoeff2*d
	default:
		return 0
	}
}

// EstimateFilterLength returns the number of taps a Kaiser windowed FIR
// needs for the given attenuation (dB) and transition width (fraction of
// the sample rate):
//
//	N = (att - 7.95) / (14.36 Δf) + 1
//
// The result is rounded up to an odd length and clamped to
// [MinFilterLength, MaxFilterLength].
func EstimateFilterLength(attenuation, transitionBW float64) int {
	if transitionBW <= 0 {
		transitionBW = defaultTransitionBW
	}
	n := (attenuation-kaiserLengthOffset)/(kaiserLengthSlope*transitionBW) + 1
	taps := int(math.Ceil(n))
	if taps%2 == 0 {
		taps++
	}
	return min(max(taps, MinFilterLength), MaxFilterLength)
}
