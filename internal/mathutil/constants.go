package mathutil

// Power series limits for BesselI0.
const (
	besselMaxTerms = 500
	besselEpsilon  = 1e-17
)

// Kaiser β fit (Kaiser & Schafer).
const (
	kaiserAttHigh        = 50.0
	kaiserAttMedium      = 21.0
	kaiserBetaHighCoeff  = 0.1102
	kaiserBetaHighOffset = 8.7
	kaiserBetaMedCoeff1  = 0.5842
	kaiserBetaMedPower   = 0.4
	kaiserBetaMedCoeff2  = 0.07886
)

// Kaiser length estimate.
const (
	kaiserLengthOffset  = 7.95
	kaiserLengthSlope   = 14.36
	defaultTransitionBW = 0.01

	// MinFilterLength is the shortest FIR EstimateFilterLength returns.
	MinFilterLength = 3
	// MaxFilterLength is the longest FIR EstimateFilterLength returns.
	MaxFilterLength = 8191
)
