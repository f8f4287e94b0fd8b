package fixp

// Word length limits. Raw fixed-point values are carried in int64, so the
// widest format (sign bit included) is 64 bits.
const (
	maxWordLength = 64
	registerBits  = 64
	signBits      = 1
)

// Quantization and overflow mode names as they appear in configuration
// records.
const (
	quantNameRound = "round"
	quantNameFix   = "fix"
	quantNameFloor = "floor"
	quantNameNone  = "none"

	ovflNameWrap     = "wrap"
	ovflNameSat      = "sat"
	ovflNameSatLong  = "saturate"
	ovflNameNone     = "none"
	ovflNameNoneLong = "no_ovfl"
)

// two63 is 2^63, the first float64 magnitude that no longer fits int64.
const two63 float64 = 1 << 63
