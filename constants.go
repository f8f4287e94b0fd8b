package fixpoint

// Configuration record keys, matched case-insensitively.
const (
	keyWI    = "wi"
	keyWF    = "wf"
	keyW     = "w"
	keyQuant = "quant"
	keyOvfl  = "ovfl"
	keyScale = "scale"
)

// Scale names accepted by ConfigFromMap.
const (
	scaleNameInteger    = "integer"
	scaleNameInt        = "int"
	scaleNameNormalized = "normalized"
	scaleNameNorm       = "norm"
)

// maxConfigInt bounds integer fields decoded from floats.
const maxConfigInt = 1 << 20

type presetFormat struct{ wi, wf int }

// Preset formats.
var presets = map[string]presetFormat{
	"q7":    {0, 7},
	"q15":   {0, 15},
	"q23":   {0, 23},
	"q31":   {0, 31},
	"int8":  {7, 0},
	"int16": {15, 0},
	"int24": {23, 0},
	"int32": {31, 0},
}

var presetOrder = []string{"q7", "q15", "q23", "q31", "int8", "int16", "int24", "int32"}

// Coefficient array names used in CoefficientError.
const (
	arrayB   = "b"
	arrayA   = "a"
	arraySOS = "sos"
)

// Second-order section layout [b0 b1 b2 a0 a1 a2].
const (
	sosColumns = 6
	sosSplit   = 3
)

// Filter structure names reported by Info.
const (
	structureFIR     = "FIR direct form"
	structureIIR     = "IIR direct form 1"
	structureCascade = "cascade of %d direct form 1 sections"
)

// Channel handling.
const (
	maxChannels = 256
)

// autoTransitionDivisor sets the transition width of DesignLowPass relative
// to the cutoff when the length is estimated.
const autoTransitionDivisor = 4
