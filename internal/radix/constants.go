package radix

const (
	nameDec = "dec"
	nameHex = "hex"
	nameBin = "bin"
	nameCSD = "csd"
)

const (
	registerBits = 64
	hexDigitBits = 4
)

// CSD digit characters, most significant digit first in text form.
const (
	csdPlus  = '+'
	csdMinus = '-'
	csdZero  = '0'
)
