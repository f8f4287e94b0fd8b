package main

const (
	// Frames per processing chunk
	bufferSize = 65536

	// Channel count constants for fast paths
	monoChannels   = 1
	stereoChannels = 2

	// WAV format tag for integer PCM
	wavFormatPCM = 1

	// CLI defaults
	defaultCutoffHz    = 4000.0
	defaultAttenuation = 80.0
	defaultOrder       = 4
	defaultCoeffFormat = "Q1.14"
	minRequiredArgs    = 2
	percentScale       = 100
	progressInterval   = 10 // Print progress every N%

	// Filter types
	filterLowPass     = "lowpass"
	filterButterworth = "butter"
)

// supportedBitDepths are the PCM depths handled as signed raw integers.
// 8-bit WAV is unsigned and not supported.
var supportedBitDepths = map[int]bool{16: true, 24: true, 32: true}
