package main

// Default command-line flag values
const (
	defaultCutoff      = 0.1  // cycles per sample
	defaultAttenuation = 60.0 // dB
	defaultOrder       = 4
	defaultFormat      = "Q1.14"
)

// Filter types
const (
	typeLowPass     = "lowpass"
	typeButterworth = "butter"
	typeList        = "list"
)

// Response analysis
const (
	responsePoints = 1024
	floorDB        = -120.0
)

// Radix names
const (
	radixAll = "all"
)

// Demo word lengths
var demoFractionBits = []int{7, 11, 15, 19, 23}
