// Package fixp implements signed fixed-point number formats and the
// quantizer that maps real values onto them.
package fixp

import (
	"fmt"
	"math"
)

// ScaleMode selects how a Format relates real values to raw integers.
type ScaleMode int

const (
	// ScaleInteger maps a real value v to the raw integer v * 2^WF.
	// The raw integer is the value with its binary point removed.
	ScaleInteger ScaleMode = iota

	// ScaleNormalized maps the real interval [-1, 1) onto the full integer
	// range, i.e. raw = v * 2^(W-1). The largest representable real value is
	// just below 1 regardless of the integer/fraction split.
	ScaleNormalized

	// ScaleExplicit uses a caller supplied factor.
	ScaleExplicit
)

// String returns the mode name.
func (m ScaleMode) String() string {
	switch m {
	case ScaleInteger:
		return "integer"
	case ScaleNormalized:
		return "normalized"
	case ScaleExplicit:
		return "explicit"
	default:
		return fmt.Sprintf("ScaleMode(%d)", int(m))
	}
}

// Format describes a signed two's complement fixed-point format with WI
// integer bits, WF fractional bits and one sign bit.
//
// Format is a value type. The With* methods return modified copies, so the
// word length W and the representable range are derived from WI and WF on
// every read and can never disagree with them. The zero value is Q0.0, a
// one-bit format holding -1 and 0.
type Format struct {
	wi, wf    int
	scaleMode ScaleMode
	scale     float64 // only used by ScaleExplicit
}

// NewFormat returns the format with wi integer and wf fractional bits.
func NewFormat(wi, wf int) (Format, error) {
	if wi < 0 || wf < 0 {
		return Format{}, fmt.Errorf("%w: WI=%d, WF=%d must not be negative", ErrInvalidFormat, wi, wf)
	}
	if wi+wf+signBits > maxWordLength {
		return Format{}, fmt.Errorf("%w: W=%d exceeds %d bits", ErrInvalidFormat, wi+wf+signBits, maxWordLength)
	}
	return Format{wi: wi, wf: wf}, nil
}

// MustFormat is like NewFormat but panics on invalid arguments.
// It is intended for package level tables and tests.
func MustFormat(wi, wf int) Format {
	f, err := NewFormat(wi, wf)
	if err != nil {
		panic(err)
	}
	return f
}

// WI returns the number of integer bits.
func (f Format) WI() int { return f.wi }

// WF returns the number of fractional bits.
func (f Format) WF() int { return f.wf }

// W returns the total word length including the sign bit.
func (f Format) W() int { return f.wi + f.wf + signBits }

// Min returns the smallest raw integer, -2^(W-1).
func (f Format) Min() int64 {
	return -1 << uint(f.W()-1)
}

// Max returns the largest raw integer, 2^(W-1)-1.
func (f Format) Max() int64 {
	return ^f.Min()
}

// Contains reports whether raw lies within [Min, Max].
func (f Format) Contains(raw int64) bool {
	return raw >= f.Min() && raw <= f.Max()
}

// Wrap reduces raw modulo 2^W into [Min, Max], the way a W-bit register
// silently drops carries out of its MSB.
func (f Format) Wrap(raw int64) int64 {
	shift := uint(registerBits - f.W())
	return (raw << shift) >> shift
}

// LSB returns the real weight of the least significant bit, 2^-WF.
func (f Format) LSB() float64 {
	return math.Ldexp(1, -f.wf)
}

// ScaleMode returns how Scale is derived.
func (f Format) ScaleMode() ScaleMode { return f.scaleMode }

// Scale returns the factor from a real value to the raw integer grid.
func (f Format) Scale() float64 {
	switch f.scaleMode {
	case ScaleNormalized:
		return math.Ldexp(1, f.W()-1)
	case ScaleExplicit:
		return f.scale
	default:
		return math.Ldexp(1, f.wf)
	}
}

// WithScale returns a copy of f using the given scale mode. explicit is only
// read for ScaleExplicit and must be positive and finite.
func (f Format) WithScale(mode ScaleMode, explicit float64) (Format, error) {
	switch mode {
	case ScaleInteger, ScaleNormalized:
		f.scaleMode = mode
		f.scale = 0
	case ScaleExplicit:
		if explicit <= 0 || math.IsNaN(explicit) || math.IsInf(explicit, 0) {
			return Format{}, fmt.Errorf("%w: explicit scale %v must be positive and finite", ErrInvalidFormat, explicit)
		}
		f.scaleMode = mode
		f.scale = explicit
	default:
		return Format{}, fmt.Errorf("%w: unknown scale mode %d", ErrInvalidFormat, int(mode))
	}
	return f, nil
}

// WithWI returns a copy of f with wi integer bits.
func (f Format) WithWI(wi int) (Format, error) {
	g, err := NewFormat(wi, f.wf)
	if err != nil {
		return Format{}, err
	}
	g.scaleMode, g.scale = f.scaleMode, f.scale
	return g, nil
}

// WithWF returns a copy of f with wf fractional bits.
func (f Format) WithWF(wf int) (Format, error) {
	g, err := NewFormat(f.wi, wf)
	if err != nil {
		return Format{}, err
	}
	g.scaleMode, g.scale = f.scaleMode, f.scale
	return g, nil
}

// SameWidth reports whether f and g have identical integer and fractional
// bits. Scale is ignored.
func (f Format) SameWidth(g Format) bool {
	return f.wi == g.wi && f.wf == g.wf
}

// Real converts a raw integer of this format back to a real value.
func (f Format) Real(raw int64) float64 {
	return float64(raw) / f.Scale()
}

// String renders the format in Q notation, e.g. "Q2.13".
func (f Format) String() string {
	return fmt.Sprintf("Q%d.%d", f.wi, f.wf)
}
