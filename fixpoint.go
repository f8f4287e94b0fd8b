package fixpoint

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tphakala/go-fixpoint/internal/engine"
	"github.com/tphakala/go-fixpoint/internal/fixp"
)

// Format is a signed fixed-point format with WI integer bits, WF fractional
// bits and a sign bit. See [NewFormat].
type Format = fixp.Format

// Quantizer maps real values onto a Format. See [NewQuantizer].
type Quantizer = fixp.Quantizer

// QuantMode selects the rounding applied when quantizing.
type QuantMode = fixp.QuantMode

// OverflowMode selects what happens to values outside a format's range.
type OverflowMode = fixp.OverflowMode

// ScaleMode selects how a Format maps real values to raw integers.
type ScaleMode = fixp.ScaleMode

// AccuPolicy selects how a filter's accumulator format is derived.
type AccuPolicy = engine.AccuPolicy

// Rounding modes.
const (
	QuantRound = fixp.QuantRound
	QuantFix   = fixp.QuantFix
	QuantFloor = fixp.QuantFloor
	QuantNone  = fixp.QuantNone
)

// Overflow modes.
const (
	OverflowWrap     = fixp.OverflowWrap
	OverflowSaturate = fixp.OverflowSaturate
	OverflowNone     = fixp.OverflowNone
)

// Scale modes.
const (
	ScaleInteger    = fixp.ScaleInteger
	ScaleNormalized = fixp.ScaleNormalized
	ScaleExplicit   = fixp.ScaleExplicit
)

// Accumulator policies.
const (
	AccuAuto   = engine.AccuAuto
	AccuManual = engine.AccuManual
	AccuFull   = engine.AccuFull
)

// Common errors. Overflow and underflow are never reported as errors; they
// are counted by quantizers and flagged by filters.
var (
	// ErrInvalidFormat indicates a malformed format, mode name or radix
	// string, or a value outside its format.
	ErrInvalidFormat = fixp.ErrInvalidFormat

	// ErrNonFinite indicates a NaN or infinite value offered for quantization.
	ErrNonFinite = fixp.ErrNonFinite

	// ErrInvalidCoefficient indicates an unusable coefficient set.
	ErrInvalidCoefficient = errors.New("invalid coefficient")

	// ErrConfiguration indicates a filter setup that cannot be satisfied.
	ErrConfiguration = engine.ErrConfiguration

	// ErrNotConfigured indicates a filter used before setup or after finish.
	ErrNotConfigured = engine.ErrNotConfigured
)

// NewFormat returns the format with wi integer and wf fractional bits.
func NewFormat(wi, wf int) (Format, error) {
	return fixp.NewFormat(wi, wf)
}

// NewQuantizer creates a quantizer bound to f.
func NewQuantizer(f Format, quant QuantMode, ovfl OverflowMode) *Quantizer {
	return fixp.NewQuantizer(f, quant, ovfl)
}

// Config is the configuration record of one quantization point (input,
// coefficients, accumulator or output).
type Config struct {
	// WI is the number of integer bits, excluding the sign bit.
	WI int

	// WF is the number of fractional bits.
	WF int

	// W is the total word length. It is redundant; when non-zero it must
	// equal WI + WF + 1.
	W int

	// Quant is the rounding mode.
	Quant QuantMode

	// Ovfl is the overflow mode.
	Ovfl OverflowMode

	// Scale selects the real-to-raw mapping. ExplicitScale is only read
	// for ScaleExplicit.
	Scale         ScaleMode
	ExplicitScale float64
}

// Validate checks the configuration.
func (c Config) Validate() error {
	_, err := c.Format()
	return err
}

// Format builds the format described by c.
func (c Config) Format() (Format, error) {
	f, err := fixp.NewFormat(c.WI, c.WF)
	if err != nil {
		return Format{}, err
	}
	if c.W != 0 && c.W != f.W() {
		return Format{}, fmt.Errorf("%w: W=%d but WI+WF+1=%d", ErrInvalidFormat, c.W, f.W())
	}
	if c.Quant < QuantRound || c.Quant > QuantNone {
		return Format{}, fmt.Errorf("%w: unknown quantization mode %d", ErrInvalidFormat, int(c.Quant))
	}
	if c.Ovfl < OverflowWrap || c.Ovfl > OverflowNone {
		return Format{}, fmt.Errorf("%w: unknown overflow mode %d", ErrInvalidFormat, int(c.Ovfl))
	}
	return f.WithScale(c.Scale, c.ExplicitScale)
}

// NewQuantizer creates a quantizer for c.
func (c Config) NewQuantizer() (*Quantizer, error) {
	f, err := c.Format()
	if err != nil {
		return nil, err
	}
	return fixp.NewQuantizer(f, c.Quant, c.Ovfl), nil
}

// String renders c as "Q2.13 round/sat".
func (c Config) String() string {
	return fmt.Sprintf("Q%d.%d %s/%s", c.WI, c.WF, c.Quant, c.Ovfl)
}

// ConfigFor returns a configuration for format f with the given modes.
func ConfigFor(f Format, quant QuantMode, ovfl OverflowMode) Config {
	return Config{
		WI:            f.WI(),
		WF:            f.WF(),
		Quant:         quant,
		Ovfl:          ovfl,
		Scale:         f.ScaleMode(),
		ExplicitScale: explicitScale(f),
	}
}

func explicitScale(f Format) float64 {
	if f.ScaleMode() == ScaleExplicit {
		return f.Scale()
	}
	return 0
}

// ConfigFromMap builds a Config from a loosely typed record with the keys
// WI, WF, W, quant, ovfl and scale (key case is ignored). Integer fields
// accept Go integers, integral floats (as decoded from JSON) and decimal
// strings. scale accepts "integer", "normalized" or a positive number for an
// explicit scale. Unknown keys are ignored so records carrying extra
// application fields can be passed through.
func ConfigFromMap(m map[string]any) (Config, error) {
	c := Config{Quant: QuantRound, Ovfl: OverflowSaturate}
	for k, v := range m {
		var err error
		switch strings.ToLower(k) {
		case keyWI:
			c.WI, err = intValue(k, v)
		case keyWF:
			c.WF, err = intValue(k, v)
		case keyW:
			c.W, err = intValue(k, v)
		case keyQuant:
			c.Quant, err = fixp.ParseQuantMode(fmt.Sprint(v))
		case keyOvfl:
			c.Ovfl, err = fixp.ParseOverflowMode(fmt.Sprint(v))
		case keyScale:
			c.Scale, c.ExplicitScale, err = scaleValue(v)
		}
		if err != nil {
			return Config{}, err
		}
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func intValue(key string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > maxConfigInt {
			return 0, fmt.Errorf("%w: %s=%v is not an integer", ErrInvalidFormat, key, v)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidFormat, key, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: %s has unsupported type %T", ErrInvalidFormat, key, v)
	}
}

func scaleValue(v any) (ScaleMode, float64, error) {
	switch s := v.(type) {
	case string:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case scaleNameInteger, scaleNameInt:
			return ScaleInteger, 0, nil
		case scaleNameNormalized, scaleNameNorm:
			return ScaleNormalized, 0, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: unknown scale %q", ErrInvalidFormat, s)
		}
		return ScaleExplicit, f, nil
	case float64:
		return ScaleExplicit, s, nil
	case int:
		return ScaleExplicit, float64(s), nil
	default:
		return 0, 0, fmt.Errorf("%w: scale has unsupported type %T", ErrInvalidFormat, v)
	}
}

// PresetConfig returns a named configuration. Names are "q7", "q15", "q23"
// and "q31" for pure fractional formats, "int8" to "int32" for integer
// formats, or any Q notation such as "Q2.13". Presets round and saturate.
func PresetConfig(name string) (Config, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if p, ok := presets[key]; ok {
		return Config{WI: p.wi, WF: p.wf, Quant: QuantRound, Ovfl: OverflowSaturate}, nil
	}
	wi, wf, err := parseQ(key)
	if err != nil {
		return Config{}, err
	}
	c := Config{WI: wi, WF: wf, Quant: QuantRound, Ovfl: OverflowSaturate}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// ParseFormat parses Q notation ("Q2.13", "q0.15") into a Format.
func ParseFormat(s string) (Format, error) {
	wi, wf, err := parseQ(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return Format{}, err
	}
	return fixp.NewFormat(wi, wf)
}

func parseQ(s string) (wi, wf int, err error) {
	body, ok := strings.CutPrefix(s, "q")
	intPart, fracPart, dot := strings.Cut(body, ".")
	if !ok || !dot {
		return 0, 0, fmt.Errorf("%w: %q is neither a preset nor Q notation", ErrInvalidFormat, s)
	}
	wi, err1 := strconv.Atoi(intPart)
	wf, err2 := strconv.Atoi(fracPart)
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("%w: malformed Q notation %q", ErrInvalidFormat, s)
	}
	return wi, wf, nil
}

// PresetNames returns the names accepted by PresetConfig besides Q notation.
func PresetNames() []string {
	return append([]string(nil), presetOrder...)
}
