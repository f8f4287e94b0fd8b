// Command wordlength sweeps data and coefficient word lengths for a filter
// and reports, for every pair, how far the fixed-point simulation departs
// from the floating-point reference.
//
// Usage:
//
//	wordlength -data 12,16,20 -coeff 10,14,18
//	wordlength -type butter -order 6 -cutoff 0.02 -structure direct
//	wordlength -type butter -order 6 -cutoff 0.02 -structure sos
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	fixpoint "github.com/tphakala/go-fixpoint"
	"github.com/tphakala/go-fixpoint/internal/analysis"
)

const (
	defaultCutoff      = 0.1
	defaultAttenuation = 70.0
	defaultOrder       = 4
	defaultSamples     = 8192
	defaultData        = "12,16,20,24"
	defaultCoeff       = "10,14,18,22"

	// Test signal: tones at these fractions of the cutoff, each at this
	// amplitude, so the sum stays below full scale.
	toneAmplitude = 0.3
	responseFloor = -120.0
	responsePts   = 1024

	typeLowPass     = "lowpass"
	typeButterworth = "butter"
	structDirect    = "direct"
	structSOS       = "sos"
)

var toneFractions = []float64{0.1, 0.37, 0.81}

type options struct {
	kind        string
	structure   string
	cutoff      float64
	attenuation float64
	order       int
	samples     int
	policy      string
	data        []int
	coeff       []int
}

// result is one row of the sweep.
type result struct {
	dataBits, coeffBits int
	coeffFormat         fixpoint.Format
	accumulator         fixpoint.Format
	deviationDB         float64
	noise               analysis.NoiseStats
	stats               fixpoint.Stats
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var opts options
	data := flag.String("data", defaultData, "Comma separated data word lengths (bits including sign)")
	coeff := flag.String("coeff", defaultCoeff, "Comma separated coefficient word lengths")
	flag.StringVar(&opts.kind, "type", typeLowPass, "Filter type: lowpass or butter")
	flag.StringVar(&opts.structure, "structure", structSOS, "IIR structure: direct or sos")
	flag.Float64Var(&opts.cutoff, "cutoff", defaultCutoff, "Cutoff in cycles per sample (0, 0.5)")
	flag.Float64Var(&opts.attenuation, "att", defaultAttenuation, "FIR stopband attenuation in dB")
	flag.IntVar(&opts.order, "order", defaultOrder, "Butterworth order")
	flag.IntVar(&opts.samples, "samples", defaultSamples, "Test signal length")
	flag.StringVar(&opts.policy, "accu", "auto", "Accumulator sizing: auto or full")
	flag.Parse()

	var err error
	if opts.data, err = parseBits(*data); err != nil {
		return fmt.Errorf("-data: %w", err)
	}
	if opts.coeff, err = parseBits(*coeff); err != nil {
		return fmt.Errorf("-coeff: %w", err)
	}

	results, err := sweep(&opts)
	if err != nil {
		return err
	}
	return printResults(os.Stdout, &opts, results)
}

// parseBits parses a comma separated list of word lengths.
func parseBits(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		if v < 2 {
			return nil, fmt.Errorf("word length %d must be at least 2", v)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, errors.New("no word lengths")
	}
	return out, nil
}

func design(opts *options) (fixpoint.CoefficientSet, error) {
	switch strings.ToLower(opts.kind) {
	case typeLowPass:
		return fixpoint.DesignLowPass(0, opts.cutoff, opts.attenuation)
	case typeButterworth:
		set, err := fixpoint.DesignButterworth(opts.order, opts.cutoff)
		if err != nil {
			return set, err
		}
		switch opts.structure {
		case structSOS:
		case structDirect:
			set.SOS = nil
		default:
			return set, fmt.Errorf("unknown structure %q", opts.structure)
		}
		return set, nil
	default:
		return fixpoint.CoefficientSet{}, fmt.Errorf("unknown filter type %q", opts.kind)
	}
}

// integerBits returns the integer bits needed to hold every coefficient
// that will be quantized: the sections when present, B and A otherwise.
func integerBits(set fixpoint.CoefficientSet) int {
	peak := 0.0
	if len(set.SOS) > 0 {
		for _, row := range set.SOS {
			for _, v := range row {
				peak = max(peak, math.Abs(v))
			}
		}
	} else {
		for _, v := range append(append([]float64(nil), set.B...), set.A...) {
			peak = max(peak, math.Abs(v))
		}
	}
	wi := 0
	for peak >= math.Ldexp(1, wi) {
		wi++
	}
	return wi
}

// testSignal returns n samples of a few passband tones.
func testSignal(n int, cutoff float64) []float64 {
	x := make([]float64, n)
	for _, frac := range toneFractions {
		w := 2 * math.Pi * frac * cutoff
		for i := range x {
			x[i] += toneAmplitude * math.Sin(w*float64(i))
		}
	}
	return x
}

// system is the part of Filter and Cascade the sweep needs.
type system interface {
	ProcessFloat(input []float64) ([]float64, error)
	Stats() fixpoint.Stats
	Info() fixpoint.Info
	Coefficients() *fixpoint.QuantizedCoefficientSet
}

func sweep(opts *options) ([]result, error) {
	set, err := design(opts)
	if err != nil {
		return nil, err
	}
	policy, err := fixpoint.ParseAccuPolicy(opts.policy)
	if err != nil {
		return nil, err
	}
	if policy == fixpoint.AccuManual {
		return nil, errors.New("manual accumulator sizing is not swept")
	}

	ref, err := fixpoint.NewReference(set)
	if err != nil {
		return nil, err
	}
	input := testSignal(opts.samples, opts.cutoff)
	ideal := ref.Process(input)

	idealResp, err := response(set)
	if err != nil {
		return nil, err
	}
	wi := integerBits(set)

	var results []result
	for _, db := range opts.data {
		for _, cb := range opts.coeff {
			if cb-1-wi < 0 {
				return nil, fmt.Errorf("coefficient word length %d cannot hold %d integer bits", cb, wi)
			}
			data := fixpoint.Config{WF: db - 1, Quant: fixpoint.QuantRound, Ovfl: fixpoint.OverflowSaturate}
			cfg := fixpoint.FilterConfig{
				Input:  data,
				Output: data,
				Coeff:  fixpoint.Config{WI: wi, WF: cb - 1 - wi, Quant: fixpoint.QuantRound, Ovfl: fixpoint.OverflowSaturate},
				Policy: policy,
			}

			var sys system
			if len(set.SOS) > 0 {
				sys, err = fixpoint.NewCascade(cfg, set.SOS)
			} else {
				sys, err = fixpoint.NewFilter(cfg, set)
			}
			if err != nil {
				return nil, fmt.Errorf("data %d, coefficients %d: %w", db, cb, err)
			}

			out, err := sys.ProcessFloat(input)
			if err != nil {
				return nil, err
			}
			noise, err := analysis.Compare(ideal, out)
			if err != nil {
				return nil, err
			}
			qResp, err := response(sys.Coefficients().Real())
			if err != nil {
				return nil, err
			}
			dev, err := analysis.MaxDeviationDB(idealResp, qResp, responseFloor)
			if err != nil {
				return nil, err
			}
			info := sys.Info()
			results = append(results, result{
				dataBits:    db,
				coeffBits:   cb,
				coeffFormat: sys.Coefficients().BFormat,
				accumulator: info.Accumulator,
				deviationDB: dev,
				noise:       noise,
				stats:       sys.Stats(),
			})
		}
	}
	return results, nil
}

func response(set fixpoint.CoefficientSet) (analysis.Response, error) {
	if len(set.SOS) > 0 {
		return analysis.CascadeResponse(set.SOS, responsePts)
	}
	return analysis.FrequencyResponse(set.B, set.A, responsePts)
}

func printResults(w io.Writer, opts *options, results []result) error {
	fmt.Fprintf(w, "=== Word Length Sweep: %s, cutoff %.3f ===\n\n", opts.kind, opts.cutoff)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "data\tcoeff\tformat\taccumulator\tresp dev [dB]\tSNR [dB]\tideal [dB]\tpeak err\toverflows")
	for _, r := range results {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%.4f\t%.1f\t%.1f\t%.3g\t%d\n",
			r.dataBits, r.coeffBits, r.coeffFormat, r.accumulator,
			r.deviationDB, r.noise.SNR, analysis.IdealSNR(r.dataBits), r.noise.Peak, r.stats.Total())
	}
	return tw.Flush()
}
