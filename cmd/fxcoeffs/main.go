// Command fxcoeffs designs a filter, quantizes its coefficients to a
// fixed-point format and prints them in decimal, hexadecimal, binary or
// canonical signed digit form together with the quantization statistics.
//
// Usage:
//
//	fxcoeffs -taps 31 -cutoff 0.1 -format Q0.15 -radix hex
//	fxcoeffs -type butter -order 6 -cutoff 0.05 -format Q1.22 -radix csd
//	fxcoeffs -type list -b 0.25,0.5,0.25 -format Q0.7 -radix all
//	fxcoeffs -demo
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

type options struct {
	kind        string
	taps        int
	cutoff      float64
	attenuation float64
	order       int
	b, a        string
	format      string
	formatA     string
	quant       string
	ovfl        string
	radix       string
}

func main() {
	var opts options
	flag.StringVar(&opts.kind, "type", typeLowPass, "Filter type: lowpass, butter or list")
	flag.IntVar(&opts.taps, "taps", 0, "FIR length, 0 estimates it from the attenuation")
	flag.Float64Var(&opts.cutoff, "cutoff", defaultCutoff, "Cutoff in cycles per sample (0, 0.5)")
	flag.Float64Var(&opts.attenuation, "att", defaultAttenuation, "Stopband attenuation in dB")
	flag.IntVar(&opts.order, "order", defaultOrder, "Butterworth order")
	flag.StringVar(&opts.b, "b", "", "Comma separated numerator for -type list")
	flag.StringVar(&opts.a, "a", "", "Comma separated denominator for -type list")
	flag.StringVar(&opts.format, "format", defaultFormat, "Coefficient format (Q notation or preset)")
	flag.StringVar(&opts.formatA, "format-a", "", "Denominator format, defaults to -format")
	flag.StringVar(&opts.quant, "quant", "round", "Rounding: round, fix, floor, none")
	flag.StringVar(&opts.ovfl, "ovfl", "sat", "Overflow handling: wrap, sat, none")
	flag.StringVar(&opts.radix, "radix", "dec", "Output radix: dec, hex, bin, csd or all")
	demo := flag.Bool("demo", false, "Compare coefficient word lengths for a lowpass")
	flag.Parse()

	if *demo {
		if err := runDemo(os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}
	if err := run(os.Stdout, &opts); err != nil {
		log.Fatal(err)
	}
}

func run(w io.Writer, opts *options) error {
	set, err := design(opts)
	if err != nil {
		return err
	}
	bcfg, acfg, err := coefficientConfigs(opts)
	if err != nil {
		return err
	}
	q, err := fixpoint.QuantizeCoefficients(set, bcfg, acfg)
	if err != nil {
		return err
	}

	radixes, err := parseRadixes(opts.radix)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Coefficients (%s, %s):\n", bcfg, q.AFormat)
	if err := printTable(w, "b", set.B, q.B, q.BFormat, radixes); err != nil {
		return err
	}
	if len(set.A) > 0 {
		if err := printTable(w, "a", set.A, q.A, q.AFormat, radixes); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "\nOverflows: %d, underflows: %d\n", q.Overflows, q.Underflows)
	fmt.Fprintf(w, "Adder cost (non-zero CSD digits): %d\n", q.AdderCost())

	dev, err := responseDeviation(set, q)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Max response deviation: %.3f dB\n", dev)
	return nil
}

func design(opts *options) (fixpoint.CoefficientSet, error) {
	switch strings.ToLower(opts.kind) {
	case typeLowPass:
		return fixpoint.DesignLowPass(opts.taps, opts.cutoff, opts.attenuation)
	case typeButterworth:
		set, err := fixpoint.DesignButterworth(opts.order, opts.cutoff)
		// the sections are not printed; quantize the direct form only
		set.SOS = nil
		return set, err
	case typeList:
		b, err := parseList(opts.b)
		if err != nil {
			return fixpoint.CoefficientSet{}, fmt.Errorf("-b: %w", err)
		}
		a, err := parseList(opts.a)
		if err != nil {
			return fixpoint.CoefficientSet{}, fmt.Errorf("-a: %w", err)
		}
		if len(b) == 0 {
			return fixpoint.CoefficientSet{}, errors.New("-type list needs -b")
		}
		return fixpoint.CoefficientSet{B: b, A: a}, nil
	default:
		return fixpoint.CoefficientSet{}, fmt.Errorf("unknown filter type %q", opts.kind)
	}
}

func coefficientConfigs(opts *options) (fixpoint.Config, *fixpoint.Config, error) {
	quant, err := fixpoint.ParseQuantMode(opts.quant)
	if err != nil {
		return fixpoint.Config{}, nil, err
	}
	ovfl, err := fixpoint.ParseOverflowMode(opts.ovfl)
	if err != nil {
		return fixpoint.Config{}, nil, err
	}
	b, err := fixpoint.PresetConfig(opts.format)
	if err != nil {
		return fixpoint.Config{}, nil, err
	}
	b.Quant, b.Ovfl = quant, ovfl
	if opts.formatA == "" {
		return b, nil, nil
	}
	a, err := fixpoint.PresetConfig(opts.formatA)
	if err != nil {
		return fixpoint.Config{}, nil, fmt.Errorf("-format-a: %w", err)
	}
	a.Quant, a.Ovfl = quant, ovfl
	return b, &a, nil
}

// parseList parses comma separated floats. An empty string gives nil.
func parseList(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseRadixes(name string) ([]fixpoint.Radix, error) {
	if strings.EqualFold(name, radixAll) {
		return []fixpoint.Radix{fixpoint.RadixDec, fixpoint.RadixHex, fixpoint.RadixBin, fixpoint.RadixCSD}, nil
	}
	r, err := fixpoint.RadixByName(name)
	if err != nil {
		return nil, err
	}
	return []fixpoint.Radix{r}, nil
}

// printTable prints one row per coefficient: the ideal value, the value the
// raw integer represents, the error in LSBs and the raw integer in every
// requested radix.
func printTable(w io.Writer, name string, ideal []float64, raw []int64, f fixpoint.Format, radixes []fixpoint.Radix) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := []string{name, "ideal", "quantized", "err [LSB]"}
	for _, r := range radixes {
		header = append(header, r.String())
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for i, v := range raw {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(ideal[i], 'g', 10, 64),
			strconv.FormatFloat(f.Real(v), 'g', 10, 64),
			strconv.FormatFloat((f.Real(v)-ideal[i])/f.LSB(), 'f', 3, 64),
		}
		for _, r := range radixes {
			s, err := fixpoint.ToRadix(v, f, r)
			if err != nil {
				return fmt.Errorf("%s[%d]: %w", name, i, err)
			}
			row = append(row, s)
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// responseDeviation returns the largest magnitude difference in dB between
// the ideal and the quantized transfer function.
func responseDeviation(set fixpoint.CoefficientSet, q *fixpoint.QuantizedCoefficientSet) (float64, error) {
	ideal, err := analysis.FrequencyResponse(set.B, set.A, responsePoints)
	if err != nil {
		return 0, err
	}
	deq := q.Real()
	quantized, err := analysis.FrequencyResponse(deq.B, deq.A, responsePoints)
	if err != nil {
		return 0, err
	}
	return analysis.MaxDeviationDB(ideal, quantized, floorDB)
}

func runDemo(w io.Writer) error {
	fmt.Fprintln(w, "=== Coefficient Word Length Demo ===")
	fmt.Fprintf(w, "Kaiser lowpass, cutoff %.2f, %.0f dB\n\n", defaultCutoff, defaultAttenuation)

	set, err := fixpoint.DesignLowPass(0, defaultCutoff, defaultAttenuation)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "format\ttaps\tadders\tmax dev [dB]\tstopband [dB]")
	for _, wf := range demoFractionBits {
		cfg := fixpoint.Config{WF: wf, Quant: fixpoint.QuantRound, Ovfl: fixpoint.OverflowSaturate}
		q, err := fixpoint.QuantizeCoefficients(set, cfg, nil)
		if err != nil {
			return err
		}
		dev, err := responseDeviation(set, q)
		if err != nil {
			return err
		}
		stop, err := stopbandPeak(q.Real(), defaultCutoff*2)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.3f\t%.1f\n", q.BFormat, len(q.B), q.AdderCost(), dev, stop)
	}
	return tw.Flush()
}

// stopbandPeak returns the largest magnitude in dB above frequency from.
func stopbandPeak(set fixpoint.CoefficientSet, from float64) (float64, error) {
	resp, err := analysis.FrequencyResponse(set.B, set.A, responsePoints)
	if err != nil {
		return 0, err
	}
	db := resp.MagnitudeDB()
	peak := math.Inf(-1)
	for i, f := range resp.Frequencies {
		if f >= from {
			peak = max(peak, db[i])
		}
	}
	return peak, nil
}
