// Command fxfilter-wav runs a WAV file through a bit-accurate fixed-point
// filter and reports the overflow counters of every quantization point.
//
// Samples are fed to the filter as raw integers: a b-bit PCM sample is the
// raw value of Q0.(b-1), so the simulation sees exactly what a b-bit
// datapath would see.
//
// Usage:
//
//	fxfilter-wav -cutoff 4000 input.wav output.wav
//	fxfilter-wav -type butter -order 6 -cutoff 1000 -coeff Q1.22 in.wav out.wav
//	fxfilter-wav -out-bits 16 -quant floor -ovfl wrap in24.wav out16.wav
//	fxfilter-wav -parallel=false input.wav out.wav   # Disable parallel processing
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	fixpoint "github.com/tphakala/go-fixpoint"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	opts := options{}
	flag.StringVar(&opts.kind, "type", filterLowPass, "Filter type: lowpass (Kaiser FIR) or butter (Butterworth IIR sections)")
	flag.Float64Var(&opts.cutoffHz, "cutoff", defaultCutoffHz, "Cutoff frequency in Hz")
	flag.IntVar(&opts.taps, "taps", 0, "FIR length, 0 estimates it from the attenuation")
	flag.Float64Var(&opts.attenuation, "att", defaultAttenuation, "FIR stopband attenuation in dB")
	flag.IntVar(&opts.order, "order", defaultOrder, "Butterworth order")
	flag.StringVar(&opts.coeff, "coeff", defaultCoeffFormat, "Coefficient format (Q notation or preset)")
	flag.StringVar(&opts.quant, "quant", "round", "Output rounding: round, fix, floor, none")
	flag.StringVar(&opts.ovfl, "ovfl", "sat", "Output overflow handling: wrap, sat, none")
	flag.StringVar(&opts.policy, "accu", "auto", "Accumulator sizing: auto, full, manual")
	flag.StringVar(&opts.accu, "accu-format", "", "Accumulator format for -accu manual")
	flag.IntVar(&opts.outBits, "out-bits", 0, "Output bit depth (16, 24 or 32), 0 keeps the input depth")
	parallel := flag.Bool("parallel", true, "Enable parallel channel processing (faster for stereo/multichannel)")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -cutoff 4000 in.wav out.wav                # 16-bit style Kaiser lowpass\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -type butter -order 4 -cutoff 200 in.wav out.wav\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -out-bits 16 -quant floor in24.wav out16.wav # Truncate to 16 bits\n", os.Args[0])
		return errors.New("insufficient arguments")
	}
	opts.parallel = *parallel
	opts.verbose = *verbose

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	inputPath := args[0]
	outputPath := args[1]

	if opts.verbose {
		log.Printf("Input: %s", inputPath)
		log.Printf("Output: %s", outputPath)
		log.Printf("Filter: %s, cutoff %.1f Hz, coefficients %s", opts.kind, opts.cutoffHz, opts.coeff)
		log.Printf("Output quantization: %s/%s", opts.quant, opts.ovfl)
		if opts.parallel {
			log.Printf("Parallel: enabled (concurrent channel processing)")
		} else {
			log.Printf("Parallel: disabled (sequential processing)")
		}
	}

	start := time.Now()
	stats, err := filterWAV(inputPath, outputPath, &opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Filtered %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  %s\n", stats.info.Structure)
	fmt.Printf("  %d Hz, %d channels, %d-bit -> %d-bit\n",
		stats.rate, stats.channels, stats.inBits, stats.outBits)
	fmt.Printf("  input %s, accumulator %s, output %s\n",
		stats.info.Input, stats.info.Accumulator, stats.info.Output)
	fmt.Printf("  %d frames\n", stats.frames)
	fmt.Printf("  Overflows: accumulator %d/%d, output %d/%d (over/under)\n",
		stats.counters.AccumulatorOverflows, stats.counters.AccumulatorUnderflows,
		stats.counters.OutputOverflows, stats.counters.OutputUnderflows)
	if elapsed > 0 && stats.rate > 0 {
		fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
			elapsed.Seconds(),
			float64(stats.frames)/float64(stats.rate)/elapsed.Seconds())
	}
	return nil
}

// options carries the parsed command line.
type options struct {
	kind        string
	cutoffHz    float64
	taps        int
	attenuation float64
	order       int
	coeff       string
	quant       string
	ovfl        string
	policy      string
	accu        string
	outBits     int
	parallel    bool
	verbose     bool
}

type filterStats struct {
	rate     int
	channels int
	inBits   int
	outBits  int
	frames   int64
	counters fixpoint.Stats
	info     fixpoint.Info
}

func filterWAV(inputPath, outputPath string, opts *options) (stats *filterStats, err error) {
	// 1. Open and validate input
	input, err := openWAVInput(inputPath, opts.verbose)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	outBits := opts.outBits
	if outBits == 0 {
		outBits = input.bitDepth
	}

	// 2. Build one filter per channel
	cfg, err := buildFilterConfig(opts, input.bitDepth, outBits)
	if err != nil {
		return nil, err
	}
	set, err := designCoefficients(opts, input.rate)
	if err != nil {
		return nil, err
	}
	filters, err := createChannelFilters(input.channels, cfg, set)
	if err != nil {
		return nil, err
	}
	info := filters[0].Info()
	if opts.verbose {
		log.Printf("Structure: %s, order %d", info.Structure, info.Order)
		log.Printf("Accumulator: %s (%s policy)", info.Accumulator, info.Policy)
		if info.SIMDEnabled {
			log.Printf("SIMD: %s", info.SIMDType)
		}
	}

	// 3. Create output writer
	output, err := createWAVOutput(outputPath, input.rate, outBits, input.channels)
	if err != nil {
		return nil, err
	}
	// WAV header sizes are only written on Close
	defer func() {
		if closeErr := output.Close(); err == nil {
			err = closeErr
		}
	}()

	// 4. Initialize processing buffers and tracking
	buffers := newFilterBuffers(input.channels, input.format)
	stats = &filterStats{
		rate:     input.rate,
		channels: input.channels,
		inBits:   input.bitDepth,
		outBits:  outBits,
		info:     info,
	}
	progress := newProgressTracker(input.totalFrames, opts.verbose)

	// 5. Main processing loop
	for {
		n, err := input.decoder.PCMBuffer(buffers.intBuffer)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read audio data: %w", err)
		}
		frames := n / input.channels
		if frames == 0 {
			break
		}
		stats.frames += int64(frames)

		deinterleaveInto(buffers.intBuffer.Data, buffers.channelBufs, input.channels, frames)

		filtered, err := filterChannelData(filters, buffers.channelBufs, frames, opts.parallel)
		if err != nil {
			return nil, err
		}

		outLen := interleaveInto(filtered, buffers.outputIntBuf)
		if err := output.WriteSamples(buffers.outputIntBuf[:outLen]); err != nil {
			return nil, fmt.Errorf("failed to write audio data: %w", err)
		}

		progress.reportIfNeeded(stats.frames)
		buffers.intBuffer.Data = buffers.intBuffer.Data[:cap(buffers.intBuffer.Data)]
	}

	for _, f := range filters {
		stats.counters = stats.counters.Add(f.Stats())
	}
	return stats, nil
}
