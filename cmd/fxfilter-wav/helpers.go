package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	fixpoint "github.com/tphakala/go-fixpoint"
)

// channelFilter is the part of Filter and Cascade the command uses.
type channelFilter interface {
	Process(input []int64) ([]int64, error)
	Stats() fixpoint.Stats
	Info() fixpoint.Info
}

// wavInputInfo holds validated input file information.
type wavInputInfo struct {
	file        *os.File
	decoder     *wav.Decoder
	rate        int
	channels    int
	bitDepth    int
	totalFrames int64
	format      *audio.Format
}

// openWAVInput opens and validates a PCM WAV file, returning format information.
func openWAVInput(path string, verbose bool) (*wavInputInfo, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}
	if decoder.WavAudioFormat != wavFormatPCM {
		_ = inputFile.Close()
		return nil, fmt.Errorf("unsupported WAV encoding %d: only integer PCM is supported", decoder.WavAudioFormat)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)
	if !supportedBitDepths[bitDepth] {
		_ = inputFile.Close()
		return nil, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	if verbose {
		log.Printf("Input format: %d Hz, %d channels, %d-bit", format.SampleRate, format.NumChannels, bitDepth)
	}

	duration, err := decoder.Duration()
	if err != nil {
		duration = 0
	}

	return &wavInputInfo{
		file:        inputFile,
		decoder:     decoder,
		rate:        format.SampleRate,
		channels:    format.NumChannels,
		bitDepth:    bitDepth,
		totalFrames: int64(duration.Seconds() * float64(format.SampleRate)),
		format:      format,
	}, nil
}

// Close closes the input file.
func (w *wavInputInfo) Close() error {
	return w.file.Close()
}

// pcmConfig returns the raw format of bits-wide PCM samples, Q0.(bits-1).
func pcmConfig(bits int, quant fixpoint.QuantMode, ovfl fixpoint.OverflowMode) fixpoint.Config {
	return fixpoint.Config{WF: bits - 1, Quant: quant, Ovfl: ovfl}
}

// buildFilterConfig maps the command line onto a filter configuration for
// inBits-wide input and outBits-wide output samples.
func buildFilterConfig(opts *options, inBits, outBits int) (fixpoint.FilterConfig, error) {
	if !supportedBitDepths[outBits] {
		return fixpoint.FilterConfig{}, fmt.Errorf("unsupported output bit depth %d", outBits)
	}
	quant, err := fixpoint.ParseQuantMode(opts.quant)
	if err != nil {
		return fixpoint.FilterConfig{}, err
	}
	ovfl, err := fixpoint.ParseOverflowMode(opts.ovfl)
	if err != nil {
		return fixpoint.FilterConfig{}, err
	}
	policy, err := fixpoint.ParseAccuPolicy(opts.policy)
	if err != nil {
		return fixpoint.FilterConfig{}, err
	}
	coeff, err := fixpoint.PresetConfig(opts.coeff)
	if err != nil {
		return fixpoint.FilterConfig{}, fmt.Errorf("coefficient format: %w", err)
	}

	cfg := fixpoint.FilterConfig{
		Input:  pcmConfig(inBits, fixpoint.QuantRound, fixpoint.OverflowSaturate),
		Output: pcmConfig(outBits, quant, ovfl),
		Coeff:  coeff,
		Policy: policy,
	}
	if policy == fixpoint.AccuManual {
		if opts.accu == "" {
			return fixpoint.FilterConfig{}, errors.New("-accu manual needs -accu-format")
		}
		accu, err := fixpoint.PresetConfig(opts.accu)
		if err != nil {
			return fixpoint.FilterConfig{}, fmt.Errorf("accumulator format: %w", err)
		}
		cfg.Accumulator = &accu
	}
	return cfg, cfg.Validate()
}

// designCoefficients designs the requested filter for the given sample rate.
func designCoefficients(opts *options, sampleRate int) (fixpoint.CoefficientSet, error) {
	if sampleRate <= 0 {
		return fixpoint.CoefficientSet{}, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	cutoff := opts.cutoffHz / float64(sampleRate)
	switch strings.ToLower(opts.kind) {
	case filterLowPass:
		return fixpoint.DesignLowPass(opts.taps, cutoff, opts.attenuation)
	case filterButterworth:
		return fixpoint.DesignButterworth(opts.order, cutoff)
	default:
		return fixpoint.CoefficientSet{}, fmt.Errorf("unknown filter type %q", opts.kind)
	}
}

// createChannelFilters creates one filter per channel. Sets with second
// order sections run as cascades.
func createChannelFilters(numChannels int, cfg fixpoint.FilterConfig, set fixpoint.CoefficientSet) ([]channelFilter, error) {
	filters := make([]channelFilter, numChannels)
	for ch := range numChannels {
		var (
			f   channelFilter
			err error
		)
		if len(set.SOS) > 0 {
			f, err = fixpoint.NewCascade(cfg, set.SOS)
		} else {
			f, err = fixpoint.NewFilter(cfg, set)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create filter for channel %d: %w", ch, err)
		}
		filters[ch] = f
	}
	return filters, nil
}

// wavOutputWriter wraps the output file and its encoder.
type wavOutputWriter struct {
	file    *os.File
	encoder *wav.Encoder
	buf     *audio.IntBuffer
}

// createWAVOutput creates the output file and a PCM encoder.
func createWAVOutput(path string, sampleRate, bitDepth, channels int) (*wavOutputWriter, error) {
	outputFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return &wavOutputWriter{
		file:    outputFile,
		encoder: wav.NewEncoder(outputFile, sampleRate, bitDepth, channels, wavFormatPCM),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// WriteSamples writes interleaved samples to the output file.
func (w *wavOutputWriter) WriteSamples(samples []int) error {
	w.buf.Data = samples
	return w.encoder.Write(w.buf)
}

// Close finalizes the WAV header and closes the file.
func (w *wavOutputWriter) Close() error {
	if err := w.encoder.Close(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

// filterBuffers holds all preallocated buffers for filtering.
type filterBuffers struct {
	intBuffer    *audio.IntBuffer
	channelBufs  [][]int64
	outputIntBuf []int
}

// newFilterBuffers creates and preallocates all processing buffers.
func newFilterBuffers(channels int, format *audio.Format) *filterBuffers {
	channelBufs := make([][]int64, channels)
	for ch := range channels {
		channelBufs[ch] = make([]int64, bufferSize)
	}
	return &filterBuffers{
		intBuffer: &audio.IntBuffer{
			Data:   make([]int, bufferSize*channels),
			Format: format,
		},
		channelBufs:  channelBufs,
		outputIntBuf: make([]int, bufferSize*channels),
	}
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalFrames  int64
	lastProgress int
	verbose      bool
}

func newProgressTracker(totalFrames int64, verbose bool) *progressTracker {
	return &progressTracker{
		totalFrames: totalFrames,
		verbose:     verbose,
	}
}

// reportIfNeeded reports progress if threshold crossed.
func (p *progressTracker) reportIfNeeded(frames int64) {
	if !p.verbose || p.totalFrames == 0 {
		return
	}
	progress := int(float64(frames) / float64(p.totalFrames) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		log.Printf("Progress: %d%%", progress)
		p.lastProgress = progress
	}
}

// filterChannelData filters the first frames samples of every channel
// buffer, in parallel when requested and there is more than one channel.
func filterChannelData(filters []channelFilter, channelBufs [][]int64, frames int, parallel bool) ([][]int64, error) {
	if parallel && len(filters) > 1 {
		return filterParallel(filters, channelBufs, frames)
	}
	return filterSequential(filters, channelBufs, frames)
}

// filterParallel processes channels concurrently.
func filterParallel(filters []channelFilter, channelBufs [][]int64, frames int) ([][]int64, error) {
	out := make([][]int64, len(filters))
	var wg sync.WaitGroup
	var processErr error
	var errMu sync.Mutex

	for ch := range filters {
		wg.Add(1)
		go func(channel int) {
			defer wg.Done()
			filtered, err := filters[channel].Process(channelBufs[channel][:frames])
			if err != nil {
				errMu.Lock()
				if processErr == nil {
					processErr = fmt.Errorf("filtering failed on channel %d: %w", channel, err)
				}
				errMu.Unlock()
				return
			}
			out[channel] = filtered
		}(ch)
	}
	wg.Wait()

	if processErr != nil {
		return nil, processErr
	}
	return out, nil
}

// filterSequential processes channels one by one.
func filterSequential(filters []channelFilter, channelBufs [][]int64, frames int) ([][]int64, error) {
	out := make([][]int64, len(filters))
	for ch, f := range filters {
		filtered, err := f.Process(channelBufs[ch][:frames])
		if err != nil {
			return nil, fmt.Errorf("filtering failed on channel %d: %w", ch, err)
		}
		out[ch] = filtered
	}
	return out, nil
}

// deinterleaveInto splits interleaved PCM samples into preallocated raw
// channel buffers.
func deinterleaveInto(data []int, channelBufs [][]int64, numChannels, frames int) {
	switch numChannels {
	case monoChannels:
		buf := channelBufs[0]
		for i := range frames {
			buf[i] = int64(data[i])
		}
	case stereoChannels:
		buf0, buf1 := channelBufs[0], channelBufs[1]
		for i := range frames {
			buf0[i] = int64(data[2*i])
			buf1[i] = int64(data[2*i+1])
		}
	default:
		for i := range frames {
			base := i * numChannels
			for ch := range numChannels {
				channelBufs[ch][i] = int64(data[base+ch])
			}
		}
	}
}

// interleaveInto merges raw channel outputs into dst and returns the number
// of samples written. All channels must have the same length and dst must
// hold them.
func interleaveInto(channels [][]int64, dst []int) int {
	if len(channels) == 0 || len(channels[0]) == 0 {
		return 0
	}
	numChannels := len(channels)
	frames := len(channels[0])
	total := frames * numChannels
	if len(dst) < total {
		return 0
	}
	for ch, data := range channels {
		for i, v := range data {
			dst[i*numChannels+ch] = int(v)
		}
	}
	return total
}
