package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fixpoint "github.com/tphakala/go-fixpoint"
)

func defaultOptions() *options {
	return &options{
		kind:        filterLowPass,
		cutoffHz:    defaultCutoffHz,
		attenuation: defaultAttenuation,
		order:       defaultOrder,
		coeff:       defaultCoeffFormat,
		quant:       "round",
		ovfl:        "sat",
		policy:      "auto",
		parallel:    true,
	}
}

// writeTestWAV writes a stereo sine at half scale and returns its samples.
func writeTestWAV(t *testing.T, path string, rate, bits, frames int) []int {
	t.Helper()
	w, err := createWAVOutput(path, rate, bits, stereoChannels)
	require.NoError(t, err)

	amp := 0.5 * float64(int64(1)<<(bits-1))
	data := make([]int, frames*stereoChannels)
	for i := range frames {
		s := int(math.Round(amp * math.Sin(2*math.Pi*440*float64(i)/float64(rate))))
		data[2*i] = s
		data[2*i+1] = -s
	}
	require.NoError(t, w.WriteSamples(data))
	require.NoError(t, w.Close())
	return data
}

func TestOpenWAVInput_FileNotFound(t *testing.T) {
	_, err := openWAVInput("/nonexistent/file.wav", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input file")
}

func TestOpenWAVInput_InvalidWAV(t *testing.T) {
	tmpDir := t.TempDir()
	invalidFile := filepath.Join(tmpDir, "invalid.wav")
	require.NoError(t, os.WriteFile(invalidFile, []byte("not a wav file"), 0o644))

	_, err := openWAVInput(invalidFile, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid WAV file")
}

func TestOpenWAVInput_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.wav")
	writeTestWAV(t, path, 16000, 16, 1600)

	in, err := openWAVInput(path, false)
	require.NoError(t, err)
	defer func() { _ = in.Close() }()

	assert.Equal(t, 16000, in.rate)
	assert.Equal(t, stereoChannels, in.channels)
	assert.Equal(t, 16, in.bitDepth)
}

func TestCreateWAVOutput_InvalidDirectory(t *testing.T) {
	_, err := createWAVOutput("/nonexistent/dir/output.wav", 48000, 16, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func TestBuildFilterConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(o *options)
		outBits int
		wantErr bool
	}{
		{name: "defaults", modify: func(*options) {}, outBits: 16},
		{name: "24 to 16 bits", modify: func(*options) {}, outBits: 16},
		{name: "manual accumulator", modify: func(o *options) { o.policy = "manual"; o.accu = "Q8.30" }, outBits: 24},
		{name: "manual without format", modify: func(o *options) { o.policy = "manual" }, outBits: 16, wantErr: true},
		{name: "bad quant", modify: func(o *options) { o.quant = "banker" }, outBits: 16, wantErr: true},
		{name: "bad overflow", modify: func(o *options) { o.ovfl = "clip" }, outBits: 16, wantErr: true},
		{name: "bad coefficient format", modify: func(o *options) { o.coeff = "Q1" }, outBits: 16, wantErr: true},
		{name: "8-bit output", modify: func(*options) {}, outBits: 8, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions()
			tt.modify(opts)
			cfg, err := buildFilterConfig(opts, 24, tt.outBits)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 23, cfg.Input.WF)
			assert.Equal(t, tt.outBits-1, cfg.Output.WF)
		})
	}
}

func TestDesignCoefficients(t *testing.T) {
	opts := defaultOptions()
	set, err := designCoefficients(opts, 16000)
	require.NoError(t, err)
	assert.NotEmpty(t, set.B)
	assert.Empty(t, set.SOS)

	opts.kind = filterButterworth
	set, err = designCoefficients(opts, 16000)
	require.NoError(t, err)
	assert.Len(t, set.SOS, defaultOrder/2)

	opts.cutoffHz = 9000 // above Nyquist
	_, err = designCoefficients(opts, 16000)
	require.Error(t, err)

	opts.kind = "notch"
	_, err = designCoefficients(opts, 16000)
	require.Error(t, err)
}

func TestCreateChannelFilters_Identity(t *testing.T) {
	cfg, err := buildFilterConfig(defaultOptions(), 16, 16)
	require.NoError(t, err)
	filters, err := createChannelFilters(2, cfg, fixpoint.CoefficientSet{B: []float64{1}})
	require.NoError(t, err)
	require.Len(t, filters, 2)

	bufs := [][]int64{{1, -2, 32767, -32768}, {0, 5, -5, 100}}
	out, err := filterChannelData(filters, bufs, 4, true)
	require.NoError(t, err)
	assert.Equal(t, bufs, out)
}

func TestFilterChannelData_ParallelMatchesSequential(t *testing.T) {
	opts := defaultOptions()
	cfg, err := buildFilterConfig(opts, 16, 16)
	require.NoError(t, err)
	set, err := designCoefficients(opts, 16000)
	require.NoError(t, err)

	par, err := createChannelFilters(4, cfg, set)
	require.NoError(t, err)
	seq, err := createChannelFilters(4, cfg, set)
	require.NoError(t, err)

	bufs := make([][]int64, 4)
	for ch := range bufs {
		bufs[ch] = make([]int64, 256)
		for i := range bufs[ch] {
			bufs[ch][i] = int64((i*(ch+3))%2000 - 1000)
		}
	}
	a, err := filterChannelData(par, bufs, 256, true)
	require.NoError(t, err)
	b, err := filterChannelData(seq, bufs, 256, false)
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestInterleaveRoundTrip(t *testing.T) {
	for _, channels := range []int{1, 2, 3} {
		data := make([]int, 8*channels)
		for i := range data {
			data[i] = i - 4
		}
		bufs := make([][]int64, channels)
		for ch := range bufs {
			bufs[ch] = make([]int64, 8)
		}
		deinterleaveInto(data, bufs, channels, 8)

		dst := make([]int, len(data))
		n := interleaveInto(bufs, dst)
		assert.Equal(t, len(data), n)
		assert.Equal(t, data, dst)
	}
}

func TestInterleaveInto_ShortDestination(t *testing.T) {
	assert.Zero(t, interleaveInto([][]int64{{1, 2}}, make([]int, 1)))
	assert.Zero(t, interleaveInto(nil, nil))
}

func TestNewFilterBuffers(t *testing.T) {
	buffers := newFilterBuffers(2, &audio.Format{SampleRate: 44100, NumChannels: 2})
	require.NotNil(t, buffers)
	assert.Len(t, buffers.channelBufs, 2)
	assert.Len(t, buffers.intBuffer.Data, bufferSize*2)
	assert.Len(t, buffers.outputIntBuf, bufferSize*2)
}

func TestProgressTracker(t *testing.T) {
	tracker := newProgressTracker(1000, true)
	tracker.reportIfNeeded(500)
	assert.Equal(t, 50, tracker.lastProgress)

	quiet := newProgressTracker(1000, false)
	quiet.reportIfNeeded(500)
	assert.Zero(t, quiet.lastProgress)

	empty := newProgressTracker(0, true)
	empty.reportIfNeeded(100)
	assert.Zero(t, empty.lastProgress)
}

func TestFilterWAV(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.wav")
	outPath := filepath.Join(dir, "out.wav")
	const frames = 4000
	writeTestWAV(t, inPath, 16000, 16, frames)

	for _, kind := range []string{filterLowPass, filterButterworth} {
		t.Run(kind, func(t *testing.T) {
			opts := defaultOptions()
			opts.kind = kind
			opts.coeff = "Q1.22"
			stats, err := filterWAV(inPath, outPath, opts)
			require.NoError(t, err)
			assert.Equal(t, int64(frames), stats.frames)
			assert.Equal(t, 16, stats.outBits)
			assert.Zero(t, stats.counters.Total(), "half scale 440 Hz tone must not overflow")

			out, err := openWAVInput(outPath, false)
			require.NoError(t, err)
			defer func() { _ = out.Close() }()
			assert.Equal(t, stereoChannels, out.channels)
			assert.Equal(t, 16000, out.rate)
		})
	}
}

func TestFilterWAV_BitDepthReduction(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in24.wav")
	outPath := filepath.Join(dir, "out16.wav")
	writeTestWAV(t, inPath, 16000, 24, 1000)

	opts := defaultOptions()
	opts.outBits = 16
	opts.quant = "floor"
	stats, err := filterWAV(inPath, outPath, opts)
	require.NoError(t, err)
	assert.Equal(t, 24, stats.inBits)
	assert.Equal(t, 16, stats.outBits)
	assert.Equal(t, "Q0.15", stats.info.Output.String())
}
