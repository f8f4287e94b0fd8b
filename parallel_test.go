package fixpoint

import (
	"math"
	"sync"
	"testing"
)

func stereoLowPass(t *testing.T) (FilterConfig, CoefficientSet) {
	t.Helper()
	set, err := DesignLowPass(31, 0.2, 60)
	if err != nil {
		t.Fatalf("DesignLowPass failed: %v", err)
	}
	q15 := Config{WI: 0, WF: 15, Quant: QuantRound, Ovfl: OverflowSaturate}
	return FilterConfig{Input: q15, Output: q15, Coeff: q15, Policy: AccuAuto}, set
}

// TestFilterChannelsParallel tests that parallel processing produces the
// same samples as sequential processing.
func TestFilterChannelsParallel(t *testing.T) {
	const (
		channels   = 4
		numSamples = 4096
	)
	cfg, set := stereoLowPass(t)

	input := make([][]float64, channels)
	for ch := range channels {
		input[ch] = make([]float64, numSamples)
		for i := range numSamples {
			// different phases keep the channels distinguishable
			phase := float64(ch) * math.Pi / 4
			input[ch][i] = 0.8 * math.Sin(2*math.Pi*0.01*float64(i)+phase)
		}
	}

	outputSeq, statsSeq, err := FilterChannels(cfg, set, input, false)
	if err != nil {
		t.Fatalf("sequential FilterChannels failed: %v", err)
	}
	outputPar, statsPar, err := FilterChannels(cfg, set, input, true)
	if err != nil {
		t.Fatalf("parallel FilterChannels failed: %v", err)
	}

	if statsSeq != statsPar {
		t.Errorf("stats mismatch: seq=%+v, par=%+v", statsSeq, statsPar)
	}
	for ch := range channels {
		if len(outputSeq[ch]) != len(outputPar[ch]) {
			t.Fatalf("channel %d length mismatch: seq=%d, par=%d", ch, len(outputSeq[ch]), len(outputPar[ch]))
		}
		for i := range outputSeq[ch] {
			if outputSeq[ch][i] != outputPar[ch][i] {
				t.Errorf("channel %d sample %d mismatch: seq=%v, par=%v", ch, i, outputSeq[ch][i], outputPar[ch][i])
				break
			}
		}
	}
}

// TestFilterChannelsIndependence verifies that a silent channel stays
// silent next to a loud one.
func TestFilterChannelsIndependence(t *testing.T) {
	const numSamples = 2048
	cfg, set := stereoLowPass(t)

	input := [][]float64{make([]float64, numSamples), make([]float64, numSamples)}
	for i := range numSamples {
		input[1][i] = 0.9 * math.Sin(2*math.Pi*0.02*float64(i))
	}

	output, _, err := FilterChannels(cfg, set, input, true)
	if err != nil {
		t.Fatalf("FilterChannels failed: %v", err)
	}
	for i, v := range output[0] {
		if v != 0 {
			t.Fatalf("silent channel sample %d is %v", i, v)
		}
	}
	var peak float64
	for _, v := range output[1] {
		peak = max(peak, math.Abs(v))
	}
	if peak < 0.8 {
		t.Errorf("signal channel peak %v is too low", peak)
	}
}

// TestIndependentFiltersConcurrently runs many filters at once; each must
// match a filter run alone.
func TestIndependentFiltersConcurrently(t *testing.T) {
	const (
		workers    = 8
		numSamples = 1024
	)
	cfg, set := stereoLowPass(t)
	input := make([]float64, numSamples)
	for i := range input {
		input[i] = 0.5 * math.Cos(2*math.Pi*0.05*float64(i))
	}

	want, _, err := FilterFloat(cfg, set, input)
	if err != nil {
		t.Fatalf("FilterFloat failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _, err := FilterFloat(cfg, set, input)
			if err != nil {
				errs <- err.Error()
				return
			}
			for i := range want {
				if got[i] != want[i] {
					errs <- "sample mismatch"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}

// TestFilterChannelsRejectsBadChannelCount checks the channel limits.
func TestFilterChannelsRejectsBadChannelCount(t *testing.T) {
	cfg, set := stereoLowPass(t)
	if _, _, err := FilterChannels(cfg, set, nil, true); err == nil {
		t.Error("expected error for zero channels")
	}
}
