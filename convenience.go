package fixpoint

import (
	"fmt"
	"sync"

	"github.com/tphakala/go-fixpoint/internal/filter"
)

// FilterFloat is a one-shot helper: it builds a filter, quantizes input,
// filters it and returns real output with the overflow counters.
func FilterFloat(cfg FilterConfig, set CoefficientSet, input []float64) ([]float64, Stats, error) {
	f, err := NewFilter(cfg, set)
	if err != nil {
		return nil, Stats{}, err
	}
	out, err := f.ProcessFloat(input)
	if err != nil {
		return nil, Stats{}, err
	}
	return out, f.Stats(), nil
}

// FilterChannels filters every channel with its own filter instance built
// from cfg and set. With parallel set, channels run in separate goroutines.
// The returned Stats are summed over channels.
func FilterChannels(cfg FilterConfig, set CoefficientSet, channels [][]float64, parallel bool) ([][]float64, Stats, error) {
	if len(channels) == 0 || len(channels) > maxChannels {
		return nil, Stats{}, fmt.Errorf("%w: %d channels, need 1 to %d", ErrConfiguration, len(channels), maxChannels)
	}

	filters := make([]*Filter, len(channels))
	for ch := range channels {
		f, err := NewFilter(cfg, set)
		if err != nil {
			return nil, Stats{}, err
		}
		filters[ch] = f
	}

	output := make([][]float64, len(channels))
	process := func(ch int) error {
		out, err := filters[ch].ProcessFloat(channels[ch])
		if err != nil {
			return fmt.Errorf("channel %d: %w", ch, err)
		}
		output[ch] = out
		return nil
	}

	if !parallel || len(channels) == 1 {
		for ch := range channels {
			if err := process(ch); err != nil {
				return nil, Stats{}, err
			}
		}
	} else {
		var wg sync.WaitGroup
		errChan := make(chan error, len(channels))
		for ch := range channels {
			wg.Add(1)
			go func(channel int) {
				defer wg.Done()
				if err := process(channel); err != nil {
					errChan <- err
				}
			}(ch)
		}
		wg.Wait()
		close(errChan)
		if err := <-errChan; err != nil {
			return nil, Stats{}, err
		}
	}

	var total Stats
	for _, f := range filters {
		total = total.Add(f.Stats())
	}
	return output, total, nil
}

// Deinterleave splits frames [c0 c1 ... c0 c1 ...] into planar channels.
// A trailing partial frame is dropped.
func Deinterleave[T any](interleaved []T, channels int) [][]T {
	if channels < 1 {
		return nil
	}
	frames := len(interleaved) / channels
	out := make([][]T, channels)
	for ch := range out {
		out[ch] = make([]T, frames)
		for i := range frames {
			out[ch][i] = interleaved[i*channels+ch]
		}
	}
	return out
}

// Interleave joins planar channels into frames. The shortest channel
// determines the frame count.
func Interleave[T any](channels [][]T) []T {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	for _, c := range channels[1:] {
		frames = min(frames, len(c))
	}
	out := make([]T, frames*len(channels))
	for ch, c := range channels {
		for i := range frames {
			out[i*len(channels)+ch] = c[i]
		}
	}
	return out
}

// DesignLowPass returns a Kaiser windowed lowpass FIR with unit DC gain.
// cutoff is in cycles per sample (0, 0.5), attenuation the stopband
// attenuation in dB. numTaps of zero estimates the length from a transition
// width of cutoff/4.
func DesignLowPass(numTaps int, cutoff, attenuation float64) (CoefficientSet, error) {
	var (
		b   []float64
		err error
	)
	if numTaps == 0 {
		b, err = filter.DesignLowPassFilterAuto(cutoff, cutoff/autoTransitionDivisor, attenuation, 1)
	} else {
		b, err = filter.DesignLowPassFilter(filter.FilterParams{
			NumTaps:     numTaps,
			CutoffFreq:  cutoff,
			Attenuation: attenuation,
			Gain:        1,
		})
	}
	if err != nil {
		return CoefficientSet{}, err
	}
	return CoefficientSet{B: b}, nil
}

// DesignButterworth returns an order-n Butterworth lowpass as second-order
// sections together with the equivalent single transfer function.
func DesignButterworth(order int, cutoff float64) (CoefficientSet, error) {
	sos, err := filter.ButterworthLowPass(order, cutoff)
	if err != nil {
		return CoefficientSet{}, err
	}
	b, a, err := filter.SOSToBA(sos)
	if err != nil {
		return CoefficientSet{}, err
	}
	return CoefficientSet{B: b, A: a, SOS: sos}, nil
}
