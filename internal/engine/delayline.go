package engine

// delayLine is a shift register of raw samples. The newest sample is at
// index 0 of Window. Samples are stored twice so Window is always one
// contiguous slice and no copying happens on Push.
type delayLine[T any] struct {
	buf []T
	pos int
	n   int
}

func newDelayLine[T any](n int) *delayLine[T] {
	return &delayLine[T]{buf: make([]T, 2*n), pos: 0, n: n}
}

// Push shifts v in and drops the oldest sample.
func (d *delayLine[T]) Push(v T) {
	if d.n == 0 {
		return
	}
	d.pos--
	if d.pos < 0 {
		d.pos = d.n - 1
	}
	d.buf[d.pos] = v
	d.buf[d.pos+d.n] = v
}

// Window returns the register contents, newest first. The slice is only
// valid until the next Push.
func (d *delayLine[T]) Window() []T {
	return d.buf[d.pos : d.pos+d.n]
}

// Clear zeroes the register.
func (d *delayLine[T]) Clear() {
	clear(d.buf)
	d.pos = 0
}

// Len returns the number of taps.
func (d *delayLine[T]) Len() int { return d.n }
