package logic

import "github.com/pkg/errors"

// DefaultWindow is the number of samples averaged per channel.
const DefaultWindow = 10

// ErrFilterUnderflow is returned by Mean when no sample has been inserted.
var ErrFilterUnderflow = errors.New("filter: mean requested with no samples")

// Filter is a fixed-capacity moving average over the most recent samples.
// The backing slice is allocated once; Insert never allocates.
// Not safe for concurrent use.
type Filter struct {
	buf    []float64
	cursor int // next write position
	full   bool
}

// NewFilter creates a filter averaging the last window samples.
// It panics if window < 1.
func NewFilter(window int) *Filter {
	if window < 1 {
		panic("logic: filter window must be >= 1")
	}
	return &Filter{buf: make([]float64, window)}
}

// Insert stores v at the cursor and advances it circularly.
func (f *Filter) Insert(v float64) {
	f.buf[f.cursor] = v
	f.cursor = (f.cursor + 1) % len(f.buf)
	if f.cursor == 0 {
		f.full = true
	}
}

// Len returns the number of populated slots.
func (f *Filter) Len() int {
	if f.full {
		return len(f.buf)
	}
	return f.cursor
}

// Window returns the filter capacity.
func (f *Filter) Window() int {
	return len(f.buf)
}

// Full reports whether the buffer has wrapped at least once.
func (f *Filter) Full() bool {
	return f.full
}

// Mean returns the arithmetic mean of the populated slots.
func (f *Filter) Mean() (float64, error) {
	n := f.Len()
	if n == 0 {
		return 0, ErrFilterUnderflow
	}
	var sum float64
	for _, v := range f.buf[:n] {
		sum += v
	}
	return sum / float64(n), nil
}

// Clone returns an independent copy of the filter.
func (f *Filter) Clone() *Filter {
	c := &Filter{buf: make([]float64, len(f.buf)), cursor: f.cursor, full: f.full}
	copy(c.buf, f.buf)
	return c
}
