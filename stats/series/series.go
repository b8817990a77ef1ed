// Package series provides numerically careful reductions over rate-table
// rows: compensated sums, means and per-channel streaming averages.
package series

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"
)

// ErrLengthMismatch is returned when vectors that must align differ in length.
var ErrLengthMismatch = errors.New("series: length mismatch")

// Sum returns the sum of x using Kahan summation.
func Sum(x []float64) float64 {
	var sum, c float64
	for _, v := range x {
		y := v - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}

	return sum
}

// Mean returns the arithmetic mean of x, or 0 for an empty slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	return Sum(x) / float64(len(x))
}

// Dot returns the sum of a[i]*b[i].
func Dot(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}

	prod := make([]float64, len(a))
	vecmath.MulBlock(prod, a, b)

	return Sum(prod), nil
}

// ChannelMean accumulates equally sized vectors and reports their
// element-wise mean. The zero value is not usable; call NewChannelMean.
type ChannelMean struct {
	sum []float64
	n   int
}

// NewChannelMean creates an accumulator for vectors of the given width.
func NewChannelMean(width int) *ChannelMean {
	return &ChannelMean{sum: make([]float64, width)}
}

// Width returns the vector length the accumulator expects.
func (m *ChannelMean) Width() int { return len(m.sum) }

// Count returns the number of vectors added.
func (m *ChannelMean) Count() int { return m.n }

// Add accumulates one vector.
func (m *ChannelMean) Add(v []float64) error {
	if len(v) != len(m.sum) {
		return fmt.Errorf("%w: vector has %d channels, want %d", ErrLengthMismatch, len(v), len(m.sum))
	}

	vecmath.AddBlockInPlace(m.sum, v)
	m.n++

	return nil
}

// Result returns the element-wise mean. It returns nil when nothing was added.
func (m *ChannelMean) Result() []float64 {
	if m.n == 0 {
		return nil
	}

	out := make([]float64, len(m.sum))
	vecmath.ScaleBlock(out, m.sum, 1/float64(m.n))

	return out
}

// Reset clears the accumulated data, keeping the width.
func (m *ChannelMean) Reset() {
	for i := range m.sum {
		m.sum[i] = 0
	}
	m.n = 0
}

// Fill returns a slice of length n with every element set to v.
func Fill(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
