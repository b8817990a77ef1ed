// Package trigger holds validated trigger-accumulator count arrays.
//
// The detector reports trigger counts either for all 16 accumulators or for
// a single one, binned on a time axis. An Accumulator is immutable once
// constructed.
package trigger

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-xspec/timeaxis"
)

// Channels is the number of trigger accumulators on the detector.
const Channels = 16

// Kind classifies a validation failure.
type Kind int

const (
	// KindShape means the count array is not 1xM or 16xM.
	KindShape Kind = iota + 1
	// KindAxisLength means the count array's time dimension differs from the axis.
	KindAxisLength
	// KindAxisType means the axis was not built by timeaxis.New.
	KindAxisType
)

func (k Kind) String() string {
	switch k {
	case KindShape:
		return "shape"
	case KindAxisLength:
		return "axis length"
	case KindAxisType:
		return "axis type"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Sentinel errors matched by ValidationError.Is. ErrShape matches both
// KindShape and KindAxisLength, since both are shape disagreements.
var (
	ErrShape      = errors.New("trigger: counts must be a 16 x M or 1 x M array")
	ErrAxisLength = errors.New("trigger: time axis length does not match counts")
	ErrAxisType   = errors.New("trigger: time axis must be a validated timeaxis.Axis")
)

// ValidationError describes why New rejected its input.
type ValidationError struct {
	Kind Kind
	Msg  string
}

func (e *ValidationError) Error() string {
	return "trigger: " + e.Kind.String() + ": " + e.Msg
}

// Is reports whether target is the sentinel for e's Kind.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrShape:
		return e.Kind == KindShape || e.Kind == KindAxisLength
	case ErrAxisLength:
		return e.Kind == KindAxisLength
	case ErrAxisType:
		return e.Kind == KindAxisType
	}
	return false
}

// Count is the set of element types New accepts.
type Count interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Accumulator stores trigger counts of shape (K, M) with K in {1, 16}.
type Accumulator struct {
	counts       [][]uint64
	axis         *timeaxis.Axis
	channelIndex []int
}

// Option configures New.
type Option func(*options)

type options struct {
	channelIndex []int
}

// WithChannelIndex records which accumulator(s) a single-row array came
// from (1-based). It is ignored for 16-row arrays, which are always indexed
// 1..16.
func WithChannelIndex(idx ...int) Option {
	return func(o *options) {
		o.channelIndex = append([]int(nil), idx...)
	}
}

// New validates counts against axis and converts them to uint64.
//
// Counts are expected to be non-negative; negative values are an upstream
// contract violation and are not checked here.
func New[T Count](counts [][]T, axis *timeaxis.Axis, opts ...Option) (*Accumulator, error) {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	k := len(counts)
	if k != 1 && k != Channels {
		return nil, &ValidationError{Kind: KindShape, Msg: fmt.Sprintf("got %d rows, want 1 or %d", k, Channels)}
	}

	m := len(counts[0])
	for i, row := range counts {
		if len(row) != m {
			return nil, &ValidationError{Kind: KindShape, Msg: fmt.Sprintf("row %d has %d columns, row 0 has %d", i, len(row), m)}
		}
	}

	if !axis.Valid() {
		return nil, &ValidationError{Kind: KindAxisType, Msg: "axis is nil or was not built by timeaxis.New"}
	}

	if m != axis.Len() {
		return nil, &ValidationError{Kind: KindAxisLength, Msg: fmt.Sprintf("counts have %d time bins, axis has %d", m, axis.Len())}
	}

	out := make([][]uint64, k)
	for i, row := range counts {
		out[i] = make([]uint64, m)
		for j, v := range row {
			out[i][j] = uint64(v)
		}
	}

	idx := o.channelIndex
	if k == Channels {
		idx = make([]int, Channels)
		for i := range idx {
			idx[i] = i + 1
		}
	}

	return &Accumulator{counts: out, axis: axis, channelIndex: idx}, nil
}

// Rows returns K, the number of accumulators stored.
func (a *Accumulator) Rows() int { return len(a.counts) }

// Bins returns M, the number of time bins.
func (a *Accumulator) Bins() int { return a.axis.Len() }

// Axis returns the time axis the counts are binned on.
func (a *Accumulator) Axis() *timeaxis.Axis { return a.axis }

// ChannelIndex returns a copy of the 1-based accumulator indices, or nil if
// none were supplied for a single-row array.
func (a *Accumulator) ChannelIndex() []int {
	if a.channelIndex == nil {
		return nil
	}
	return append([]int(nil), a.channelIndex...)
}

// At returns the count of accumulator row k in time bin j.
func (a *Accumulator) At(k, j int) uint64 { return a.counts[k][j] }

// Row returns a copy of accumulator row k.
func (a *Accumulator) Row(k int) []uint64 {
	return append([]uint64(nil), a.counts[k]...)
}

// Total returns the summed counts in time bin j across all stored rows.
func (a *Accumulator) Total(j int) uint64 {
	var sum uint64
	for _, row := range a.counts {
		sum += row[j]
	}
	return sum
}
