package trigger

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-xspec/timeaxis"
)

func newAxis(t *testing.T, m int) *timeaxis.Axis {
	t.Helper()
	centers := make([]float64, m)
	durations := make([]float64, m)
	for i := range centers {
		centers[i] = 59783 + float64(i)/86400
		durations[i] = 1
	}
	a, err := timeaxis.New(centers, durations)
	if err != nil {
		t.Fatalf("timeaxis.New: %v", err)
	}
	return a
}

func grid(k, m int) [][]int64 {
	out := make([][]int64, k)
	for i := range out {
		out[i] = make([]int64, m)
		for j := range out[i] {
			out[i][j] = int64(i*m + j)
		}
	}
	return out
}

func TestNewSixteenAssignsIndex(t *testing.T) {
	axis := newAxis(t, 5)

	for _, opts := range [][]Option{nil, {WithChannelIndex(7)}, {WithChannelIndex(3, 2, 1)}} {
		acc, err := New(grid(16, 5), axis, opts...)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		idx := acc.ChannelIndex()
		if len(idx) != 16 {
			t.Fatalf("len(ChannelIndex) = %d, want 16", len(idx))
		}
		for i, v := range idx {
			if v != i+1 {
				t.Fatalf("ChannelIndex[%d] = %d, want %d", i, v, i+1)
			}
		}
	}
}

func TestNewSingleKeepsIndex(t *testing.T) {
	axis := newAxis(t, 3)

	acc, err := New([][]float64{{1, 2, 3}}, axis, WithChannelIndex(9))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if idx := acc.ChannelIndex(); len(idx) != 1 || idx[0] != 9 {
		t.Fatalf("ChannelIndex = %v, want [9]", idx)
	}
	if acc.Rows() != 1 || acc.Bins() != 3 {
		t.Fatalf("shape = %dx%d, want 1x3", acc.Rows(), acc.Bins())
	}
	if acc.At(0, 2) != 3 {
		t.Fatalf("At(0,2) = %d, want 3", acc.At(0, 2))
	}

	bare, err := New([][]float64{{1, 2, 3}}, axis)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if bare.ChannelIndex() != nil {
		t.Fatalf("ChannelIndex = %v, want nil", bare.ChannelIndex())
	}
}

func TestNewRejectsRowCounts(t *testing.T) {
	axis := newAxis(t, 4)
	for _, k := range []int{0, 2, 15, 17, 32} {
		_, err := New(grid(k, 4), axis)
		if !errors.Is(err, ErrShape) {
			t.Errorf("k=%d: error = %v, want ErrShape", k, err)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Kind != KindShape {
			t.Errorf("k=%d: error = %#v, want KindShape", k, err)
		}
	}
}

func TestNewRejectsRaggedRows(t *testing.T) {
	counts := grid(16, 4)
	counts[7] = counts[7][:3]

	_, err := New(counts, newAxis(t, 4))
	if !errors.Is(err, ErrShape) {
		t.Fatalf("error = %v, want ErrShape", err)
	}
}

func TestNewRejectsAxisLength(t *testing.T) {
	for _, m := range []int{3, 5} {
		_, err := New(grid(1, 4), newAxis(t, m))
		if !errors.Is(err, ErrAxisLength) {
			t.Errorf("m=%d: error = %v, want ErrAxisLength", m, err)
		}
		if !errors.Is(err, ErrShape) {
			t.Errorf("m=%d: axis length mismatch should also match ErrShape", m)
		}
		if errors.Is(err, ErrAxisType) {
			t.Errorf("m=%d: axis length mismatch matched ErrAxisType", m)
		}
	}
}

func TestNewRejectsAxisType(t *testing.T) {
	for name, axis := range map[string]*timeaxis.Axis{
		"nil":  nil,
		"zero": {},
	} {
		_, err := New(grid(1, 0), axis)
		if !errors.Is(err, ErrAxisType) {
			t.Errorf("%s: error = %v, want ErrAxisType", name, err)
		}
		if errors.Is(err, ErrShape) {
			t.Errorf("%s: axis type failure matched ErrShape", name)
		}
	}
}

func TestTotal(t *testing.T) {
	acc, err := New(grid(16, 2), newAxis(t, 2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// column 0 holds 0, 2, 4, ..., 30
	if got := acc.Total(0); got != 240 {
		t.Fatalf("Total(0) = %d, want 240", got)
	}
	row := acc.Row(1)
	row[0] = 99
	if acc.At(1, 0) != 2 {
		t.Fatal("Row returned an alias of internal storage")
	}
}
