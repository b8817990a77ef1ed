package timeaxis

import (
	"errors"
	"math"
	"testing"
)

func TestNewValid(t *testing.T) {
	a, err := New([]float64{10, 10.5, 10.5, 11}, []float64{86400, 0, 0, 86400})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !a.Valid() {
		t.Fatal("Valid() = false for axis built by New")
	}
	if a.Len() != 4 {
		t.Fatalf("Len = %d, want 4", a.Len())
	}
	if got := a.Start(0); math.Abs(got-9.5) > 1e-12 {
		t.Fatalf("Start(0) = %v, want 9.5", got)
	}
	if got := a.End(3); math.Abs(got-11.5) > 1e-12 {
		t.Fatalf("End(3) = %v, want 11.5", got)
	}
	start, end := a.Span()
	if start != a.Start(0) || end != a.End(3) {
		t.Fatalf("Span = (%v, %v)", start, end)
	}
}

func TestNewCopiesInput(t *testing.T) {
	centers := []float64{1, 2}
	a, err := New(centers, []float64{1, 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	centers[0] = 99
	if a.Center(0) != 1 {
		t.Fatalf("axis aliased caller slice: Center(0) = %v", a.Center(0))
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name      string
		centers   []float64
		durations []float64
		want      error
	}{
		{"length", []float64{1, 2}, []float64{1}, ErrLengthMismatch},
		{"decreasing", []float64{2, 1}, []float64{1, 1}, ErrNotMonotonic},
		{"negative width", []float64{1, 2}, []float64{1, -1}, ErrNegativeWidth},
		{"nan", []float64{1, math.NaN()}, []float64{1, 1}, ErrNonFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.centers, tt.durations)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestZeroAxisInvalid(t *testing.T) {
	var a Axis
	if a.Valid() {
		t.Fatal("zero Axis reports Valid")
	}
	var nilAxis *Axis
	if nilAxis.Valid() || nilAxis.Len() != 0 {
		t.Fatal("nil Axis reports Valid or non-zero Len")
	}
}
