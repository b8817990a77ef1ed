package series

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-xspec/internal/testutil"
)

const tolerance = 1e-12

func TestSumKahan(t *testing.T) {
	// Naive summation of 1 followed by many tiny values loses them all.
	x := make([]float64, 10001)
	x[0] = 1
	for i := 1; i < len(x); i++ {
		x[i] = 1e-16
	}

	got := Sum(x)
	want := 1 + 1e-12
	if math.Abs(got-want) > 1e-14 {
		t.Fatalf("Sum = %.17g, want %.17g", got, want)
	}
}

func TestMean(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{4}, 4},
		{"livetimes", []float64{0.9, 0.95}, 0.925},
	}

	for _, tt := range tests {
		if got := Mean(tt.in); math.Abs(got-tt.want) > tolerance {
			t.Errorf("%s: Mean = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDot(t *testing.T) {
	got, err := Dot([]float64{0.1, 0.1}, []float64{0.9, 0.95})
	if err != nil {
		t.Fatalf("Dot: %v", err)
	}
	if math.Abs(got-0.185) > tolerance {
		t.Fatalf("Dot = %v, want 0.185", got)
	}

	if _, err := Dot([]float64{1}, []float64{1, 2}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("Dot mismatch error = %v, want ErrLengthMismatch", err)
	}
}

func TestChannelMean(t *testing.T) {
	m := NewChannelMean(2)
	if m.Result() != nil {
		t.Fatal("Result before Add should be nil")
	}

	for _, row := range [][]float64{{5, 5}, {6, 6}} {
		if err := m.Add(row); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	testutil.RequireValuesNearlyEqual(t, "mean", m.Result(), []float64{5.5, 5.5}, tolerance)
	if m.Count() != 2 {
		t.Fatalf("Count = %d, want 2", m.Count())
	}

	if err := m.Add([]float64{1, 2, 3}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("Add wrong width error = %v, want ErrLengthMismatch", err)
	}

	m.Reset()
	if m.Count() != 0 || m.Width() != 2 || m.Result() != nil {
		t.Fatal("Reset did not clear state")
	}
}

func TestFill(t *testing.T) {
	testutil.RequireValuesNearlyEqual(t, "fill", Fill(0.925, 3), []float64{0.925, 0.925, 0.925}, 0)
}
