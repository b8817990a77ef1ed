package testutil

import (
	"fmt"
	"math"
	"testing"
)

// RequireNearlyEqual fails t if got and want differ by more than eps.
func RequireNearlyEqual(t *testing.T, name string, got, want, eps float64) {
	t.Helper()
	if d := math.Abs(got - want); d > eps {
		t.Fatalf("%s: got %v, want %v (diff %v > eps %v)", name, got, want, d, eps)
	}
}

// RequireValuesNearlyEqual fails t on the first element of got, e.g. a
// spectrum channel, that is more than eps from want.
func RequireValuesNearlyEqual(t *testing.T, name string, got, want []float64, eps float64) {
	t.Helper()
	if err := nearlyEqual(got, want, eps); err != nil {
		t.Fatalf("%s: %v", name, err)
	}
}

func nearlyEqual(got, want []float64, eps float64) error {
	if len(got) != len(want) {
		return fmt.Errorf("got %d values, want %d", len(got), len(want))
	}
	for i := range got {
		if d := math.Abs(got[i] - want[i]); d > eps || math.IsNaN(d) {
			return fmt.Errorf("[%d] got %v, want %v (diff %v > eps %v)", i, got[i], want[i], d, eps)
		}
	}
	return nil
}

// RequireFinite fails t if any value is NaN or infinite.
func RequireFinite(t *testing.T, name string, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s[%d]: non-finite value %v", name, i, v)
		}
	}
}
