package testutil

import "math/rand"

// Const returns a slice of length n with every element set to value.
func Const(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// Grid returns evenly spaced values start, start+step, ... of length n.
func Grid(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

// RampRows returns rows x channels where every channel of row i holds
// base + i. Row means are therefore easy to state in tests.
func RampRows(rows, channels int, base float64) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = Const(base+float64(i), channels)
	}
	return out
}

// NoisyRows returns rows x channels of uniform values in [lo, hi) drawn
// from a fixed seed.
func NoisyRows(seed int64, rows, channels int, lo, hi float64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, channels)
		for j := range out[i] {
			out[i][j] = lo + rng.Float64()*(hi-lo)
		}
	}
	return out
}

// ColumnMeans is a reference implementation of per-column arithmetic means.
func ColumnMeans(rows [][]float64) []float64 {
	if len(rows) == 0 {
		return nil
	}
	out := make([]float64, len(rows[0]))
	for _, row := range rows {
		for j, v := range row {
			out[j] += v
		}
	}
	for j := range out {
		out[j] /= float64(len(rows))
	}
	return out
}
