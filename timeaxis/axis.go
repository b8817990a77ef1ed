// Package timeaxis provides the validated time axis shared by trigger
// accumulators and rate-table reductions.
//
// An Axis is a sequence of time-bin centers in MJD, each with a duration in
// seconds. Centers must be non-decreasing.
package timeaxis

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-xspec/mjd"
)

// Errors returned by New.
var (
	ErrLengthMismatch = errors.New("timeaxis: centers and durations differ in length")
	ErrNotMonotonic   = errors.New("timeaxis: bin centers must be non-decreasing")
	ErrNegativeWidth  = errors.New("timeaxis: bin duration must be non-negative")
	ErrNonFinite      = errors.New("timeaxis: non-finite value")
)

// Axis is an ordered sequence of time bins.
type Axis struct {
	centers   []float64 // MJD
	durations []float64 // seconds
	valid     bool
}

// New validates and copies centers and durations into an Axis.
func New(centers, durations []float64) (*Axis, error) {
	if len(centers) != len(durations) {
		return nil, fmt.Errorf("%w: %d centers, %d durations", ErrLengthMismatch, len(centers), len(durations))
	}

	for i := range centers {
		if math.IsNaN(centers[i]) || math.IsInf(centers[i], 0) ||
			math.IsNaN(durations[i]) || math.IsInf(durations[i], 0) {
			return nil, fmt.Errorf("%w at bin %d", ErrNonFinite, i)
		}
		if durations[i] < 0 {
			return nil, fmt.Errorf("%w at bin %d: %v", ErrNegativeWidth, i, durations[i])
		}
		if i > 0 && centers[i] < centers[i-1] {
			return nil, fmt.Errorf("%w at bin %d: %v < %v", ErrNotMonotonic, i, centers[i], centers[i-1])
		}
	}

	return &Axis{
		centers:   append([]float64(nil), centers...),
		durations: append([]float64(nil), durations...),
		valid:     true,
	}, nil
}

// Valid reports whether a was produced by New. A zero Axis is not valid.
func (a *Axis) Valid() bool {
	return a != nil && a.valid
}

// Len returns the number of bins.
func (a *Axis) Len() int {
	if a == nil {
		return 0
	}
	return len(a.centers)
}

// Center returns the MJD center of bin i.
func (a *Axis) Center(i int) float64 { return a.centers[i] }

// Duration returns the width of bin i in seconds.
func (a *Axis) Duration(i int) float64 { return a.durations[i] }

// Centers returns a copy of the bin centers.
func (a *Axis) Centers() []float64 {
	return append([]float64(nil), a.centers...)
}

// Durations returns a copy of the bin durations.
func (a *Axis) Durations() []float64 {
	return append([]float64(nil), a.durations...)
}

// Start returns the MJD at which bin i begins.
func (a *Axis) Start(i int) float64 {
	return a.centers[i] - a.durations[i]/(2*mjd.SecondsPerDay)
}

// End returns the MJD at which bin i ends.
func (a *Axis) End(i int) float64 {
	return a.centers[i] + a.durations[i]/(2*mjd.SecondsPerDay)
}

// Times returns the bin centers as UTC times.
func (a *Axis) Times() []time.Time {
	out := make([]time.Time, len(a.centers))
	for i, c := range a.centers {
		out[i] = mjd.ToTime(c)
	}
	return out
}

// Span returns the start of the first bin and the end of the last.
// It returns zeros for an empty axis.
func (a *Axis) Span() (start, end float64) {
	n := a.Len()
	if n == 0 {
		return 0, 0
	}
	return a.Start(0), a.End(n - 1)
}
