package ogip

import "fmt"

// RateTable is an OGIP rate extension held in memory: one row per time bin,
// N energy channels per row.
type RateTable struct {
	Time     []float64   // bin centers as stored: MJD, or seconds from MJDREF
	TimeDel  []float64   // bin durations in seconds
	Rate     [][]float64 // counts/s per channel
	StatErr  [][]float64 // statistical error per channel
	SysErr   [][]float64 // systematic error per channel; nil means zero
	Livetime []float64   // live fraction per row
	Channel  [][]int32   // channel identifiers; nil means 0..N-1
	SpecNum  []int64     // spectrum index; nil means row order
}

// Len returns the number of rows.
func (t *RateTable) Len() int { return len(t.Time) }

// NumChannels returns the number of energy channels per row.
func (t *RateTable) NumChannels() int {
	if len(t.Rate) == 0 {
		return 0
	}
	return len(t.Rate[0])
}

// Validate checks that every column has one entry per row and every
// per-channel vector has the same width.
func (t *RateTable) Validate() error {
	n := t.Len()
	if n == 0 {
		return ErrEmptyTable
	}

	for _, c := range []struct {
		name string
		len  int
	}{
		{"TIMEDEL", len(t.TimeDel)},
		{"RATE", len(t.Rate)},
		{"STAT_ERR", len(t.StatErr)},
		{"LIVETIME", len(t.Livetime)},
	} {
		if c.len != n {
			return fmt.Errorf("%w: %s has %d rows, TIME has %d", ErrMalformedTable, c.name, c.len, n)
		}
	}
	if t.SysErr != nil && len(t.SysErr) != n {
		return fmt.Errorf("%w: SYS_ERR has %d rows, TIME has %d", ErrMalformedTable, len(t.SysErr), n)
	}
	if t.Channel != nil && len(t.Channel) != n {
		return fmt.Errorf("%w: CHANNEL has %d rows, TIME has %d", ErrMalformedTable, len(t.Channel), n)
	}
	if t.SpecNum != nil && len(t.SpecNum) != n {
		return fmt.Errorf("%w: SPEC_NUM has %d rows, TIME has %d", ErrMalformedTable, len(t.SpecNum), n)
	}

	nchan := t.NumChannels()
	if nchan == 0 {
		return fmt.Errorf("%w: RATE has no channels", ErrMalformedTable)
	}
	for i := 0; i < n; i++ {
		if len(t.Rate[i]) != nchan || len(t.StatErr[i]) != nchan {
			return fmt.Errorf("%w: row %d channel width differs from %d", ErrMalformedTable, i, nchan)
		}
		if t.SysErr != nil && len(t.SysErr[i]) != nchan {
			return fmt.Errorf("%w: row %d SYS_ERR width differs from %d", ErrMalformedTable, i, nchan)
		}
		if t.Channel != nil && len(t.Channel[i]) != nchan {
			return fmt.Errorf("%w: row %d CHANNEL width differs from %d", ErrMalformedTable, i, nchan)
		}
	}

	return nil
}

// channels returns the channel identifiers of the first row, or 0..N-1
// when the table carries none.
func (t *RateTable) channels() []int32 {
	if len(t.Channel) > 0 {
		return append([]int32(nil), t.Channel[0]...)
	}
	out := make([]int32, t.NumChannels())
	for i := range out {
		out[i] = int32(i)
	}
	return out
}
