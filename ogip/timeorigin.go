package ogip

import (
	"fmt"
	"time"

	"github.com/cwbudde/algo-xspec/mjd"
	"github.com/cwbudde/algo-xspec/timeaxis"
)

// TimeOrigin selects how the TIME column is mapped to absolute MJD.
type TimeOrigin int

const (
	// TimeOriginAuto treats TIME as seconds from MJDREF+TIMEZERO when the
	// header carries a reference epoch and the first row, read as MJD, is
	// not a plausible mission date. Otherwise TIME is used as MJD.
	TimeOriginAuto TimeOrigin = iota
	// TimeOriginNever always reads TIME as MJD.
	TimeOriginNever
	// TimeOriginAlways always reads TIME as seconds from MJDREF+TIMEZERO.
	TimeOriginAlways
)

func (o TimeOrigin) String() string {
	switch o {
	case TimeOriginAuto:
		return "auto"
	case TimeOriginNever:
		return "never"
	case TimeOriginAlways:
		return "always"
	default:
		return fmt.Sprintf("TimeOrigin(%d)", int(o))
	}
}

// ParseTimeOrigin maps "auto", "never" and "always" to a TimeOrigin.
func ParseTimeOrigin(s string) (TimeOrigin, error) {
	switch s {
	case "", "auto":
		return TimeOriginAuto, nil
	case "never":
		return TimeOriginNever, nil
	case "always":
		return TimeOriginAlways, nil
	}
	return TimeOriginAuto, fmt.Errorf("ogip: unknown time origin %q", s)
}

// absoluteTimes returns the row bin centers in MJD and whether they were
// reconstructed from the header reference epoch.
func absoluteTimes(t *RateTable, hdr Header, origin TimeOrigin, now time.Time) ([]float64, bool, error) {
	raw := append([]float64(nil), t.Time...)
	if origin == TimeOriginNever || len(raw) == 0 {
		return raw, false, nil
	}

	ref, ok := hdr.mjdRef()
	if !ok {
		if origin == TimeOriginAlways {
			return nil, false, fmt.Errorf("%w: MJDREF", ErrMissingKeyword)
		}
		return raw, false, nil
	}

	if origin == TimeOriginAuto && mjd.Plausible(raw[0], now) {
		return raw, false, nil
	}

	// TIMEZERO is added to MJDREF as a day offset.
	zero, _ := hdr.Float("TIMEZERO")
	base := ref + zero
	for i, s := range t.Time {
		raw[i] = base + s/mjd.SecondsPerDay
	}

	return raw, true, nil
}

// TimeAxis returns the absolute time axis of a rate table, applying the
// same time-origin handling as Reduce.
func TimeAxis(t *RateTable, hdr Header, opts ...ReduceOption) (*timeaxis.Axis, error) {
	cfg := applyReduceOptions(opts)

	times, _, err := absoluteTimes(t, hdr, cfg.origin, cfg.now())
	if err != nil {
		return nil, err
	}

	return timeaxis.New(times, t.TimeDel)
}
