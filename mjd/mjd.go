// Package mjd converts between Go times and Modified Julian Dates (MJD), the
// absolute time scale used by OGIP header time fields.
//
// All conversions are in UTC and ignore leap seconds, matching how the rate
// tables store bin centers.
package mjd

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// SecondsPerDay converts MJD day fractions to seconds.
	SecondsPerDay = 86400.0

	// unixEpoch is 1970-01-01T00:00:00Z expressed in MJD.
	unixEpoch = 40587.0
)

// ErrInvalidTime is returned when a value cannot be interpreted as a time.
var ErrInvalidTime = errors.New("mjd: unrecognized time value")

// EpochFloor is the earliest plausible calendar date for mission data.
// Row times that read as dates before it are treated as relative offsets.
var EpochFloor = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// FromTime returns t as MJD.
func FromTime(t time.Time) float64 {
	t = t.UTC()
	return unixEpoch + float64(t.Unix())/SecondsPerDay + float64(t.Nanosecond())/(SecondsPerDay*1e9)
}

// ToTime returns the UTC time for an MJD value, rounded to the nearest
// microsecond.
func ToTime(m float64) time.Time {
	secs := (m - unixEpoch) * SecondsPerDay
	whole := math.Floor(secs)
	usec := math.Round((secs - whole) * 1e6)

	return time.Unix(int64(whole), int64(usec)*int64(time.Microsecond)).UTC()
}

// Parse interprets v as an absolute time and returns it as MJD.
//
// Accepted values are time.Time, any Go integer or float (taken as MJD), and
// strings holding either a number (MJD) or an ISO-8601 date-time. Strings
// without a zone are read as UTC.
func Parse(v any) (float64, error) {
	switch x := v.(type) {
	case time.Time:
		return FromTime(x), nil
	case *time.Time:
		if x == nil {
			return 0, fmt.Errorf("%w: nil time", ErrInvalidTime)
		}
		return FromTime(*x), nil
	case float64:
		return checkFinite(x)
	case float32:
		return checkFinite(float64(x))
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case string:
		return parseString(x)
	}

	return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidTime, v)
}

func parseString(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidTime)
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return checkFinite(f)
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return FromTime(t), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
}

func checkFinite(f float64) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTime, f)
	}
	return f, nil
}

// Split is an MJD value separated into integer day and day fraction, the
// form used by the TSTARTI/TSTARTF header pair.
type Split struct {
	Int  int64
	Frac float64
}

// SplitOf separates m into integer and fractional parts. Both parts carry
// the sign of m.
func SplitOf(m float64) Split {
	i, f := math.Modf(m)
	return Split{Int: int64(i), Frac: f}
}

// Value recombines the split parts.
func (s Split) Value() float64 {
	return float64(s.Int) + s.Frac
}

// Plausible reports whether m falls on a calendar year between EpochFloor
// and now, inclusive of now's year.
func Plausible(m float64, now time.Time) bool {
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return false
	}
	year := ToTime(m).Year()
	return year >= EpochFloor.Year() && year <= now.UTC().Year()
}
