package fit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadErrorStatus is returned for an error string that is not nine T/F flags.
var ErrBadErrorStatus = errors.New("fit: malformed error status")

// ErrorBounds is the confidence range of a parameter computed by the
// engine's error command.
type ErrorBounds struct {
	Lower  float64
	Upper  float64
	Status ErrorStatus
}

// ErrorStatus holds the nine condition flags reported with parameter
// errors. The zero value means no condition was raised.
type ErrorStatus uint16

const (
	StatusNewMinimum ErrorStatus = 1 << iota
	StatusNonMonotonic
	StatusMinimizationProblem
	StatusHardLowerLimit
	StatusHardUpperLimit
	StatusFrozen
	StatusSearchFailedLow
	StatusSearchFailedHigh
	StatusChiSquaredHigh
)

const statusFlags = 9

var statusText = [statusFlags]string{
	"new minimum found",
	"non-monotonicity detected",
	"minimization may have run into problem",
	"hit hard lower limit",
	"hit hard upper limit",
	"parameter was frozen",
	"search failed in -ve direction",
	"search failed in +ve direction",
	"reduced chi-squared too high",
}

// ParseErrorStatus decodes a flag string such as "FFFFFFFFF" or
// "FFFTFFFFF".
func ParseErrorStatus(s string) (ErrorStatus, error) {
	s = strings.TrimSpace(s)
	if len(s) != statusFlags {
		return 0, fmt.Errorf("%w: %q", ErrBadErrorStatus, s)
	}

	var st ErrorStatus
	for i := range statusFlags {
		switch s[i] {
		case 'T':
			st |= 1 << i
		case 'F':
		default:
			return 0, fmt.Errorf("%w: %q", ErrBadErrorStatus, s)
		}
	}
	return st, nil
}

// OK reports whether no condition was raised.
func (s ErrorStatus) OK() bool { return s == 0 }

// Has reports whether every flag in f is set.
func (s ErrorStatus) Has(f ErrorStatus) bool { return s&f == f }

// Conditions returns the descriptions of the set flags in flag order.
func (s ErrorStatus) Conditions() []string {
	var out []string
	for i := range statusFlags {
		if s&(1<<i) != 0 {
			out = append(out, statusText[i])
		}
	}
	return out
}

// String returns the nine-character flag form.
func (s ErrorStatus) String() string {
	var b strings.Builder
	for i := range statusFlags {
		if s&(1<<i) != 0 {
			b.WriteByte('T')
		} else {
			b.WriteByte('F')
		}
	}
	return b.String()
}
