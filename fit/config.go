package fit

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/rs/zerolog"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("fit: invalid config")

// StatMethods lists the fit statistics the engine accepts.
var StatMethods = []string{"chi", "cstat", "lstat", "pgstat", "pstat", "whittle"}

// QueryPolicies lists the answers to the engine's "continue fitting?" prompt.
// "on" asks interactively, which the XSPEC adapter rejects.
var QueryPolicies = []string{"no", "yes", "on"}

// EnergyRange is a closed energy band in keV.
type EnergyRange struct {
	Low  float64
	High float64
}

// IgnoreOutside returns the engine ignore string masking everything
// outside r.
func (r EnergyRange) IgnoreOutside() string {
	return "0.-" + strconv.FormatFloat(r.Low, 'g', -1, 64) +
		" " + strconv.FormatFloat(r.High, 'g', -1, 64) + "-**"
}

func (r EnergyRange) String() string {
	return fmt.Sprintf("%g-%g keV", r.Low, r.High)
}

// Config drives an Orchestrator run.
type Config struct {
	// Thermal is the thermal component, e.g. "apec" or "vth".
	Thermal string
	// NonThermal is the non-thermal component, e.g. "bknpower" or
	// "thick2". Empty stops after the thermal-only fit.
	NonThermal string

	LowRange  EnergyRange
	HighRange EnergyRange

	// BreakStart seeds the break energy in keV.
	BreakStart float64
	// BreakFrozen keeps the break energy frozen at its seed.
	BreakFrozen bool

	StatMethod string
	Query      string
	Iterations int
	Abundance  string

	Renorm   bool
	Renotice bool

	// ThermalRelease names the thermal parameters freed for the joint fit.
	ThermalRelease []string
}

// DefaultConfig returns the standard thermal plus broken power law setup.
func DefaultConfig() Config {
	return Config{
		Thermal:        "apec",
		NonThermal:     "bknpower",
		LowRange:       EnergyRange{Low: 2, High: 10},
		HighRange:      EnergyRange{Low: 8, High: 30},
		BreakStart:     15,
		StatMethod:     "chi",
		Query:          "no",
		Iterations:     1000,
		Abundance:      "felc",
		Renorm:         true,
		Renotice:       true,
		ThermalRelease: []string{"kT", "norm"},
	}
}

// Validate checks c for values the engine would reject.
func (c Config) Validate() error {
	switch {
	case c.Thermal == "":
		return fmt.Errorf("%w: thermal component required", ErrInvalidConfig)
	case !validRange(c.LowRange):
		return fmt.Errorf("%w: low range %v", ErrInvalidConfig, c.LowRange)
	case !validRange(c.HighRange):
		return fmt.Errorf("%w: high range %v", ErrInvalidConfig, c.HighRange)
	case c.Iterations <= 0:
		return fmt.Errorf("%w: iterations %d", ErrInvalidConfig, c.Iterations)
	case !slices.Contains(StatMethods, c.StatMethod):
		return fmt.Errorf("%w: statistic %q", ErrInvalidConfig, c.StatMethod)
	case !slices.Contains(QueryPolicies, c.Query):
		return fmt.Errorf("%w: query %q", ErrInvalidConfig, c.Query)
	case c.Abundance == "":
		return fmt.Errorf("%w: abundance table required", ErrInvalidConfig)
	}
	return nil
}

func validRange(r EnergyRange) bool {
	return r.Low >= 0 && r.Low < r.High
}

// Observer receives stage and run outcomes.
type Observer interface {
	StageDone(r StageReport)
	RunDone(cfg Config, res *Result, err error)
}

type options struct {
	log      zerolog.Logger
	observer Observer
}

// Option configures an Orchestrator.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithObserver registers an observer of stage outcomes.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

func applyOptions(opts ...Option) options {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
