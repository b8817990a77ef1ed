package ogip

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-xspec/mjd"
	"github.com/cwbudde/algo-xspec/stats/series"
)

// Errors returned by reduction and file functions.
var (
	ErrEmptyTable     = errors.New("ogip: rate table has no rows")
	ErrMalformedTable = errors.New("ogip: malformed rate table")
	ErrEmptySelection = errors.New("ogip: no rows in time window")
	ErrInvalidWindow  = errors.New("ogip: window start must precede end")
	ErrMissingKeyword = errors.New("ogip: missing header keyword")
	ErrMissingColumn  = errors.New("ogip: missing column")
	ErrLayout         = errors.New("ogip: expected primary, rate and energy HDUs")
	ErrExists         = errors.New("ogip: output file exists")
)

// AveragedSpectrum is the time average of a rate table over a half-open
// window [start, end).
type AveragedSpectrum struct {
	// Table has exactly one row. Its TIME is the first selected row's stored
	// TIME and its TIMEDEL the summed duration of the selected rows.
	Table RateTable

	// ChannelLivetime is the mean livetime broadcast to every channel.
	ChannelLivetime []float64

	// Exposure is the sum of TIMEDEL*LIVETIME over the selected rows, in
	// seconds. It differs from TIMEDEL whenever livetime is below one.
	Exposure float64

	// Start and Stop are the requested window bounds in MJD.
	Start mjd.Split
	Stop  mjd.Split

	Rows      int  // number of rows averaged
	FirstRow  int  // index of the first selected row
	Corrected bool // row times were rebuilt from MJDREF
}

// Rate returns the averaged rate per channel.
func (s *AveragedSpectrum) Rate() []float64 { return s.Table.Rate[0] }

// TimeDel returns the total wall-clock duration covered by the average.
func (s *AveragedSpectrum) TimeDel() float64 { return s.Table.TimeDel[0] }

// ReduceOption configures Reduce and TimeAxis.
type ReduceOption func(*reduceConfig)

type reduceConfig struct {
	origin TimeOrigin
	now    func() time.Time
	logger zerolog.Logger
}

// WithTimeOrigin overrides the time-origin heuristic.
func WithTimeOrigin(o TimeOrigin) ReduceOption {
	return func(cfg *reduceConfig) {
		cfg.origin = o
	}
}

// WithNow sets the clock used to judge whether row times are plausible dates.
func WithNow(now func() time.Time) ReduceOption {
	return func(cfg *reduceConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}

// WithLogger sets the logger for reduction diagnostics.
func WithLogger(l zerolog.Logger) ReduceOption {
	return func(cfg *reduceConfig) {
		cfg.logger = l
	}
}

func applyReduceOptions(opts []ReduceOption) reduceConfig {
	cfg := reduceConfig{
		origin: TimeOriginAuto,
		now:    time.Now,
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Reduce averages the rows of t whose bin centers fall in [start, end) into
// a single-row spectrum, and derives the matching rate header from hdr.
//
// start and end accept anything mjd.Parse does. RATE, STAT_ERR and SYS_ERR
// are averaged per channel, not summed, since they are already rates. hdr is
// not modified.
func Reduce(t *RateTable, hdr Header, start, end any, opts ...ReduceOption) (*AveragedSpectrum, Header, error) {
	cfg := applyReduceOptions(opts)

	if t == nil {
		return nil, Header{}, ErrEmptyTable
	}
	if err := t.Validate(); err != nil {
		return nil, Header{}, err
	}

	t0, err := mjd.Parse(start)
	if err != nil {
		return nil, Header{}, fmt.Errorf("window start: %w", err)
	}
	t1, err := mjd.Parse(end)
	if err != nil {
		return nil, Header{}, fmt.Errorf("window end: %w", err)
	}
	if t0 >= t1 {
		return nil, Header{}, fmt.Errorf("%w: [%v, %v)", ErrInvalidWindow, t0, t1)
	}

	times, corrected, err := absoluteTimes(t, hdr, cfg.origin, cfg.now())
	if err != nil {
		return nil, Header{}, err
	}
	if corrected {
		cfg.logger.Debug().
			Float64("first_time", t.Time[0]).
			Float64("first_mjd", times[0]).
			Msg("row times rebuilt from MJDREF")
	}

	sel := selectWindow(times, t0, t1)
	if len(sel) == 0 {
		return nil, Header{}, fmt.Errorf("%w: [%s, %s)", ErrEmptySelection,
			mjd.ToTime(t0).Format(time.RFC3339Nano), mjd.ToTime(t1).Format(time.RFC3339Nano))
	}

	nchan := t.NumChannels()
	rate := series.NewChannelMean(nchan)
	statErr := series.NewChannelMean(nchan)
	sysErr := series.NewChannelMean(nchan)
	timeDel := make([]float64, len(sel))
	livetime := make([]float64, len(sel))

	for k, i := range sel {
		if err := rate.Add(t.Rate[i]); err != nil {
			return nil, Header{}, fmt.Errorf("RATE row %d: %w", i, err)
		}
		if err := statErr.Add(t.StatErr[i]); err != nil {
			return nil, Header{}, fmt.Errorf("STAT_ERR row %d: %w", i, err)
		}
		if t.SysErr != nil {
			if err := sysErr.Add(t.SysErr[i]); err != nil {
				return nil, Header{}, fmt.Errorf("SYS_ERR row %d: %w", i, err)
			}
		}
		timeDel[k] = t.TimeDel[i]
		livetime[k] = t.Livetime[i]
	}

	exposure, err := series.Dot(timeDel, livetime)
	if err != nil {
		return nil, Header{}, err
	}
	meanLive := series.Mean(livetime)

	sys := sysErr.Result()
	if sys == nil {
		sys = make([]float64, nchan)
	}

	spec := &AveragedSpectrum{
		Table: RateTable{
			Time:     []float64{t.Time[sel[0]]},
			TimeDel:  []float64{series.Sum(timeDel)},
			Rate:     [][]float64{rate.Result()},
			StatErr:  [][]float64{statErr.Result()},
			SysErr:   [][]float64{sys},
			Livetime: []float64{meanLive},
			Channel:  [][]int32{t.channels()},
			SpecNum:  []int64{0},
		},
		ChannelLivetime: series.Fill(meanLive, nchan),
		Exposure:        exposure,
		Start:           mjd.SplitOf(t0),
		Stop:            mjd.SplitOf(t1),
		Rows:            len(sel),
		FirstRow:        sel[0],
		Corrected:       corrected,
	}

	cfg.logger.Debug().
		Int("rows", spec.Rows).
		Int("first_row", spec.FirstRow).
		Float64("exposure", spec.Exposure).
		Float64("timedel", spec.TimeDel()).
		Msg("reduced rate table")

	return spec, SpectrumHeader(hdr, spec), nil
}

// selectWindow returns the indices of times in [t0, t1).
func selectWindow(times []float64, t0, t1 float64) []int {
	var sel []int
	for i, v := range times {
		if v >= t0 && v < t1 {
			sel = append(sel, i)
		}
	}
	return sel
}

// SpectrumHeader derives the single-row rate header for spec from the
// source rate header. The row count collapses to one and the start/stop
// keywords carry the requested window, not the selected rows' times.
func SpectrumHeader(hdr Header, spec *AveragedSpectrum) Header {
	return hdr.
		With("NAXIS2", 1, "").
		With("TSTARTI", spec.Start.Int, "Integer portion of start time (MJD)").
		With("TSTARTF", spec.Start.Frac, "Fractional portion of start time (MJD)").
		With("TSTOPI", spec.Stop.Int, "Integer portion of stop time (MJD)").
		With("TSTOPF", spec.Stop.Frac, "Fractional portion of stop time (MJD)").
		With("EXPOSURE", spec.Exposure, "Livetime-weighted exposure (s)")
}
