package fit

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Orchestrator runs the staged thermal plus non-thermal fit:
//
//  1. init: abundance, statistic, query policy and iterations
//  2. thermal only, over LowRange
//  3. thermal+non-thermal over HighRange, thermal frozen at stage 2 values
//     and the break energy frozen at BreakStart
//  4. break energy released (skipped without a break or with BreakFrozen)
//  5. joint fit over LowRange.Low..HighRange.High with ThermalRelease freed
//  6. done: optionally notice all channels again
//
// Without a non-thermal component the run ends after stage 2.
type Orchestrator struct {
	cfg Config
	log zerolog.Logger
	obs Observer
}

// NewOrchestrator validates cfg and returns an Orchestrator.
func NewOrchestrator(cfg Config, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := applyOptions(opts...)
	return &Orchestrator{cfg: cfg, log: o.log, obs: o.observer}, nil
}

// Config returns the run configuration.
func (o *Orchestrator) Config() Config { return o.cfg }

// StageError reports the stage in which an engine call failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("fit: stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// run carries the state of one Run.
type run struct {
	*Orchestrator
	e     Engine
	model Model
	res   Result
}

// Run executes the stage sequence on the session's engine. The session is
// held for the whole run.
func (o *Orchestrator) Run(s *Session) (*Result, error) {
	if s == nil {
		return nil, ErrSessionClosed
	}
	e, release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	r := &run{Orchestrator: o, e: e}
	res, err := r.execute()
	if o.obs != nil {
		o.obs.RunDone(o.cfg, res, err)
	}
	return res, err
}

func (r *run) execute() (*Result, error) {
	cfg := r.cfg

	if err := r.init(); err != nil {
		return nil, &StageError{Stage: StageInit, Err: err}
	}

	thermal, err := r.thermalOnly()
	if err != nil {
		return nil, &StageError{Stage: StageThermalOnly, Err: err}
	}

	if cfg.NonThermal != "" {
		if err := r.frozenBreak(thermal); err != nil {
			return nil, &StageError{Stage: StageNonThermalFrozenBreak, Err: err}
		}

		if r.res.Break.Releasable() && !cfg.BreakFrozen {
			if err := r.unfrozenBreak(); err != nil {
				return nil, &StageError{Stage: StageNonThermalUnfrozenBreak, Err: err}
			}
		} else {
			r.log.Debug().
				Stringer("break", r.res.Break.Kind).
				Bool("break_frozen", cfg.BreakFrozen).
				Msg("skipping break energy release")
		}

		if err := r.joint(); err != nil {
			return nil, &StageError{Stage: StageJoint, Err: err}
		}
	}

	if cfg.Renotice {
		if err := r.e.NoticeAll(); err != nil {
			return nil, &StageError{Stage: StageDone, Err: err}
		}
	}

	r.res.Model = r.model
	if n := len(r.res.Stages); n > 0 {
		r.res.Statistic = r.res.Stages[n-1].Statistic
	}

	r.log.Info().
		Str("model", r.model.Expression()).
		Str("statistic", r.res.Statistic.Method).
		Float64("value", r.res.Statistic.Value).
		Int("dof", r.res.Statistic.DOF).
		Float64("null_hypothesis", r.res.Statistic.NullHyp).
		Msg("fit complete")

	res := r.res
	return &res, nil
}

func (r *run) init() error {
	cfg := r.cfg
	steps := []struct {
		name string
		fn   func() error
	}{
		{"abundance", func() error { return r.e.SetAbundance(cfg.Abundance) }},
		{"statistic", func() error { return r.e.SetStatMethod(cfg.StatMethod) }},
		{"query", func() error { return r.e.SetQuery(cfg.Query) }},
		{"iterations", func() error { return r.e.SetIterations(cfg.Iterations) }},
		{"clear models", r.e.ClearModels},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func (r *run) thermalOnly() ([]float64, error) {
	m, err := r.e.NewModel(r.cfg.Thermal)
	if err != nil {
		return nil, err
	}
	r.model = m

	if err := r.e.Ignore(r.cfg.LowRange.IgnoreOutside()); err != nil {
		return nil, err
	}
	if err := r.perform(StageThermalOnly, r.cfg.LowRange); err != nil {
		return nil, err
	}

	return Params(m, r.cfg.Thermal, true)
}

func (r *run) frozenBreak(thermal []float64) error {
	cfg := r.cfg

	if err := r.e.ClearModels(); err != nil {
		return err
	}
	m, err := r.e.NewModel(cfg.Thermal + "+" + cfg.NonThermal)
	if err != nil {
		return err
	}
	r.model = m

	if err := SetParams(m, cfg.Thermal, thermal, true); err != nil {
		return err
	}

	names, err := m.ParameterNames(cfg.NonThermal)
	if err != nil {
		return err
	}
	r.res.Break = ResolveBreak(names)
	if err := r.seedBreak(); err != nil {
		return err
	}

	if err := r.e.NoticeAll(); err != nil {
		return err
	}
	if err := r.e.Ignore(cfg.HighRange.IgnoreOutside()); err != nil {
		return err
	}
	return r.perform(StageNonThermalFrozenBreak, cfg.HighRange)
}

func (r *run) seedBreak() error {
	cfg := r.cfg
	conv := r.res.Break

	if !conv.Resolved() {
		r.log.Debug().
			Str("component", cfg.NonThermal).
			Msg("no break energy parameter, fitting unconstrained")
		return nil
	}

	brk, err := r.model.Parameter(cfg.NonThermal, conv.Break)
	if err != nil {
		return err
	}
	settings := map[int]Setting{
		brk.Index: NewSetting(cfg.BreakStart, -0.5).WithTop(cfg.BreakStart + 2),
	}

	var low Parameter
	if conv.Kind == BreakLowAndBreak {
		low, err = r.model.Parameter(cfg.NonThermal, conv.Low)
		if err != nil {
			return err
		}
		settings[low.Index] = NewSetting(cfg.BreakStart-5, -0.5).WithTop(cfg.BreakStart - 2)
	}

	if err := r.model.SetPars(settings); err != nil {
		return err
	}
	if conv.Kind == BreakLowAndBreak {
		if err := r.model.SetFrozen(low.Index, false); err != nil {
			return err
		}
	}

	r.log.Debug().
		Stringer("convention", conv.Kind).
		Str("parameter", conv.Break).
		Float64("start", cfg.BreakStart).
		Msg("break energy seeded")
	if conv.Kind == BreakWithoutLow {
		r.log.Debug().
			Str("component", cfg.NonThermal).
			Str("missing", PairLowName).
			Msg("break energy stays frozen")
	}
	return nil
}

func (r *run) unfrozenBreak() error {
	p, err := r.model.Parameter(r.cfg.NonThermal, r.res.Break.Break)
	if err != nil {
		return err
	}
	if err := r.model.SetFrozen(p.Index, false); err != nil {
		return err
	}
	return r.perform(StageNonThermalUnfrozenBreak, r.cfg.HighRange)
}

func (r *run) joint() error {
	cfg := r.cfg

	for _, name := range cfg.ThermalRelease {
		p, err := r.model.Parameter(cfg.Thermal, name)
		if err != nil {
			return err
		}
		if err := r.model.SetFrozen(p.Index, false); err != nil {
			return err
		}
	}

	band := EnergyRange{Low: cfg.LowRange.Low, High: cfg.HighRange.High}
	if err := r.e.NoticeAll(); err != nil {
		return err
	}
	if err := r.e.Ignore(band.IgnoreOutside()); err != nil {
		return err
	}
	return r.perform(StageJoint, band)
}

// perform renormalizes if configured, fits and records the stage.
func (r *run) perform(stage Stage, mask EnergyRange) error {
	start := time.Now()

	if r.cfg.Renorm {
		if err := r.e.Renorm(); err != nil {
			return err
		}
	}
	stat, err := r.e.Perform()
	if err != nil {
		return err
	}

	rep := StageReport{
		Stage:     stage,
		Model:     r.model.Expression(),
		Mask:      mask,
		Statistic: stat,
		Duration:  time.Since(start),
	}
	r.res.Stages = append(r.res.Stages, rep)

	r.log.Info().
		Stringer("stage", stage).
		Str("model", rep.Model).
		Stringer("mask", mask).
		Float64("statistic", stat.Value).
		Int("dof", stat.DOF).
		Dur("elapsed", rep.Duration).
		Msg("stage fitted")

	if r.obs != nil {
		r.obs.StageDone(rep)
	}
	return nil
}

// IsStageError reports whether err came from an engine call and, if so,
// in which stage.
func IsStageError(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return 0, false
}
