package fit

import "time"

// Stage is a step of the orchestration sequence.
type Stage int

const (
	StageInit Stage = iota
	StageThermalOnly
	StageNonThermalFrozenBreak
	StageNonThermalUnfrozenBreak
	StageJoint
	StageDone
)

var stageNames = [...]string{
	StageInit:                    "init",
	StageThermalOnly:             "thermal_only",
	StageNonThermalFrozenBreak:   "nonthermal_frozen_break",
	StageNonThermalUnfrozenBreak: "nonthermal_unfrozen_break",
	StageJoint:                   "joint",
	StageDone:                    "done",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// StageReport records one fitted stage.
type StageReport struct {
	Stage     Stage
	Model     string
	Mask      EnergyRange
	Statistic Statistic
	Duration  time.Duration
}

// Result is the outcome of a run.
type Result struct {
	Model     Model
	Statistic Statistic
	Break     BreakConvention
	Stages    []StageReport
}

// Skipped reports whether stage s did not run.
func (r *Result) Skipped(s Stage) bool {
	for _, st := range r.Stages {
		if st.Stage == s {
			return false
		}
	}
	return true
}
