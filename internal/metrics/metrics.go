// Package metrics records fit and reduction outcomes with Prometheus.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cwbudde/algo-xspec/fit"
	"github.com/cwbudde/algo-xspec/ogip"
)

// Recorder implements fit.Observer and records reductions.
type Recorder struct {
	stageDuration *prometheus.HistogramVec
	stageStat     *prometheus.GaugeVec
	runsTotal     *prometheus.CounterVec
	finalStat     *prometheus.GaugeVec

	reductions   *prometheus.CounterVec
	rowsSelected prometheus.Histogram
	exposure     prometheus.Gauge
}

var _ fit.Observer = (*Recorder)(nil)

// New registers the recorder's collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		stageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xspecfit_stage_duration_seconds",
				Help:    "Duration of fit stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		stageStat: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "xspecfit_stage_statistic",
				Help: "Fit statistic at the end of each stage",
			},
			[]string{"stage", "method"},
		),
		runsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xspecfit_runs_total",
				Help: "Total number of orchestrated fits",
			},
			[]string{"model", "result"},
		),
		finalStat: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "xspecfit_final_statistic",
				Help: "Fit statistic of the last completed run",
			},
			[]string{"model", "method"},
		),
		reductions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xspecfit_reductions_total",
				Help: "Total number of time-window reductions",
			},
			[]string{"result"},
		),
		rowsSelected: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "xspecfit_reduction_rows",
				Help:    "Rows averaged per reduction",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		exposure: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "xspecfit_reduction_exposure_seconds",
				Help: "Exposure of the last reduced spectrum",
			},
		),
	}
}

// StageDone records a fitted stage.
func (r *Recorder) StageDone(rep fit.StageReport) {
	stage := rep.Stage.String()
	r.stageDuration.WithLabelValues(stage).Observe(rep.Duration.Seconds())
	r.stageStat.WithLabelValues(stage, rep.Statistic.Method).Set(rep.Statistic.Value)
}

// RunDone records the outcome of a run.
func (r *Recorder) RunDone(cfg fit.Config, res *fit.Result, err error) {
	model := cfg.Thermal
	if cfg.NonThermal != "" {
		model += "+" + cfg.NonThermal
	}
	if err != nil {
		r.runsTotal.WithLabelValues(model, "error").Inc()
		return
	}
	r.runsTotal.WithLabelValues(model, "ok").Inc()
	r.finalStat.WithLabelValues(model, res.Statistic.Method).Set(res.Statistic.Value)
}

// RecordReduction records the outcome of an ogip.Reduce call.
func (r *Recorder) RecordReduction(spec *ogip.AveragedSpectrum, err error) {
	switch {
	case errors.Is(err, ogip.ErrEmptySelection):
		r.reductions.WithLabelValues("empty").Inc()
	case err != nil:
		r.reductions.WithLabelValues("error").Inc()
	default:
		r.reductions.WithLabelValues("ok").Inc()
		r.rowsSelected.Observe(float64(spec.Rows))
		r.exposure.Set(spec.Exposure)
	}
}

// WriteFile writes every metric gathered by g to path in the text
// exposition format, for node_exporter's textfile collector.
func WriteFile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
