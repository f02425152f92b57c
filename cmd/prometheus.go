package cmd

import (
	"github.com/prometheus/client_golang/prometheus"
)

// runMetrics exports per-algorithm run statistics for the serve command.
type runMetrics struct {
	runs            *prometheus.CounterVec
	placements      *prometheus.CounterVec
	skips           *prometheus.CounterVec
	compactions     *prometheus.CounterVec
	framesMoved     *prometheus.CounterVec
	lastEndClock    *prometheus.GaugeVec
	lastUtilization *prometheus.GaugeVec
}

func newRunMetrics(reg prometheus.Registerer) *runMetrics {
	labels := []string{"algorithm"}
	m := &runMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memsim_runs_total",
			Help: "Completed simulation runs",
		}, labels),
		placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memsim_placements_total",
			Help: "Arrivals placed into memory",
		}, labels),
		skips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memsim_skips_total",
			Help: "Arrivals skipped because they could not be placed",
		}, labels),
		compactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memsim_compactions_total",
			Help: "Defragmentation passes triggered by placement",
		}, labels),
		framesMoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memsim_frames_moved_total",
			Help: "Frames relocated by defragmentation",
		}, labels),
		lastEndClock: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "memsim_last_run_end_ms",
			Help: "Simulated end time of the most recent run",
		}, labels),
		lastUtilization: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "memsim_last_run_utilization_ratio",
			Help: "Time-weighted frame utilization of the most recent run",
		}, labels),
	}
	reg.MustRegister(
		m.runs,
		m.placements,
		m.skips,
		m.compactions,
		m.framesMoved,
		m.lastEndClock,
		m.lastUtilization,
	)
	return m
}

// observe folds a finished run into the exported series.
func (m *runMetrics) observe(res runResult) {
	name := res.Algorithm.Name()
	met := res.Metrics
	m.runs.WithLabelValues(name).Inc()
	m.placements.WithLabelValues(name).Add(float64(met.Placements))
	m.skips.WithLabelValues(name).Add(float64(met.Skips))
	m.compactions.WithLabelValues(name).Add(float64(met.Compactions))
	m.framesMoved.WithLabelValues(name).Add(float64(met.FramesMoved))
	m.lastEndClock.WithLabelValues(name).Set(float64(met.SimEndedTime))
	m.lastUtilization.WithLabelValues(name).Set(met.AverageUtilization(res.NumFrames))
}
