package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// JobMetrics exposes per-job run counters and latency
type JobMetrics struct {
	runs     *prometheus.CounterVec
	items    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewJobMetrics registers the job collectors on reg
func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	factory := promauto.With(reg)
	return &JobMetrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pickem_job_runs_total",
			Help: "Job runs by result (ok, error, panic, skipped_overlap).",
		}, []string{"job", "result"}),
		items: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pickem_job_items_total",
			Help: "Items processed by jobs, by outcome.",
		}, []string{"job", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pickem_job_duration_seconds",
			Help:    "Wall time of job runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
	}
}

// Observe records a finished run
func (m *JobMetrics) Observe(report JobReport, result string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(report.Job, result).Inc()
	m.items.WithLabelValues(report.Job, "succeeded").Add(float64(report.Succeeded))
	m.items.WithLabelValues(report.Job, "skipped").Add(float64(report.Skipped))
	m.items.WithLabelValues(report.Job, "errored").Add(float64(report.Errored))
	m.duration.WithLabelValues(report.Job).Observe(report.Duration.Seconds())
}

// SkippedOverlap counts a tick dropped because the previous run was still going
func (m *JobMetrics) SkippedOverlap(job string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(job, "skipped_overlap").Inc()
}
