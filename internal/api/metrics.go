package api

import (
	"github.com/franz/cloudbuccaneer/internal/report"
	"github.com/prometheus/client_golang/prometheus"
)

// metrics live on their own registry so several servers can coexist in one
// process (tests) without duplicate registration panics
type metrics struct {
	registry *prometheus.Registry
	files    *prometheus.CounterVec
	batches  *prometheus.CounterVec
	duration prometheus.Histogram
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cb_files_total",
				Help: "Audio files processed by rename batches, by outcome",
			},
			[]string{"outcome"}, // renamed, skipped, failed
		),
		batches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cb_rename_batches_total",
				Help: "Rename batches handled, by result",
			},
			[]string{"result"}, // success, partial, rejected
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cb_rename_batch_duration_seconds",
				Help:    "Time spent renaming one folder",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	m.registry.MustRegister(
		m.files,
		m.batches,
		m.duration,
		prometheus.NewGoCollector(),
	)
	return m
}

func (m *metrics) observe(rep *report.RenameReport) {
	m.files.WithLabelValues("renamed").Add(float64(rep.Count()))
	m.files.WithLabelValues("skipped").Add(float64(len(rep.Skipped)))
	m.files.WithLabelValues("failed").Add(float64(len(rep.Errors)))
	if rep.Success() {
		m.batches.WithLabelValues("success").Inc()
	} else {
		m.batches.WithLabelValues("partial").Inc()
	}
}
