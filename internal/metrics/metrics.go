// Package metrics declares the Prometheus collectors exposed by the
// daemon, following the promauto registration style used throughout
// the teacher's internal/staging/stage package.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LatencyBuckets is reused across every duration histogram below,
// mirroring internal/util/metrics.LatencyBuckets in the teacher repo.
var LatencyBuckets = []float64{
	.001, .002, .005, .01, .02, .05, .1, .2, .5, 1, 2, 5, 10, 20, 50,
}

var (
	// ScanDuration records how long each completed, cancelled, or
	// faulted Rowhash call took.
	ScanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rabbit_eye_scan_duration_seconds",
		Help:    "the length of time a scan took, labeled by its outcome",
		Buckets: LatencyBuckets,
	}, []string{"result"})

	// ScanChangesTotal counts every change a scan drained, labeled by
	// kind (new, update, delete).
	ScanChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rabbit_eye_scan_changes_total",
		Help: "the number of changes drained from a scan, by kind",
	}, []string{"kind"})

	// PublishTotal counts publish attempts, labeled by outcome
	// ("ok" or "error").
	PublishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rabbit_eye_publish_total",
		Help: "the number of publish attempts, by outcome",
	}, []string{"outcome"})

	// IterationsTotal counts every scheduling-loop iteration, whether
	// or not it produced any changes.
	IterationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rabbit_eye_iterations_total",
		Help: "the number of scheduling-loop iterations run",
	})
)
