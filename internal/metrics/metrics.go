// Package metrics records install progress as Prometheus metrics.
//
// Each Recorder owns a registry so tests and repeated runs in one process do
// not collide on the default registerer. All methods are safe on a nil Recorder.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "adapt_install"

// Results recorded for phases and rollbacks.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Recorder holds the install metrics.
type Recorder struct {
	registry *prometheus.Registry

	phaseTotal      *prometheus.CounterVec
	phaseDuration   *prometheus.HistogramVec
	rollbackTotal   *prometheus.CounterVec
	resourcesPurged prometheus.Counter
	runInfo         *prometheus.GaugeVec
}

// NewRecorder creates a recorder with its own registry, including the Go and
// process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		phaseTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "phase",
				Name:      "total",
				Help:      "Total number of install phases run by result",
			},
			[]string{"phase", "result"},
		),
		phaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "phase",
				Name:      "duration_seconds",
				Help:      "Duration of install phases in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
			},
			[]string{"phase"},
		),
		rollbackTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rollback",
				Name:      "total",
				Help:      "Total number of rollback deletions by resource and result",
			},
			[]string{"resource", "result"},
		),
		resourcesPurged: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "kinds_purged_total",
				Help:      "Total number of resource kinds emptied before a reinstall",
			},
		),
		runInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "run_info",
				Help:      "Set to 1 for the mode of the current run",
			},
			[]string{"mode"},
		),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.phaseTotal,
		r.phaseDuration,
		r.rollbackTotal,
		r.resourcesPurged,
		r.runInfo,
	)
	return r
}

// Registry returns the registry backing the recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RecordPhase records the outcome and duration of a phase.
func (r *Recorder) RecordPhase(phase string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	r.phaseTotal.WithLabelValues(phase, result).Inc()
	r.phaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordRollback records one rollback deletion.
func (r *Recorder) RecordRollback(resource string, err error) {
	if r == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	r.rollbackTotal.WithLabelValues(resource, result).Inc()
}

// RecordPurge counts emptied resource kinds.
func (r *Recorder) RecordPurge(kinds int) {
	if r == nil {
		return
	}
	r.resourcesPurged.Add(float64(kinds))
}

// SetMode marks the mode of the current run.
func (r *Recorder) SetMode(mode string) {
	if r == nil {
		return
	}
	r.runInfo.Reset()
	r.runInfo.WithLabelValues(mode).Set(1)
}
