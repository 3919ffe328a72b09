// Package metrics exposes the Prometheus collectors orcd's control loops
// report against. Handler() is mounted at /metrics by cmd/scheduler. The
// Health Monitor, Recovery Engine, Scheduler Façade, and Persistence
// Flusher update the probe, node-failure, recovery, submit, and flush
// collectors; NodesTotal, WorkloadsTotal, and FailureSetSize are
// registered but no orcd package sets them.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	NodesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "orcd_nodes_total",
			Help: "Total number of registered nodes by status",
		},
		[]string{"status"},
	)

	WorkloadsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "orcd_workloads_total",
			Help: "Total number of workloads by status",
		},
		[]string{"status"},
	)

	FailureSetSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "orcd_failure_set_size",
			Help: "Number of workloads currently awaiting recovery",
		},
	)

	HealthChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orcd_health_checks_total",
			Help: "Total number of node health probes by outcome",
		},
		[]string{"outcome"},
	)

	HealthCheckDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orcd_health_check_duration_seconds",
			Help:    "Latency of a single node /status probe",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	NodeFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orcd_node_failures_total",
			Help: "Total number of nodes transitioned to offline",
		},
	)

	RecoveryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orcd_recovery_attempts_total",
			Help: "Total number of workload recovery attempts by outcome",
		},
		[]string{"outcome"},
	)

	RecoveryCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orcd_recovery_cycle_duration_seconds",
			Help:    "Duration of one Recovery Engine pass over the failure set",
			Buckets: prometheus.DefBuckets,
		},
	)

	WorkloadsExhaustedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orcd_workloads_exhausted_total",
			Help: "Total number of workloads that exceeded max_retries and were given up on",
		},
	)

	SubmitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orcd_submit_duration_seconds",
			Help:    "Latency of the Scheduler Façade's Submit operation",
			Buckets: prometheus.DefBuckets,
		},
	)

	PersistenceFlushesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orcd_persistence_flushes_total",
			Help: "Total number of Desired-State Table snapshot attempts by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		NodesTotal,
		WorkloadsTotal,
		FailureSetSize,
		HealthChecksTotal,
		HealthCheckDuration,
		NodeFailuresTotal,
		RecoveryAttemptsTotal,
		RecoveryCycleDuration,
		WorkloadsExhaustedTotal,
		SubmitDuration,
		PersistenceFlushesTotal,
	)
}

// Handler returns the Prometheus scrape handler mounted at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures elapsed wall time for reporting into a histogram.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time into histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed time into a labeled histogram.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
