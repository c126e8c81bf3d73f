// Package metrics records report run metrics in a dedicated Prometheus
// registry and exports them for the node-exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultNamespace = "editor_points"

// Batch outcome label values
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Recorder holds the metrics of report runs
type Recorder struct {
	namespace string
	registry  *prometheus.Registry

	tasksFetched       *prometheus.CounterVec
	tasksUnmatched     *prometheus.CounterVec
	listFetchFailures  *prometheus.CounterVec
	statusBatches      *prometheus.CounterVec
	editorsReported    *prometheus.GaugeVec
	bonusTotal         prometheus.Gauge
	runDuration        prometheus.Histogram
	lastRunTimestamp   prometheus.Gauge
	noReworkSkippedRun prometheus.Counter
}

// Option configures a Recorder
type Option func(*Recorder)

// WithNamespace overrides the metric namespace
func WithNamespace(namespace string) Option {
	return func(r *Recorder) {
		r.namespace = namespace
	}
}

// WithRegistry records into an existing registry
func WithRegistry(registry *prometheus.Registry) Option {
	return func(r *Recorder) {
		r.registry = registry
	}
}

// NewRecorder creates a recorder with its own registry unless one is given
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{namespace: defaultNamespace}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = prometheus.NewRegistry()
	}

	auto := promauto.With(r.registry)

	r.tasksFetched = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "tasks_fetched_total",
		Help:      "Tasks fetched from the tracker by list",
	}, []string{"list"})

	r.tasksUnmatched = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "tasks_unmatched_total",
		Help:      "Tasks excluded from totals by reason",
	}, []string{"reason"})

	r.listFetchFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "list_fetch_failures_total",
		Help:      "Task list fetches that failed",
	}, []string{"list"})

	r.statusBatches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "status_lookup_batches_total",
		Help:      "Status history lookup batches by outcome",
	}, []string{"outcome"})

	r.editorsReported = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      "editors_reported",
		Help:      "Editors in the last report by team",
	}, []string{"team"})

	r.bonusTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      "bonus_total",
		Help:      "Total bonus amount in the last report",
	})

	r.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of report runs",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	r.lastRunTimestamp = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the last completed report run",
	})

	r.noReworkSkippedRun = auto.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "no_rework_skipped_total",
		Help:      "Runs where no-rework verification was skipped",
	})

	return r
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) TasksFetched(listID string, n int) {
	r.tasksFetched.WithLabelValues(listID).Add(float64(n))
}

func (r *Recorder) TaskUnmatched(reason string) {
	r.tasksUnmatched.WithLabelValues(reason).Inc()
}

func (r *Recorder) ListFetchFailed(listID string) {
	r.listFetchFailures.WithLabelValues(listID).Inc()
}

func (r *Recorder) StatusBatch(failed bool) {
	outcome := OutcomeOK
	if failed {
		outcome = OutcomeFailed
	}
	r.statusBatches.WithLabelValues(outcome).Inc()
}

func (r *Recorder) NoReworkSkipped() {
	r.noReworkSkippedRun.Inc()
}

// EditorsReported sets the per-team editor gauge
func (r *Recorder) EditorsReported(team string, n int) {
	r.editorsReported.WithLabelValues(team).Set(float64(n))
}

func (r *Recorder) BonusTotal(amount float64) {
	r.bonusTotal.Set(amount)
}

// RunCompleted observes the run duration and stamps the completion time
func (r *Recorder) RunCompleted(started, finished time.Time) {
	r.runDuration.Observe(finished.Sub(started).Seconds())
	r.lastRunTimestamp.Set(float64(finished.Unix()))
}

// WriteTextfile writes every metric in the registry to path in the text
// exposition format
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
