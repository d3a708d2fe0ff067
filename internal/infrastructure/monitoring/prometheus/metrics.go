package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/turtacn/dockrmsd/internal/domain/scoring"
	"github.com/turtacn/dockrmsd/pkg/errors"
)

// ScoringMetrics holds every metric the scorer, batch runner, cache and HTTP
// service record, on a registry of its own.
type ScoringMetrics struct {
	// Scoring pipeline
	StageTotal    *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	Atoms         prometheus.Histogram
	RMSD          prometheus.Histogram

	// Batch
	BatchJobsTotal     *prometheus.CounterVec
	BatchJobDuration   prometheus.Histogram
	BatchActiveWorkers prometheus.Gauge

	// Collaborators
	CacheRequestsTotal *prometheus.CounterVec
	CrossCheckTotal    *prometheus.CounterVec
	UploadsTotal       *prometheus.CounterVec

	// HTTP Layer
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPActiveRequests  prometheus.Gauge

	ErrorsTotal *prometheus.CounterVec

	registry *registry
}

// Default Buckets
var (
	DefaultStageDurationBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5}
	DefaultAtomBuckets          = []float64{5, 10, 20, 30, 50, 75, 100, 150, 250}
	DefaultRMSDBuckets          = []float64{0.5, 1, 1.5, 2, 3, 4, 6, 8, 12}
	DefaultJobDurationBuckets   = []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 120}
	DefaultHTTPDurationBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
)

// Status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

var _ scoring.Observer = (*ScoringMetrics)(nil)

// NewScoringMetrics registers all metrics on a fresh registry. It fails with
// COMMON_010 when the namespace yields invalid metric names.
func NewScoringMetrics(opts Options) (*ScoringMetrics, error) {
	r := newRegistry(opts)
	m := &ScoringMetrics{registry: r}

	m.StageTotal = r.counter("scoring_stage_total", "Scoring stages executed", "stage", "status")
	m.StageDuration = r.histogramVec("scoring_stage_duration_seconds", "Scoring stage duration", DefaultStageDurationBuckets, "stage")
	m.Atoms = r.histogram("scoring_atoms", "Heavy atoms per scored pair", DefaultAtomBuckets)
	m.RMSD = r.histogram("scoring_rmsd_angstrom", "Symmetry-corrected RMSD of scored pairs", DefaultRMSDBuckets)

	m.BatchJobsTotal = r.counter("batch_jobs_total", "Batch jobs by final status", "status")
	m.BatchJobDuration = r.histogram("batch_job_duration_seconds", "Batch job wall time", DefaultJobDurationBuckets)
	m.BatchActiveWorkers = r.gauge("batch_active_workers", "Batch jobs currently running")

	m.CacheRequestsTotal = r.counter("cache_requests_total", "Score cache lookups", "result")
	m.CrossCheckTotal = r.counter("crosscheck_total", "Reference scorer comparisons", "outcome")
	m.UploadsTotal = r.counter("report_uploads_total", "Batch report uploads", "status")

	m.HTTPRequestsTotal = r.counter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = r.histogramVec("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = r.gauge("http_active_requests", "Active HTTP requests")

	m.ErrorsTotal = r.counter("errors_total", "Errors by component and code", "component", "error_code")

	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *ScoringMetrics) Handler() http.Handler {
	return m.registry.handler()
}

// ObserveStage implements scoring.Observer.
func (m *ScoringMetrics) ObserveStage(stage scoring.Stage, elapsed time.Duration, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
		m.RecordError("scoring", err)
	}
	m.StageTotal.WithLabelValues(string(stage), status).Inc()
	m.StageDuration.WithLabelValues(string(stage)).Observe(elapsed.Seconds())
}

// ObserveScore implements scoring.Observer.
func (m *ScoringMetrics) ObserveScore(atoms int, rmsd float64) {
	m.Atoms.Observe(float64(atoms))
	m.RMSD.Observe(rmsd)
}

// Helpers

func (m *ScoringMetrics) RecordBatchJob(status string, duration time.Duration) {
	m.BatchJobsTotal.WithLabelValues(status).Inc()
	m.BatchJobDuration.Observe(duration.Seconds())
}

// TrackWorker increments the active-worker gauge and returns the matching
// decrement.
func (m *ScoringMetrics) TrackWorker() func() {
	m.BatchActiveWorkers.Inc()
	return m.BatchActiveWorkers.Dec
}

// Cache results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

func (m *ScoringMetrics) RecordCacheAccess(result string) {
	m.CacheRequestsTotal.WithLabelValues(result).Inc()
}

// Cross-check outcomes.
const (
	CrossCheckAgree     = "agree"
	CrossCheckMismatch  = "mismatch"
	CrossCheckToolError = "tool_error"
	CrossCheckFailed    = "failed"
)

func (m *ScoringMetrics) RecordCrossCheck(outcome string) {
	m.CrossCheckTotal.WithLabelValues(outcome).Inc()
}

func (m *ScoringMetrics) RecordUpload(err error) {
	if err != nil {
		m.UploadsTotal.WithLabelValues(StatusError).Inc()
		m.RecordError("storage", err)
		return
	}
	m.UploadsTotal.WithLabelValues(StatusOK).Inc()
}

func (m *ScoringMetrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// TrackHTTPRequest increments the in-flight gauge and returns the matching
// decrement.
func (m *ScoringMetrics) TrackHTTPRequest() func() {
	m.HTTPActiveRequests.Inc()
	return m.HTTPActiveRequests.Dec
}

// RecordError counts err under component, labelled with its error code.
func (m *ScoringMetrics) RecordError(component string, err error) {
	m.ErrorsTotal.WithLabelValues(component, string(errors.GetCode(err))).Inc()
}

//Personal.AI order the ending
