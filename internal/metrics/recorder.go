package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mcsim"

// Recorder collects simulation metrics. A nil *Recorder is valid and records
// nothing, so callers never need to guard their calls.
type Recorder struct {
	registry       *prometheus.Registry
	runs           *prometheus.CounterVec
	runDuration    prometheus.Histogram
	tasks          *prometheus.CounterVec
	taskDuration   *prometheus.HistogramVec
	trajectories   prometheus.Counter
	activeRequests prometheus.Gauge
	requests       *prometheus.CounterVec
	handler        http.Handler
}

// NewRecorder creates a Recorder with its own registry, including the Go
// runtime and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Simulation runs by overall outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of a whole simulation run.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "portfolio_tasks_total",
			Help:      "Portfolio tasks by status.",
		}, []string{"portfolio", "status"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "portfolio_task_duration_seconds",
			Help:      "Duration of a single portfolio task.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"portfolio"}),
		trajectories: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trajectories_total",
			Help:      "Trajectories simulated by completed tasks.",
		}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_requests",
			Help:      "HTTP requests currently being served.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "HTTP requests by path and status code.",
		}, []string{"path", "code"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.runs, r.runDuration, r.tasks, r.taskDuration, r.trajectories,
		r.activeRequests, r.requests,
	)
	r.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return r
}

// ObserveTask records the outcome of one portfolio task. Trajectories are
// only counted for completed tasks.
func (r *Recorder) ObserveTask(portfolio, status string, d time.Duration, trajectories int) {
	if r == nil {
		return
	}
	r.tasks.WithLabelValues(portfolio, status).Inc()
	r.taskDuration.WithLabelValues(portfolio).Observe(d.Seconds())
	if trajectories > 0 {
		r.trajectories.Add(float64(trajectories))
	}
}

// ObserveRun records a finished run.
func (r *Recorder) ObserveRun(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(outcome).Inc()
	r.runDuration.Observe(d.Seconds())
}

// IncrementActiveRequests marks the start of an HTTP request.
func (r *Recorder) IncrementActiveRequests() {
	if r == nil {
		return
	}
	r.activeRequests.Inc()
}

// DecrementActiveRequests marks the end of an HTTP request.
func (r *Recorder) DecrementActiveRequests() {
	if r == nil {
		return
	}
	r.activeRequests.Dec()
}

// ObserveRequest counts a served HTTP request.
func (r *Recorder) ObserveRequest(path, code string) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(path, code).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return r.handler
}

// WriteToTextfile dumps the registry to path in the node_exporter textfile
// format. The file is written atomically.
func (r *Recorder) WriteToTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
