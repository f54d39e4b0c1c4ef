package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/esgproxy/backend/internal/contracts"
)

const namespace = "esgproxy"

// Recorder collects scoring and provider metrics on its own registry
// A nil *Recorder is valid and records nothing.
// ⭐ SSOT: Prometheus 지표 정의는 여기서만
type Recorder struct {
	registry      *prometheus.Registry
	scores        *prometheus.CounterVec
	scoreValue    *prometheus.HistogramVec
	fetchDuration *prometheus.HistogramVec
	failures      *prometheus.CounterVec
}

// New creates a recorder with all collectors registered
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		scores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scores_total",
			Help:      "Scores computed by pipeline, scheme and risk level.",
		}, []string{"pipeline", "scheme", "risk"}),
		scoreValue: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "score_value",
			Help:      "Distribution of composite scores.",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 75, 80, 90, 100},
		}, []string{"pipeline"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_fetch_duration_seconds",
			Help:      "Market data provider fetch latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Scoring failures by pipeline and reason.",
		}, []string{"pipeline", "reason"}),
	}
	r.registry.MustRegister(r.scores, r.scoreValue, r.fetchDuration, r.failures)
	return r
}

// ObserveScore records one successful scoring invocation
func (r *Recorder) ObserveScore(res *contracts.ScoreResult) {
	if r == nil || res == nil {
		return
	}
	scheme := res.Scheme
	if scheme == "" {
		scheme = "none"
	}
	r.scores.WithLabelValues(string(res.Pipeline), scheme, string(res.Classification.Risk)).Inc()
	r.scoreValue.WithLabelValues(string(res.Pipeline)).Observe(res.Score)
}

// ObserveFetch records a provider call duration; kind is "prices" or "fundamentals"
func (r *Recorder) ObserveFetch(provider, kind string, d time.Duration) {
	if r == nil {
		return
	}
	r.fetchDuration.WithLabelValues(provider, kind).Observe(d.Seconds())
}

// ObserveFailure records a failed invocation
func (r *Recorder) ObserveFailure(pipeline contracts.Pipeline, reason string) {
	if r == nil {
		return
	}
	r.failures.WithLabelValues(string(pipeline), reason).Inc()
}

// Handler exposes the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
